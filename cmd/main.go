package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studio-space-backend/internal/config"
	"studio-space-backend/internal/logger"
)

var env config.Env

var rootCmd = &cobra.Command{
	Use:           "studio-space",
	Short:         "Studio Space moodboard backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables
		if err := godotenv.Load(); err != nil {
			logger.Log.Warn("Warning: .env file not found")
		}
		env = config.LoadEnv()
		logger.Init(env.LogLevel, env.LogFormat)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, newsletterCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// connectDB opens the pool and closes it when the command returns.
func connectDB() (func(), error) {
	if err := config.ConnectDB(env.DBURL); err != nil {
		return nil, err
	}
	return func() {
		if err := config.CloseDB(); err != nil {
			logger.Log.WithError(err).Warn("failed to close database")
		}
	}, nil
}
