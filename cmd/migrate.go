package main

import (
	"github.com/spf13/cobra"

	"studio-space-backend/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		closeDB, err := connectDB()
		if err != nil {
			return err
		}
		defer closeDB()

		return config.MigrateAllModels(true)
	},
}
