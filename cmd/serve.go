package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studio-space-backend/internal/api"
	"studio-space-backend/internal/api/routes"
	"studio-space-backend/internal/assistant"
	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/cache"
	"studio-space-backend/internal/config"
	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/libraries"
	llmHandlers "studio-space-backend/internal/llm_handlers"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/mailer"
	"studio-space-backend/internal/metrics"
	"studio-space-backend/internal/storage"
)

const metricsNamespace = "studio_space"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if env.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	closeDB, err := connectDB()
	if err != nil {
		return err
	}
	defer closeDB()

	// Run migrations
	if err := config.MigrateAllModels(env.AutoMigrate); err != nil {
		return err
	}

	redisClient, err := config.ConnectRedis(ctx, env.RedisURL)
	if err != nil {
		return err
	}
	if redisClient == nil {
		logger.Log.Info("REDIS_URL not set, using in-memory cache")
	} else {
		defer redisClient.Close()
	}
	kv := cache.New(redisClient)

	blobs, closeBlobs, err := storage.New(ctx, env)
	if err != nil {
		return err
	}
	defer closeBlobs()

	llmClient, err := llmHandlers.NewLLMClient(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to init llm client: %w", err)
	}

	sender, err := mailer.NewSender(env.EmailProvider, env.EmailAPIKey, env.EmailSender)
	if err != nil {
		return err
	}
	notifier := mailer.NewNotifier(sender, env.FrontendURL)
	defer notifier.Wait()

	hub := libraries.NewHub()
	go hub.Run(ctx)

	m := metrics.New(metricsNamespace)
	if err := m.RegisterDBStats(metricsNamespace, config.DB); err != nil {
		logger.Log.WithError(err).Warn("failed to register db metrics")
	}

	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			return config.DB.WithContext(ctx).Exec("SELECT 1").Error
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	h := handlers.New(handlers.Deps{
		DB:       config.DB,
		Env:      env,
		Cache:    kv,
		Store:    blobs,
		Tokens:   auth.NewTokenManager(env.JWTSecret, env.JWTTTL),
		Events:   hub,
		Notifier: notifier,
		Google:   auth.NewGoogleProvider(env.GoogleClientID, env.GoogleClientSecret, env.GoogleRedirectURL, kv),
		Agent:    assistant.NewAgent(llmClient),
		Checks:   checks,
	})

	// Create and configure Fiber app
	app := api.NewServer(env, m)

	// Register routes
	routes.Register(app, h, hub)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.WithError(err).Warn("shutdown")
		}
	}()

	// Start server
	return api.StartServer(app, env.Port)
}
