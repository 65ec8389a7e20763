package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"studio-space-backend/internal/config"
	"studio-space-backend/internal/handlers"
	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/metrics"
)

// multipart overhead on top of the largest accepted file
const bodySlack = 1 << 20

func NewServer(env config.Env, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		AppName:      "Studio Space Backend",
		BodyLimit:    env.MaxUploadBytes + bodySlack,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: logger.Log.Writer(),
	}))
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}

	if env.StorageDriver != "gcs" {
		app.Static("/uploads", env.UploadDir, fiber.Static{MaxAge: 86400})
	}

	return app
}

func StartServer(app *fiber.App, port string) error {
	if port == "" {
		port = "3000"
	}

	logger.Log.Infof("Server starting on port %s", port)
	return app.Listen(":" + port)
}
