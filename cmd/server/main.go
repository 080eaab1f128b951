package main

import (
	"context"
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tourism-backend/internal/admin"
	"tourism-backend/internal/auth"
	"tourism-backend/internal/config"
	"tourism-backend/internal/engine"
	"tourism-backend/internal/instrument"
	"tourism-backend/internal/logger"
	"tourism-backend/internal/metadata"
	"tourism-backend/internal/related"
	"tourism-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zl.Info("config loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.Name))

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 3. Bootstrap content tables
	reg := metadata.NewDefaultRegistry()
	if err := db.Bootstrap(ctx, reg.AllEntities(), zl); err != nil {
		zl.Fatal("failed to bootstrap content tables", zap.Error(err))
	}

	// 4. Related-content resolver
	facade, err := related.New(cfg.Related, related.NewSQLDatastore(db, reg), zl.Named("related"))
	if err != nil {
		zl.Fatal("invalid related-content configuration", zap.Error(err))
	}

	// 5. Create Fiber app
	app := fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: engine.ErrorHandler(zl),
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(instrument.Middleware(instrument.NewInstrumenter(), zl))

	// 6. Health check and metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Admin routes (auth + admin required). Registered before the content
	// routes so that /api/_admin is not taken for a collection name.
	authMW := auth.AuthMiddleware(cfg.Auth.JWTSecret)
	adminMW := auth.RequireAdmin()
	admin.RegisterAdminRoutes(app, admin.NewHandler(facade.Resolver().Prober(), reg), authMW, adminMW)

	// 8. Public content routes
	engine.RegisterContentRoutes(app, engine.NewHandler(db, reg, facade))

	// 9. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zl.Info("starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
