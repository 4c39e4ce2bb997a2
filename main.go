package main

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/dynasql/dynasql/pkg/cache"
	"github.com/dynasql/dynasql/pkg/config"
	"github.com/dynasql/dynasql/pkg/database"
	"github.com/dynasql/dynasql/pkg/handlers"
	"github.com/dynasql/dynasql/pkg/services"
	"github.com/dynasql/dynasql/pkg/templates"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("bind_addr", cfg.BindAddr),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database.Database),
		zap.Int("cache_capacity", cfg.Cache.Capacity),
	)

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		sqlDB := stdlib.OpenDBFromPool(db.Pool)
		if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close migration connection", zap.Error(err))
		}
	}

	registry := templates.NewRegistry(logger)
	registry.LoadOverrides(cfg.Templates.OverridesPath)

	renderCache := cache.New(cfg.Cache.Capacity)
	executor := database.NewPostgresExecutor(db, logger)
	engine := services.NewQueryEngine(registry, renderCache, executor, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(engine, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting dynasql", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a console logger for local development and a JSON
// production logger otherwise.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
