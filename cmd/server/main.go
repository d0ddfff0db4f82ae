package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/infrastructure/database"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.Auth.JWTSecret == "" {
		zapLogger.Fatal("auth.jwt_secret must be set")
	}

	if cfg.Database.MigrateOnStart && cfg.Database.Driver != database.DriverSQLite {
		if err := database.Migrate(cfg.Database); err != nil {
			zapLogger.Fatal("applying migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart && cfg.Database.Driver == database.DriverSQLite {
		if err := database.MigrateUp(db); err != nil {
			zapLogger.Fatal("applying migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied")
	}
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	authMW := auth.NewMiddleware(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), zapLogger)
	router := server.NewRouter(server.NewControllers(db, cfg, zapLogger), authMW, db, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
	zapLogger.Info("server stopped gracefully")
}
