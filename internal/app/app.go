package app

import (
	"go-payroll/internal/config"
	"go-payroll/internal/shared/connection"
	"go-payroll/internal/shared/migration"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure, applies migrations when enabled and mounts every route.
// The returned cleanup closes the connections it opened.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app.api")
	if cfg.JWT.Secret == "" {
		return nil, errMissing("JWT_SECRET")
	}

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, cfg.HTTP.ConnectMaxRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if cfg.HTTP.RunMigrations {
		if err := migration.RunMigrations(sqlDB, logger); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.HTTP.ConnectMaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	// 2. Register Modules & Routes
	mods, err := buildModules(cfg, sqlDB, gormDB, logger)
	if err != nil {
		cleanup()
		return nil, err
	}
	registerRoutes(router, cfg, mods, redisClient, logger)

	return cleanup, nil
}
