package app

import (
	"net/http"

	"go-payroll/internal/bankfile"
	"go-payroll/internal/config"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payrolladjustment"
	"go-payroll/internal/payrollexception"
	"go-payroll/internal/payrollrun"
	"go-payroll/internal/payslip"
	"go-payroll/internal/rbac"
	"go-payroll/internal/shared/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerRoutes(router *gin.Engine, cfg config.Config, mods *modules, rdb *redis.Client, logger *zap.Logger) {
	router.Use(middleware.RequestID())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	auth := gin.HandlersChain{
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.ExtractUserID(),
		middleware.ContextLogger(logger),
		middleware.RateLimitByUser(rate.Limit(cfg.HTTP.RateLimitPerUser), cfg.HTTP.RateLimitBurst),
	}
	idempotency := middleware.Idempotency(rdb, cfg.HTTP.IdempotencyTTL, logger)

	// --- Handlers ---
	rbacHandler := rbac.NewHandler(mods.rbac, logger)
	runHandler := payrollrun.NewHandler(mods.runs, logger)
	exceptionHandler := payrollexception.NewHandler(mods.exceptions, logger)
	adjustmentHandler := payrolladjustment.NewHandler(mods.adjustments, logger)
	payslipHandler := payslip.NewHandler(mods.payslips, logger)
	bankFileHandler := bankfile.NewHandler(mods.bankFiles, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		payrollrun.RegisterRoutes(api, runHandler, auth, mods.rbac, idempotency)
		payrollexception.RegisterRoutes(api, exceptionHandler, auth, mods.rbac)
		payrolladjustment.RegisterRoutes(api, adjustmentHandler, auth, mods.rbac, idempotency)
		payslip.RegisterRoutes(api, payslipHandler, auth, mods.rbac, idempotency)
		bankfile.RegisterRoutes(api, bankFileHandler, auth, mods.rbac)
		rbac.RegisterRoutes(api, rbacHandler, auth)
	}
}
