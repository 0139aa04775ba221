package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	cfg := config.Config{
		HTTP: config.HTTPConfig{RateLimitPerUser: 10, RateLimitBurst: 20},
		JWT:  config.JWTConfig{Secret: "test-secret"},
	}
	registerRoutes(router, cfg, &modules{}, rdb, zap.NewNop())

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"POST /api/v1/payroll-runs",
		"GET /api/v1/payroll-runs/:id/exceptions",
		"POST /api/v1/payroll-runs/:id/adjustments",
		"POST /api/v1/payroll-runs/:id/payslips",
		"POST /api/v1/payroll-runs/:id/payslips/send",
		"GET /api/v1/payroll-runs/:id/bank-file",
		"GET /api/v1/payslips/:id/download",
		"POST /api/v1/rbac/enforce",
	} {
		assert.True(t, routes[want], want)
	}

	t.Run("health needs no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("payroll routes require a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payroll-runs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
