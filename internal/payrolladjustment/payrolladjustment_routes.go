package payrolladjustment

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlersChain,
	rbacService middleware.RBACService,
	idempotency gin.HandlerFunc,
) {
	runs := r.Group("/payroll-runs")
	runs.Use(auth...)
	{
		runs.GET("/:id/adjustments", middleware.RBACAuthorize(rbacService, "payroll_adjustment", "read"), handler.ListByRun)
		runs.POST("/:id/adjustments", middleware.RBACAuthorize(rbacService, "payroll_adjustment", "create"), idempotency, handler.Apply)
	}

	adjustments := r.Group("/payroll-adjustments")
	adjustments.Use(auth...)
	{
		adjustments.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_adjustment", "read"), handler.GetByID)
		adjustments.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll_adjustment", "approve"), handler.Approve)
		adjustments.POST("/:id/reject", middleware.RBACAuthorize(rbacService, "payroll_adjustment", "approve"), handler.Reject)
	}
}
