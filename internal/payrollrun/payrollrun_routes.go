package payrollrun

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
		runs.GET("", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.GetById)
		runs.GET("/:id/lines", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.Lines)
		runs.GET("/:id/history", middleware.RBACAuthorize(rbacService, "payroll_run", "read"), handler.History)
		runs.POST("", middleware.RBACAuthorize(rbacService, "payroll_run", "create"), idempotency, handler.Create)
		runs.PUT("/:id/period", middleware.RBACAuthorize(rbacService, "payroll_run", "edit"), handler.EditPeriod)
		runs.POST("/:id/transitions", middleware.RBACAuthorize(rbacService, "payroll_run", "transition"), idempotency, handler.Transition)
		runs.POST("/:id/draft", middleware.RBACAuthorize(rbacService, "payroll_run", "generate"), idempotency, handler.GenerateDraft)
	}
}
