package payslip

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
		runs.GET("/:id/payslips", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.ListByRun)
		runs.POST("/:id/payslips", middleware.RBACAuthorize(rbacService, "payslip", "generate"), idempotency, handler.Generate)
		runs.POST("/:id/payslips/send", middleware.RBACAuthorize(rbacService, "payslip", "send"), idempotency, handler.Send)
	}

	payslips := r.Group("/payslips")
	payslips.Use(auth...)
	{
		payslips.GET("/:id", middleware.RBACAuthorize(rbacService, "payslip", "view"), handler.GetByID)
		payslips.POST("/:id/view", middleware.RBACAuthorize(rbacService, "payslip", "view"), handler.MarkViewed)
		payslips.GET("/:id/download", middleware.RBACAuthorize(rbacService, "payslip", "view"), handler.Download)
	}

	employees := r.Group("/employees")
	employees.Use(auth...)
	{
		employees.GET("/:employee_id/payslips", middleware.RBACAuthorize(rbacService, "payslip", "view"), handler.ListByEmployee)
	}
}
