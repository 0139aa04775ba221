package payrollexception

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlersChain,
	rbacService middleware.RBACService,
) {
	runs := r.Group("/payroll-runs")
	runs.Use(auth...)
	{
		runs.GET("/:id/exceptions", middleware.RBACAuthorize(rbacService, "payroll_exception", "read"), handler.ListByRun)
	}

	exceptions := r.Group("/payroll-exceptions")
	exceptions.Use(auth...)
	{
		exceptions.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_exception", "read"), handler.GetByID)
		exceptions.POST("/:id/start", middleware.RBACAuthorize(rbacService, "payroll_exception", "resolve"), handler.Start)
		exceptions.POST("/:id/resolve", middleware.RBACAuthorize(rbacService, "payroll_exception", "resolve"), handler.Resolve)
		exceptions.POST("/:id/ignore", middleware.RBACAuthorize(rbacService, "payroll_exception", "resolve"), handler.Ignore)
	}
}
