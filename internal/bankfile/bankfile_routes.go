package bankfile

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlersChain, rbacService middleware.RBACService) {
	runs := r.Group("/payroll-runs")
	runs.Use(auth...)
	{
		runs.GET("/:id/bank-file", middleware.RBACAuthorize(rbacService, "bank_file", "export"), handler.Export)
	}
}
