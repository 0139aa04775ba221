package rbac

import (
	"go-payroll/internal/domain"
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlersChain) {
	group := r.Group("/rbac")
	group.Use(auth...)
	{
		group.POST("/enforce", handler.Enforce)
		group.GET("/roles/:role/permissions", handler.RolePermissions)
		group.POST("/reload", middleware.RoleMiddleware(domain.RolePayrollManager), handler.Reload)
	}
}
