package middleware

import (
	"go-payroll/internal/domain"
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContextKey string

const (
	ContextRole      ContextKey = "role"
	ContextCompanyID ContextKey = "company_id"
)

// RBACService is satisfied by any enforcer keyed by role.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(ContextRole))
		companyID := c.GetString(string(ContextCompanyID))

		if companyID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}
		if role == "" {
			abortWith(c, apperror.ErrForbidden.WithDetails(map[string]string{"required": resource + ":" + action}))
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:      role,
			CompanyID: companyID,
			Resource:  resource,
			Action:    action,
		})
		if err != nil {
			zap.L().Named("middleware.rbac").Error("rbac enforce failed",
				zap.String("role", role),
				zap.String("resource", resource),
				zap.String("action", action),
				zap.Error(err),
			)
			abortWith(c, apperror.ErrInternal)
			return
		}

		if !allowed {
			abortWith(c, apperror.ErrForbidden.WithDetails(map[string]string{"required": resource + ":" + action}))
			return
		}
		c.Next()
	}
}
