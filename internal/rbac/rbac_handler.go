package rbac

import (
	"net/http"
	"strings"

	"go-payroll/internal/domain"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Enforce answers a permission check for the caller's company.
func (h *Handler) Enforce(c *gin.Context) {
	var req domain.EnforceRequest
	req.CompanyID = c.GetString("company_id")
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	req.Resource = strings.TrimSpace(req.Resource)
	req.Action = strings.TrimSpace(req.Action)
	req.CompanyID = c.GetString("company_id")

	allowed, err := h.service.Enforce(req)
	if err != nil {
		h.logger.Error("rbac enforce failed", zap.Error(err))
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, domain.EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) RolePermissions(c *gin.Context) {
	role := strings.ToUpper(strings.TrimSpace(c.Param("role")))
	resp, err := h.service.PermissionsForRole(role, c.GetString("company_id"))
	if err != nil {
		h.logger.Error("rbac role permissions failed", zap.String("role", role), zap.Error(err))
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// Reload re-reads the company grants after they change in the database.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.service.LoadCompanyPolicy(c.Request.Context(), c.GetString("company_id")); err != nil {
		h.logger.Error("rbac reload failed", zap.Error(err))
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
