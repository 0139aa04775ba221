package bankfile

import (
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
	l := zap.L().Named("bankfile.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("bankfile.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	file, err := h.service.Export(c.Request.Context(), c.GetString("company_id"), c.Param("id"), q)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("bank file export failed",
			zap.String("run_id", c.Param("id")),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Attachment(c, file.FileName, file.ContentType, file.Content)
}
