package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	enforceFn func(req domain.EnforceRequest) (bool, error)
}

func (f *fakeService) LoadCompanyPolicy(ctx context.Context, companyID string) error { return nil }

func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) { return f.enforceFn(req) }

func (f *fakeService) PermissionsForRole(role, companyID string) (domain.RolePermissionsResponse, error) {
	return domain.RolePermissionsResponse{Role: role}, nil
}

func TestHandler_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got domain.EnforceRequest
	handler := NewHandler(&fakeService{enforceFn: func(req domain.EnforceRequest) (bool, error) {
		got = req
		return req.Resource == "payslip" && req.Action == "view", nil
	}})

	router := gin.New()
	router.POST("/rbac/enforce", func(c *gin.Context) {
		c.Set("company_id", "company-1")
		c.Next()
	}, handler.Enforce)

	body, _ := json.Marshal(map[string]string{
		"role":       domain.RoleEmployee,
		"company_id": "company-other",
		"resource":   "payslip",
		"action":     "view",
	})
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		OK   bool                   `json:"ok"`
		Data domain.EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Data.Allowed)
	assert.Equal(t, "company-1", got.CompanyID)
}
