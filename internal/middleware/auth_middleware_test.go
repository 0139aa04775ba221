package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/domain"
	"go-payroll/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":     "user-1",
		"employee_id": "emp-1",
		"company_id":  "company-1",
		"role":        domain.RolePayrollSpecialist,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen struct{ userID, companyID, role, actor string }
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		seen.userID = c.GetString("user_id")
		seen.companyID = c.GetString("company_id")
		seen.role = c.GetString("role")
		seen.actor = contextutil.GetActorID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		w := call("Bearer " + signToken(t, validClaims()))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "user-1", seen.userID)
		assert.Equal(t, "company-1", seen.companyID)
		assert.Equal(t, domain.RolePayrollSpecialist, seen.role)
		assert.Equal(t, "emp-1", seen.actor)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+signToken(t, claims)).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})

	t.Run("missing company claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "company_id")
		w := call("Bearer " + signToken(t, claims))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "company_id")
	})
}

type fakeRBAC struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(svc RBACService, role, companyID string) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/x", func(c *gin.Context) {
			c.Set("role", role)
			c.Set("company_id", companyID)
			c.Next()
		}, RBACAuthorize(svc, "payslip", "send"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		return w
	}

	t.Run("allowed", func(t *testing.T) {
		svc := &fakeRBAC{allowed: true}
		assert.Equal(t, http.StatusOK, run(svc, domain.RoleFinance, "c1").Code)
		assert.Equal(t, domain.EnforceRequest{Role: domain.RoleFinance, CompanyID: "c1", Resource: "payslip", Action: "send"}, svc.got)
	})

	t.Run("denied", func(t *testing.T) {
		w := run(&fakeRBAC{}, domain.RoleEmployee, "c1")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "payslip:send")
	})

	t.Run("no company", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run(&fakeRBAC{allowed: true}, domain.RoleFinance, "").Code)
	})

	t.Run("enforcer failure", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, run(&fakeRBAC{err: errors.New("boom")}, domain.RoleFinance, "c1").Code)
	})
}
