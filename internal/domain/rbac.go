package domain

// Roles carried in the JWT role claim.
const (
	RolePayrollSpecialist = "PAYROLL_SPECIALIST"
	RolePayrollManager    = "PAYROLL_MANAGER"
	RoleFinance           = "FINANCE"
	RoleEmployee          = "EMPLOYEE"
)

type EnforceRequest struct {
	Role      string `json:"role" binding:"required"`
	CompanyID string `json:"company_id" binding:"required"`
	Resource  string `json:"resource" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionResponse struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type RolePermissionsResponse struct {
	Role        string               `json:"role"`
	Permissions []PermissionResponse `json:"permissions"`
}
