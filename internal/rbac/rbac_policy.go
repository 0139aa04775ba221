package rbac

import "go-payroll/internal/domain"

// modelText matches a role against a company domain. Policies stored with dom "*" apply to
// every company.
const modelText = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.dom == "*" || r.dom == p.dom) && r.obj == p.obj && r.act == p.act
`

const anyCompany = "*"

type grant struct {
	Resource string
	Actions  []string
}

// defaultGrants is the baseline permission set of each role.
var defaultGrants = map[string][]grant{
	domain.RolePayrollSpecialist: {
		{Resource: "payroll_run", Actions: []string{"read", "create", "edit", "transition", "generate"}},
		{Resource: "payroll_exception", Actions: []string{"read", "resolve"}},
		{Resource: "payroll_adjustment", Actions: []string{"read", "create"}},
		{Resource: "payslip", Actions: []string{"read", "generate", "send", "view"}},
	},
	domain.RolePayrollManager: {
		{Resource: "payroll_run", Actions: []string{"read", "transition"}},
		{Resource: "payroll_exception", Actions: []string{"read", "resolve"}},
		{Resource: "payroll_adjustment", Actions: []string{"read", "create", "approve"}},
		{Resource: "payslip", Actions: []string{"read", "view"}},
	},
	domain.RoleFinance: {
		{Resource: "payroll_run", Actions: []string{"read", "transition"}},
		{Resource: "payroll_exception", Actions: []string{"read"}},
		{Resource: "payroll_adjustment", Actions: []string{"read", "approve"}},
		{Resource: "payslip", Actions: []string{"read", "generate", "send", "view"}},
		{Resource: "bank_file", Actions: []string{"export"}},
	},
	domain.RoleEmployee: {
		{Resource: "payslip", Actions: []string{"view"}},
	},
}
