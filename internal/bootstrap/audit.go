package bootstrap

import "context"

// AuditLog is a process lifecycle record; payroll actions are audited through run transitions.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
