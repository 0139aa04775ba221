package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput        = "INVALID_INPUT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeGuardNotMet         = "GUARD_NOT_MET"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeNotReady            = "NOT_READY"
	CodeNoPayslips          = "NO_PAYSLIPS"

	// Server errors (5xx)
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
