package payrollrun

import (
	"strings"
	"time"

	"go-payroll/internal/domain"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPendingPeriodReview   Status = "PENDING_PERIOD_REVIEW"
	StatusPeriodApproved        Status = "PERIOD_APPROVED"
	StatusGeneratingDraft       Status = "GENERATING_DRAFT"
	StatusUnderReview           Status = "UNDER_REVIEW"
	StatusPublishedForApproval  Status = "PUBLISHED_FOR_APPROVAL"
	StatusPendingPayrollManager Status = "PENDING_PAYROLL_MANAGER"
	StatusPendingFinance        Status = "PENDING_FINANCE"
	StatusFrozen                Status = "FROZEN"
	StatusPaid                  Status = "PAID"
)

var AllStatuses = []Status{
	StatusPendingPeriodReview,
	StatusPeriodApproved,
	StatusGeneratingDraft,
	StatusUnderReview,
	StatusPublishedForApproval,
	StatusPendingPayrollManager,
	StatusPendingFinance,
	StatusFrozen,
	StatusPaid,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Editable reports whether lines, adjustments and exceptions may still change.
func (s Status) Editable() bool {
	switch s {
	case StatusPendingPeriodReview, StatusPeriodApproved, StatusUnderReview:
		return true
	}
	return false
}

// Finalized reports whether payslips and bank files may be produced.
func (s Status) Finalized() bool {
	return s == StatusFrozen || s == StatusPaid
}

type Event string

const (
	EventApprovePeriod   Event = "approve_period"
	EventGenerateDraft   Event = "generate_draft"
	EventRegenerateDraft Event = "regenerate_draft"
	EventPublish         Event = "publish"
	EventManagerApprove  Event = "manager_approve"
	EventManagerReject   Event = "manager_reject"
	EventFinanceApprove  Event = "finance_approve"
	EventFinanceReject   Event = "finance_reject"
	EventFreeze          Event = "freeze"
	EventMarkPaid        Event = "mark_paid"
	EventUnfreeze        Event = "unfreeze"
	EventEditPeriod      Event = "edit_period"
)

var AllEvents = []Event{
	EventApprovePeriod,
	EventGenerateDraft,
	EventRegenerateDraft,
	EventPublish,
	EventManagerApprove,
	EventManagerReject,
	EventFinanceApprove,
	EventFinanceReject,
	EventFreeze,
	EventMarkPaid,
	EventUnfreeze,
	EventEditPeriod,
}

type eventRule struct {
	roles       []string
	needsReason bool
	rejection   bool
	repeatable  bool
	targets     map[Status]Status
}

var (
	reviewers = []string{domain.RolePayrollSpecialist, domain.RolePayrollManager}
	rules     = map[Event]eventRule{
		EventApprovePeriod: {
			roles:   reviewers,
			targets: map[Status]Status{StatusPendingPeriodReview: StatusPeriodApproved},
		},
		EventGenerateDraft: {
			roles:   []string{domain.RolePayrollSpecialist},
			targets: map[Status]Status{
				StatusPeriodApproved:  StatusUnderReview,
				StatusGeneratingDraft: StatusUnderReview,
			},
		},
		EventRegenerateDraft: {
			roles:      []string{domain.RolePayrollSpecialist},
			repeatable: true,
			targets: map[Status]Status{
				StatusUnderReview:     StatusUnderReview,
				StatusGeneratingDraft: StatusUnderReview,
			},
		},
		EventPublish: {
			roles:   []string{domain.RolePayrollSpecialist},
			targets: map[Status]Status{StatusUnderReview: StatusPublishedForApproval},
		},
		EventManagerApprove: {
			roles: []string{domain.RolePayrollManager},
			targets: map[Status]Status{
				StatusPublishedForApproval:  StatusPendingFinance,
				StatusPendingPayrollManager: StatusPendingFinance,
			},
		},
		EventManagerReject: {
			roles:       []string{domain.RolePayrollManager},
			needsReason: true,
			rejection:   true,
			targets: map[Status]Status{
				StatusPublishedForApproval:  StatusUnderReview,
				StatusPendingPayrollManager: StatusUnderReview,
			},
		},
		EventFinanceApprove: {
			roles:   []string{domain.RoleFinance},
			targets: map[Status]Status{StatusPendingFinance: StatusPendingFinance},
		},
		EventFinanceReject: {
			roles:       []string{domain.RoleFinance},
			needsReason: true,
			rejection:   true,
			targets:     map[Status]Status{StatusPendingFinance: StatusUnderReview},
		},
		EventFreeze: {
			roles:       []string{domain.RolePayrollManager},
			needsReason: true,
			targets:     map[Status]Status{StatusPendingFinance: StatusFrozen},
		},
		EventMarkPaid: {
			roles:   []string{domain.RoleFinance},
			targets: map[Status]Status{StatusFrozen: StatusPaid},
		},
		EventUnfreeze: {
			roles:       []string{domain.RolePayrollManager},
			needsReason: true,
			targets: map[Status]Status{
				StatusFrozen: StatusUnderReview,
				StatusPaid:   StatusUnderReview,
			},
		},
		EventEditPeriod: {
			roles:      reviewers,
			repeatable: true,
			targets: map[Status]Status{
				StatusPendingPeriodReview: StatusPendingPeriodReview,
				StatusPeriodApproved:      StatusPendingPeriodReview,
				StatusUnderReview:         StatusPendingPeriodReview,
			},
		},
	}
)

func ParseEvent(raw string) (Event, error) {
	e := Event(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := rules[e]; !ok {
		return "", payrollrunerrors.ErrUnknownEvent
	}
	return e, nil
}

// Step is an accepted event. AlreadyApplied marks a repeat of the event that produced the current state.
type Step struct {
	Event          Event
	From           Status
	To             Status
	Rejection      bool
	AlreadyApplied bool
}

// Next decides whether role may apply event to run. It never mutates run.
func Next(run PayrollRun, event Event, role, reason string) (Step, error) {
	rule, ok := rules[event]
	if !ok {
		return Step{}, payrollrunerrors.ErrUnknownEvent
	}
	if !roleAllowed(rule.roles, role) {
		return Step{}, payrollrunerrors.ErrRoleNotAllowed
	}

	if !rule.repeatable && run.LastEvent != nil && *run.LastEvent == event && producedBy(rule, run.Status) {
		return Step{Event: event, From: run.Status, To: run.Status, AlreadyApplied: true}, nil
	}

	to, ok := rule.targets[run.Status]
	if !ok {
		return Step{}, apperror.GuardNotMet("invalid state: cannot %s a run in %s", event, run.Status)
	}
	if rule.needsReason && strings.TrimSpace(reason) == "" {
		return Step{}, payrollrunerrors.ErrReasonRequired
	}

	switch event {
	case EventGenerateDraft, EventRegenerateDraft:
		if run.Status == StatusGeneratingDraft && !resumes(run, event) {
			return Step{}, apperror.GuardNotMet("invalid state: draft generation was started from %s", *run.DraftPreviousStatus)
		}
	case EventEditPeriod:
		if run.Status == StatusUnderReview && !run.IsRejected() {
			return Step{}, apperror.GuardNotMet("invalid state: period can only be edited on a rejected run under review")
		}
	case EventFinanceApprove, EventFinanceReject:
		if run.FinanceApprovedAt != nil {
			return Step{}, apperror.GuardNotMet("run is already finance-approved")
		}
	case EventFreeze:
		if run.FinanceApprovedAt == nil {
			return Step{}, apperror.GuardNotMet("finance approval is required before freeze")
		}
	}

	return Step{Event: event, From: run.Status, To: to, Rejection: rule.rejection}, nil
}

// resumes reports whether event restarts the interrupted generation. The staleness of the
// interrupted attempt is checked by the caller.
func resumes(run PayrollRun, event Event) bool {
	if run.DraftPreviousStatus == nil {
		return true
	}
	if event == EventGenerateDraft {
		return *run.DraftPreviousStatus == StatusPeriodApproved
	}
	return *run.DraftPreviousStatus == StatusUnderReview
}

func producedBy(rule eventRule, status Status) bool {
	for _, to := range rule.targets {
		if to == status {
			return true
		}
	}
	return false
}

func roleAllowed(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Apply stamps the accepted step on run: approvals, rejection marker, freeze and unfreeze metadata.
func Apply(run *PayrollRun, step Step, actor uuid.UUID, reason string, now time.Time) {
	if step.AlreadyApplied {
		return
	}

	var note *string
	if r := strings.TrimSpace(reason); r != "" {
		note = &r
	}
	by := actor
	at := now

	switch step.Event {
	case EventApprovePeriod:
		run.PeriodApprovedBy, run.PeriodApprovedAt = &by, &at
	case EventPublish:
		run.PublishedBy, run.PublishedAt = &by, &at
	case EventManagerApprove:
		run.ManagerApprovedBy, run.ManagerApprovedAt = &by, &at
	case EventFinanceApprove:
		run.FinanceApprovedBy, run.FinanceApprovedAt = &by, &at
	case EventManagerReject, EventFinanceReject:
		stage := step.From
		run.RejectedBy, run.RejectedAt = &by, &at
		run.RejectionReason = note
		run.RejectionStage = &stage
		clearApprovals(run)
	case EventFreeze:
		run.FrozenBy, run.FrozenAt = &by, &at
		run.FreezeReason = note
	case EventMarkPaid:
		run.PaidBy, run.PaidAt = &by, &at
	case EventUnfreeze:
		run.UnfrozenBy, run.UnfrozenAt = &by, &at
		run.UnfreezeJustification = note
		run.PaidBy, run.PaidAt = nil, nil
		clearApprovals(run)
	case EventEditPeriod:
		run.PeriodApprovedBy, run.PeriodApprovedAt = nil, nil
	}

	event := step.Event
	run.Status = step.To
	run.LastEvent = &event
}

func clearApprovals(run *PayrollRun) {
	run.PublishedBy, run.PublishedAt = nil, nil
	run.ManagerApprovedBy, run.ManagerApprovedAt = nil, nil
	run.FinanceApprovedBy, run.FinanceApprovedAt = nil, nil
}
