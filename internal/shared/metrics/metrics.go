package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Payroll holds the engine counters. A nil *Payroll is valid and records nothing,
// which keeps services usable in tests without a registry.
type Payroll struct {
	transitions     *prometheus.CounterVec
	guardFailures   *prometheus.CounterVec
	exceptions      *prometheus.CounterVec
	payslips        *prometheus.CounterVec
	bankFiles       *prometheus.CounterVec
	adjustments     *prometheus.CounterVec
	outboxPublished *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	defaultSet  *Payroll
)

// Default returns the process wide counters registered on the default registerer.
func Default() *Payroll {
	defaultOnce.Do(func() {
		defaultSet = New(prometheus.DefaultRegisterer)
	})
	return defaultSet
}

func New(registerer prometheus.Registerer) *Payroll {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Payroll{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_run_transitions_total",
			Help: "Payroll run state machine events by outcome.",
		}, []string{"event", "outcome"}),
		guardFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_run_guard_failures_total",
			Help: "Rejected payroll run events whose guard was not met.",
		}, []string{"event"}),
		exceptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_exceptions_raised_total",
			Help: "Exceptions raised by draft scans.",
		}, []string{"type", "severity"}),
		payslips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_payslips_total",
			Help: "Payslip generation results.",
		}, []string{"result"}),
		bankFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_bank_files_exported_total",
			Help: "Bank transfer files exported by format.",
		}, []string{"format"}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_adjustments_total",
			Help: "Adjustment ledger operations by type and status.",
		}, []string{"type", "status"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_outbox_events_total",
			Help: "Outbox events handed to kafka by result.",
		}, []string{"topic", "result"}),
	}

	registerer.MustRegister(
		m.transitions,
		m.guardFailures,
		m.exceptions,
		m.payslips,
		m.bankFiles,
		m.adjustments,
		m.outboxPublished,
	)
	return m
}

func (m *Payroll) Transition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event, outcome).Inc()
}

func (m *Payroll) GuardFailure(event string) {
	if m == nil {
		return
	}
	m.guardFailures.WithLabelValues(event).Inc()
}

func (m *Payroll) ExceptionRaised(exceptionType, severity string) {
	if m == nil {
		return
	}
	m.exceptions.WithLabelValues(exceptionType, severity).Inc()
}

func (m *Payroll) Payslips(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.payslips.WithLabelValues(result).Add(float64(n))
}

func (m *Payroll) BankFileExported(format string) {
	if m == nil {
		return
	}
	m.bankFiles.WithLabelValues(format).Inc()
}

func (m *Payroll) Adjustment(adjustmentType, status string) {
	if m == nil {
		return
	}
	m.adjustments.WithLabelValues(adjustmentType, status).Inc()
}

func (m *Payroll) OutboxPublished(topic, result string) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(topic, result).Inc()
}

// Handler exposes the default gatherer for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
