package config_test

import (
	"testing"
	"time"

	"go-payroll/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAYROLL_BLOCKING_SEVERITY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, config.DefaultPayrollPolicy(), cfg.Payroll)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("PAYROLL_PENALTY_THRESHOLD", "0.3")
	t.Setenv("PAYROLL_BLOCKING_SEVERITY", "high")
	t.Setenv("PAYROLL_ADJUSTMENT_REQUIRES_APPROVAL", "false")
	t.Setenv("OUTBOX_POLL_INTERVAL", "10s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, 0.3, cfg.Payroll.PenaltyThreshold)
	assert.Equal(t, "HIGH", cfg.Payroll.BlockingSeverity)
	assert.False(t, cfg.Payroll.AdjustmentRequiresApproval)
	assert.Equal(t, 10*time.Second, cfg.Outbox.PollInterval)
}

func TestPayrollPolicy_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *config.PayrollPolicy)
	}{
		{"penalty threshold zero", func(p *config.PayrollPolicy) { p.PenaltyThreshold = 0 }},
		{"penalty threshold above one", func(p *config.PayrollPolicy) { p.PenaltyThreshold = 1.5 }},
		{"spike threshold negative", func(p *config.PayrollPolicy) { p.SalarySpikeThreshold = -1 }},
		{"unknown severity", func(p *config.PayrollPolicy) { p.BlockingSeverity = "SEVERE" }},
		{"empty template", func(p *config.PayrollPolicy) { p.PayslipNumberTemplate = "" }},
		{"bad currency", func(p *config.PayrollPolicy) { p.Currency = "RUPIAH" }},
		{"no working days", func(p *config.PayrollPolicy) { p.WorkingDaysDefault = 0 }},
		{"no draft stale window", func(p *config.PayrollPolicy) { p.DraftStaleAfter = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := config.DefaultPayrollPolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}

	assert.NoError(t, config.DefaultPayrollPolicy().Validate())
}
