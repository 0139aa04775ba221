package counter_test

import (
	"testing"
	"time"

	"go-payroll/internal/shared/counter"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("default template pads the sequence", func(t *testing.T) {
		got, err := counter.FormatNumber(counter.DefaultPayslipNumberTemplate, at, 42)
		assert.NoError(t, err)
		assert.Equal(t, "PS-202603-000042", got)
	})

	t.Run("raw sequence and short year", func(t *testing.T) {
		got, err := counter.FormatNumber("SLIP/{YY}/{DD}/{SEQ}", at, 7)
		assert.NoError(t, err)
		assert.Equal(t, "SLIP/26/31/7", got)
	})

	t.Run("sequence wider than padding is kept", func(t *testing.T) {
		got, err := counter.FormatNumber("{SEQ2}", at, 1234)
		assert.NoError(t, err)
		assert.Equal(t, "1234", got)
	})

	t.Run("rejects empty template", func(t *testing.T) {
		_, err := counter.FormatNumber("", at, 1)
		assert.Error(t, err)
	})

	t.Run("rejects non positive sequence", func(t *testing.T) {
		_, err := counter.FormatNumber("{SEQ}", at, 0)
		assert.Error(t, err)
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		_, err := counter.FormatNumber("PS-{QUARTER}-{SEQ}", at, 1)
		assert.Error(t, err)
	})
}
