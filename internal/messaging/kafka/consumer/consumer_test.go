package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/payslip"
	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedReader hands out queued messages, then cancels the loop.
type scriptedReader struct {
	queue     []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.queue) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeGenerator struct {
	calls      int
	requestIDs []string
	fn         func(call int) error
}

func (f *fakeGenerator) Generate(ctx context.Context, companyID, actorID, runID string) (payslip.GenerateResponse, error) {
	f.calls++
	f.requestIDs = append(f.requestIDs, contextutil.GetRequestID(ctx))
	if f.fn != nil {
		if err := f.fn(f.calls); err != nil {
			return payslip.GenerateResponse{}, err
		}
	}
	return payslip.GenerateResponse{RunID: runID}, nil
}

func requested(t *testing.T, offset int64, rid string) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(events.PayrollPayslipRequestedEvent{
		EventType:   "payroll_payslip_requested",
		RequestID:   rid,
		RunID:       "11111111-1111-1111-1111-111111111111",
		CompanyID:   "22222222-2222-2222-2222-222222222222",
		RequestedBy: "33333333-3333-3333-3333-333333333333",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	return kafkago.Message{Topic: events.PayrollPayslipRequestedTopic, Offset: offset, Value: body}
}

func run(t *testing.T, gen *fakeGenerator, msgs ...kafkago.Message) *scriptedReader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &scriptedReader{queue: msgs, cancel: cancel}
	ConsumePayrollPayslipRequested(ctx, reader, gen, LoopConfig{MaxAttempts: 2, RetryDelay: time.Millisecond}, zap.NewNop())
	return reader
}

func TestConsumePayrollPayslipRequested(t *testing.T) {
	t.Run("generates and commits", func(t *testing.T) {
		gen := &fakeGenerator{}
		reader := run(t, gen, requested(t, 1, "req-42"))

		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, []string{"req-42"}, gen.requestIDs)
		assert.Equal(t, []int64{1}, reader.committed)
	})

	t.Run("falls back to header request id", func(t *testing.T) {
		msg := requested(t, 1, "")
		msg.Headers = []kafkago.Header{{Key: "request_id", Value: []byte("from-header")}}
		gen := &fakeGenerator{}
		run(t, gen, msg)

		assert.Equal(t, []string{"from-header"}, gen.requestIDs)
	})

	t.Run("undecodable message is committed without processing", func(t *testing.T) {
		gen := &fakeGenerator{}
		reader := run(t, gen, kafkago.Message{Offset: 7, Value: []byte("{not json")})

		assert.Zero(t, gen.calls)
		assert.Equal(t, []int64{7}, reader.committed)
	})

	t.Run("permanent failure is committed after one attempt", func(t *testing.T) {
		gen := &fakeGenerator{fn: func(int) error { return paysliperrors.ErrRunNotReady }}
		reader := run(t, gen, requested(t, 3, "r"))

		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, []int64{3}, reader.committed)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		gen := &fakeGenerator{fn: func(call int) error {
			if call == 1 {
				return errors.New("connection reset")
			}
			return nil
		}}
		reader := run(t, gen, requested(t, 4, "r"))

		assert.Equal(t, 2, gen.calls)
		assert.Equal(t, []int64{4}, reader.committed)
	})

	t.Run("exhausted transient failure stays uncommitted", func(t *testing.T) {
		gen := &fakeGenerator{fn: func(int) error { return errors.New("database unavailable") }}
		reader := run(t, gen, requested(t, 5, "r"), requested(t, 6, "r"))

		assert.Equal(t, 4, gen.calls)
		assert.Empty(t, reader.committed)
	})
}
