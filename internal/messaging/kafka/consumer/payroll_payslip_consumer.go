package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-payroll/internal/events"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PayslipGenerator is satisfied by payslip.Service.
type PayslipGenerator interface {
	Generate(ctx context.Context, companyID, actorID, runID string) (payslip.GenerateResponse, error)
}

// PayslipRequestedHandler generates payslips for a run that reached FROZEN.
// Generation is idempotent so redelivery is harmless.
func PayslipRequestedHandler(generator PayslipGenerator, logger *zap.Logger) HandlerFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.PayrollPayslipRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		if event.RunID == "" || event.CompanyID == "" {
			return fmt.Errorf("%w: run_id and company_id are required", ErrUndecodable)
		}

		rid := event.RequestID
		if rid == "" {
			rid = header(msg, "request_id")
		}
		ctx = contextutil.WithRequestID(ctx, rid)

		res, err := generator.Generate(ctx, event.CompanyID, event.RequestedBy, event.RunID)
		if err != nil {
			return err
		}

		logger.Info("payslips generated from payslip_requested event",
			zap.String("request_id", rid),
			zap.String("run_id", event.RunID),
			zap.String("company_id", event.CompanyID),
			zap.Int("generated", len(res.Generated)),
			zap.Int("existing", len(res.Existing)),
			zap.Int("skipped", len(res.Skipped)),
		)
		return nil
	}
}

func ConsumePayrollPayslipRequested(ctx context.Context, reader Reader, generator PayslipGenerator, cfg LoopConfig, logger *zap.Logger) {
	log := logger.Named("kafka.consumer.payroll_payslip")
	log.Info("payroll payslip consumer started")
	Loop(ctx, reader, PayslipRequestedHandler(generator, log), cfg, log)
}
