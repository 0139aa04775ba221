package consumer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the part of *kafkago.Reader a consume loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// HandlerFunc processes one message. A decode failure should be returned as ErrUndecodable.
type HandlerFunc func(ctx context.Context, msg kafkago.Message) error

var ErrUndecodable = errors.New("undecodable message")

type LoopConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Loop fetches, handles and commits messages until ctx is cancelled.
// Undecodable messages and permanent failures are committed so they do not block the partition.
// Transient failures are retried in place and left uncommitted once attempts run out.
func Loop(ctx context.Context, reader Reader, handle HandlerFunc, cfg LoopConfig, log *zap.Logger) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		fields := []zap.Field{
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		}

		err = handleWithRetry(ctx, msg, handle, cfg)
		switch {
		case err == nil:
		case errors.Is(err, ErrUndecodable):
			log.Error("decode message failed, skipping", append(fields, zap.Error(err))...)
		case isPermanent(err):
			log.Warn("message rejected, skipping", append(fields, zap.Error(err))...)
		default:
			if ctx.Err() != nil {
				return
			}
			log.Error("handle message failed", append(fields, zap.Error(err))...)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", append(fields, zap.Error(err))...)
		}
	}
}

func handleWithRetry(ctx context.Context, msg kafkago.Message, handle HandlerFunc, cfg LoopConfig) error {
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = handle(ctx, msg)
		if err == nil || errors.Is(err, ErrUndecodable) || isPermanent(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(cfg.RetryDelay * time.Duration(attempt)):
		}
	}
	return err
}

// isPermanent treats client-side application errors as final; retrying cannot change their outcome.
func isPermanent(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.HTTPStatus > 0 && appErr.HTTPStatus < http.StatusInternalServerError
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
