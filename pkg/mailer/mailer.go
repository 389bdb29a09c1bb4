package mailer

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidHeader is returned when a recipient or subject would break the message headers.
var ErrInvalidHeader = errors.New("mailer: header contains line break")

// Notifier delivers a plain-text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogMailer writes messages to the logger instead of delivering them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(ctx context.Context, recipient, subject, body string) error {
	if err := checkHeaders(recipient, subject); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("email (log only)",
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

func checkHeaders(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrInvalidHeader
		}
	}
	return nil
}
