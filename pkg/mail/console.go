package mail

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleSender logs messages instead of delivering them. Used in development
// when no SendGrid key is configured.
type ConsoleSender struct {
	logger *zap.Logger
}

var _ Sender = (*ConsoleSender)(nil)

// NewConsoleSender constructs a console sender.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{logger: logger}
}

// Send writes the message to the log.
func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, to.Address)
	}
	s.logger.Info("email (console)",
		zap.Strings("to", recipients),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
