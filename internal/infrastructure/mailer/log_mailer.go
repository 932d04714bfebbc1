// Package mailer delivers transactional e-mail
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/ports/outbound"
)

var _ outbound.EmailService = (*LogMailer)(nil)

// LogMailer writes every message to the log instead of sending it. It is the
// default until an SMTP or API mailer is configured.
type LogMailer struct {
	from   string
	logger *zap.Logger
}

// NewLogMailer creates a mailer that logs messages sent from the given address
func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger.Named("mailer")}
}

// SendPasswordReset logs the reset message for to
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.logger.Info("Password reset e-mail",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", "Reset your AyurWell password"),
		zap.String("body", resetBody(name, resetLink)),
	)
	return nil
}

func resetBody(name, link string) string {
	return fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for a reset you can ignore this message.", name, link)
}
