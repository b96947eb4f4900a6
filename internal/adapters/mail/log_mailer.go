package mail

import (
	"context"
	"log"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// LogMailer prints emails instead of sending them. It is used when no
// SendGrid key is configured, so links can be copied from the server log.
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Printf("[MAIL] (log only) %s email to %s: %s\n%s", email.Kind, email.ToAddress, email.Subject, email.PlainText)
	return nil
}
