package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

type sendClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client   sendClient
	fromName string
	fromAddr string
}

func NewSendGridMailer(apiKey, fromName, fromAddress string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddress,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, email domain.Email) error {
	msg := m.buildMessage(email)

	response, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d: %s", response.StatusCode, response.Body)
	}

	log.Printf("[MAIL] %s email sent to %s (status: %d)", email.Kind, email.ToAddress, response.StatusCode)
	return nil
}

func (m *SendGridMailer) buildMessage(email domain.Email) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(m.fromName, m.fromAddr)
	to := sgmail.NewEmail(email.ToName, email.ToAddress)
	return sgmail.NewSingleEmail(from, email.Subject, to, email.PlainText, email.HTML)
}
