package domain

import "context"

var ErrMailQueueFull = newError(KindUnavailable, "email service is busy, please retry shortly")

const (
	EmailKindVerification  = "verification"
	EmailKindPasswordReset = "password_reset"
)

// Email is a rendered transactional message ready for delivery.
type Email struct {
	Kind      string
	ToName    string
	ToAddress string
	Subject   string
	PlainText string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}
