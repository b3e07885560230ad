// Package mailer delivers portal notifications over SMTP.
package mailer

import (
	"context"
	"net/mail"

	"github.com/PratikDhanave/njrotc-portal-api/internal/config"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_sender.go -package=mocks

// Message is one outbound email with HTML and plain-text alternatives.
type Message struct {
	From    mail.Address
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender is a mail-transport session.
// Verify checks that the server accepts a connection and the configured credentials.
type Sender interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) error
}

// Factory opens a session for the given transport settings.
type Factory func(cfg config.SMTP) Sender

// NewSMTPFactory is the production Factory.
func NewSMTPFactory() Factory {
	return func(cfg config.SMTP) Sender {
		return NewSMTPSender(cfg)
	}
}
