package mailer

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"time"

	"github.com/PratikDhanave/njrotc-portal-api/internal/config"
)

// SMTPSender talks to a single SMTP relay. Each call opens its own connection.
type SMTPSender struct {
	cfg config.SMTP
	now func() time.Time
}

// NewSMTPSender builds a sender for cfg.
func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg, now: time.Now}
}

// Verify connects, authenticates and hangs up.
func (s *SMTPSender) Verify(ctx context.Context) error {
	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	if err := c.Quit(); err != nil {
		return newError(CodeProtocol, "quit", err)
	}
	return nil
}

// Send delivers msg to every address in msg.To.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	body, err := buildMessage(msg, s.now())
	if err != nil {
		return newError(CodeMessage, "build", err)
	}

	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(msg.From.Address); err != nil {
		return newError(CodeEnvelope, "mail from", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return newError(CodeEnvelope, "rcpt to", err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return newError(CodeMessage, "data", err)
	}
	if _, err := w.Write(body); err != nil {
		return newError(CodeMessage, "data", err)
	}
	if err := w.Close(); err != nil {
		return newError(CodeMessage, "data", err)
	}

	if err := c.Quit(); err != nil {
		return newError(CodeProtocol, "quit", err)
	}
	return nil
}

// connect dials the relay, upgrades to TLS when needed and authenticates.
func (s *SMTPSender) connect(ctx context.Context) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.Secure {
		// Implicit TLS, usually port 465.
		td := &tls.Dialer{NetDialer: dialer, Config: s.tlsConfig()}
		conn, err = td.DialContext(ctx, "tcp", s.cfg.Addr())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", s.cfg.Addr())
	}
	if err != nil {
		return nil, newError(CodeConnection, "dial", err)
	}

	if d, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(d)
	} else if s.cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, newError(CodeConnection, "greeting", err)
	}

	if !s.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(s.tlsConfig()); err != nil {
				c.Close()
				return nil, newError(CodeTLS, "starttls", err)
			}
		}
	}

	if s.cfg.HasCredentials() {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			c.Close()
			return nil, newError(CodeAuth, "auth", err)
		}
	}

	return c, nil
}

func (s *SMTPSender) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.SkipTLSVerify, //nolint:gosec // opt-in via SMTP_TLS_SKIP_VERIFY
	}
}
