// Package mailer sends email through an SMTP submission endpoint, by default
// Gmail with an app password (STARTTLS on port 587).
package mailer

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"supaops/internal/config"
)

type Mailer struct {
	cfg config.EmailConfig

	// send is swappable for tests; defaults to dialing the configured server.
	send func(m *gomail.Message) error
}

func New(cfg config.EmailConfig) (*Mailer, error) {
	if cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("mailer: %s and %s must be set",
			config.EnvGmailUser, config.EnvGmailAppPassword)
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &Mailer{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}, nil
}

// SendHTML delivers an HTML message to the given recipient.
func (m *Mailer) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("mailer: recipient required (%s)", config.EnvReportRecipient)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := m.buildMessage(to, subject, "text/html", htmlBody)
	if err := m.send(msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// SendAlert delivers a plain-text message to the configured alert recipient.
// It satisfies logx.AlertSender so high-severity log lines can page by email.
func (m *Mailer) SendAlert(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := m.cfg.AlertRecipient
	if to == "" {
		return fmt.Errorf("mailer: alert recipient not configured")
	}
	msg := m.buildMessage(to, subject, "text/plain", body)
	if err := m.send(msg); err != nil {
		return fmt.Errorf("mailer: alert to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) buildMessage(to, subject, contentType, body string) *gomail.Message {
	msg := gomail.NewMessage()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody(contentType, body)
	return msg
}
