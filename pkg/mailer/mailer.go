package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/noah-isme/clinic-scheduling-api/pkg/config"
)

// ErrDisabled is returned by Send when mail delivery is switched off.
var ErrDisabled = errors.New("mailer disabled")

// Message is a plain text email with an optional HTML alternative.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

// New returns a mailer for cfg.
func New(cfg config.MailConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Enabled reports whether messages will actually be sent.
func (m *SMTPMailer) Enabled() bool {
	return m != nil && m.cfg.Enabled
}

// Send delivers msg, giving up at the earlier of ctx's deadline and the configured timeout.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}

	built, err := BuildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	dialer.SSL = m.cfg.UseTLS
	if m.cfg.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	}

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(built)
	}()

	wait := m.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < wait {
			wait = d
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

// BuildMessage validates msg and converts it into a gomail message.
func BuildMessage(from string, msg Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("from address is required")
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		return nil, errors.New("subject is required")
	}

	out := gomail.NewMessage()
	out.SetHeader("From", from)
	out.SetHeader("To", to...)
	out.SetHeader("Subject", subject)

	hasText := strings.TrimSpace(msg.TextBody) != ""
	hasHTML := strings.TrimSpace(msg.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		out.SetBody("text/plain", msg.TextBody)
		out.AddAlternative("text/html", msg.HTMLBody)
	case hasHTML:
		out.SetBody("text/html", msg.HTMLBody)
	case hasText:
		out.SetBody("text/plain", msg.TextBody)
	default:
		return nil, errors.New("message body is required")
	}
	return out, nil
}
