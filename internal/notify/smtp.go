package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"family-tracker/backend/internal/settings/domain"

	"github.com/wneessen/go-mail"
)

const (
	defaultSMTPPort    = 587
	defaultSMTPTimeout = 10 * time.Second
)

// SettingsSource returns the current notification configuration, or nil when none is stored.
type SettingsSource interface {
	Get(ctx context.Context) (*domain.Notification, error)
}

// SMTPSender delivers mail over SMTP. Settings are read on every Send so changes apply without a restart.
type SMTPSender struct {
	settings SettingsSource
	// tlsConfig is cloned per connection; ServerName is set from the SMTP host. Nil uses defaults.
	tlsConfig *tls.Config
	now       func() time.Time
}

// NewSMTPSender returns an SMTPSender reading settings from src.
func NewSMTPSender(src SettingsSource) *SMTPSender {
	return &SMTPSender{settings: src, now: time.Now}
}

// Send connects to the configured server, uses implicit TLS when smtp_secure is set and STARTTLS
// when offered otherwise, authenticates when a user is set, and submits one message addressed to
// all recipients.
func (s *SMTPSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	n, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("notify: load smtp settings: %w", err)
	}
	if n == nil || n.SMTP.Host == "" || n.SMTP.FromEmail == "" {
		return ErrNotConfigured
	}
	cfg := n.SMTP

	msg, err := s.buildMessage(cfg, recipients, subject, body)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(cfg.Host, s.clientOptions(ctx, cfg)...)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port(cfg)))
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send via %s: %w", addr, err)
	}
	return nil
}

func port(cfg domain.SMTP) int {
	if cfg.Port <= 0 {
		return defaultSMTPPort
	}
	return cfg.Port
}

func (s *SMTPSender) clientOptions(ctx context.Context, cfg domain.SMTP) []mail.Option {
	timeout := defaultSMTPTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < timeout {
			timeout = d
		}
	}
	opts := []mail.Option{
		mail.WithPort(port(cfg)),
		mail.WithTimeout(timeout),
		mail.WithTLSConfig(s.tlsFor(cfg.Host)),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

func (s *SMTPSender) tlsFor(host string) *tls.Config {
	cfg := &tls.Config{}
	if s.tlsConfig != nil {
		cfg = s.tlsConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

func (s *SMTPSender) buildMessage(cfg domain.SMTP, recipients []string, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(cfg.FromName, cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return nil, fmt.Errorf("notify: recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(s.now())
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
