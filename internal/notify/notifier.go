// Package notify delivers alert emails. A Dispatcher bounds and rate-limits each send;
// SMTPSender performs delivery using the SMTP settings stored at the time of the send.
package notify

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no usable SMTP settings are stored.
	ErrNotConfigured = errors.New("notify: smtp not configured")
	// ErrNoRecipients is returned when a send has no recipient addresses.
	ErrNoRecipients = errors.New("notify: no recipients")
)

// Notifier sends one message to every recipient. A nil error means the message was accepted for delivery.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, recipients []string, subject, body string) error

func (f NotifierFunc) Send(ctx context.Context, recipients []string, subject, body string) error {
	return f(ctx, recipients, subject, body)
}
