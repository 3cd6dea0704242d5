package notify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Dispatcher wraps a Notifier with a per-send deadline and a process-wide rate limit.
// Waiting for the limiter counts against the deadline; a send that times out is a failure.
type Dispatcher struct {
	next    Notifier
	limiter *rate.Limiter
	timeout time.Duration
}

// NewDispatcher returns a Dispatcher allowing perMinute sends per minute with the given burst.
// Non-positive perMinute disables rate limiting; non-positive timeout disables the deadline.
func NewDispatcher(next Notifier, perMinute, burst int, timeout time.Duration) *Dispatcher {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Dispatcher{next: next, limiter: rate.NewLimiter(limit, burst), timeout: timeout}
}

// Send delivers the message through the wrapped Notifier.
func (d *Dispatcher) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify: rate limit: %w", err)
	}
	errc := make(chan error, 1)
	go func() {
		errc <- d.next.Send(ctx, recipients, subject, body)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return fmt.Errorf("notify: send: %w", ctx.Err())
	}
}
