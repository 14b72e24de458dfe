package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"analyst-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base      Client
	attempts  int
	baseDelay time.Duration
}

// WithRetry retries transient failures up to attempts extra times with
// exponential backoff. attempts <= 0 returns base unchanged.
func WithRetry(base Client, attempts int) Client {
	return withRetryDelay(base, attempts, retryBaseDelay)
}

func withRetryDelay(base Client, attempts int, baseDelay time.Duration) Client {
	if base == nil || attempts <= 0 {
		return base
	}
	return retryingClient{base: base, attempts: attempts, baseDelay: baseDelay}
}

func (r retryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.baseDelay
	policy.MaxElapsedTime = 0

	attempt := 0
	var reply string
	op := func() error {
		attempt++
		out, err := r.base.Complete(ctx, prompt)
		if err == nil {
			reply = out
			return nil
		}
		if !ShouldRetry(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		telemetry.Warn("llm.retry", map[string]any{
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"err":     err,
		})
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.attempts)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return reply, nil
}

// ShouldRetry reports whether err looks transient: timeouts, dropped
// connections and provider 5xx/429 responses.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var statusErr interface{ HTTPStatus() int }
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatus()
		return status == 429 || status >= 500
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"http status 5",
		"server_error",
		"resource_exhausted",
		"unavailable",
		"connection reset",
		"connection refused",
		"broken pipe",
		"tls handshake timeout",
		"unexpected eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
