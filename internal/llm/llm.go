package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Client sends a single prompt to a hosted model and returns its text reply.
// Implementations must be safe for concurrent use; one Client is shared by
// every request handler.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured: set API_KEY")

// ErrEmptyResponse is returned when the provider replies without text.
var ErrEmptyResponse = errors.New("llm response empty content")

// PlaceholderClient stands in when no API key is configured, so the service
// still starts and every completion fails with ErrNotConfigured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type timeoutClient struct {
	base    Client
	timeout time.Duration
}

// WithTimeout bounds every completion call. A non-positive timeout returns
// base unchanged.
func WithTimeout(base Client, timeout time.Duration) Client {
	if base == nil || timeout <= 0 {
		return base
	}
	return timeoutClient{base: base, timeout: timeout}
}

func (t timeoutClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.base.Complete(ctx, prompt)
}

// StatusError is a provider failure that carries the provider's HTTP status.
// Its text is "<status> <provider message>".
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// HTTPStatus returns the provider status code.
func (e *StatusError) HTTPStatus() int { return e.Status }
