package llm

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base Client
}

// WithRetry wraps a client with a single retry on transient failures.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return retryingClient{base: base}
}

func (r retryingClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	resp, err := r.base.Generate(ctx, prompt, opts)
	if err == nil || !shouldRetry(err) {
		return resp, err
	}

	log.Printf("llm retry attempt=1 error=%v", err)
	select {
	case <-time.After(retryBaseDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.Generate(ctx, prompt, opts)
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "status code: 429") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
