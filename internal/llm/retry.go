package llm

import (
	"context"
	"fmt"
)

// WithRetry runs op up to attempts times and returns the first success.
// Attempts are independent and immediate: malformed-output retries are local
// and cheap, so no backoff delay is applied between them (unlike webhook
// delivery, which backs off to avoid hammering the receiver). On exhaustion
// the last error is returned to the caller.
func WithRetry[T any](ctx context.Context, attempts int, label string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s: %w", label, err)
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", label, attempts, lastErr)
}
