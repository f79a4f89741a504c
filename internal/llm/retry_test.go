package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), 3, "test_op", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("unexpected result: %q", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryRecoversAfterFailure(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), 3, "test_op", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("malformed output")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("unexpected result: %d", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), 2, "metadata_extraction", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("parse error")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if !strings.Contains(err.Error(), "metadata_extraction failed after 2 attempts") {
		t.Errorf("unexpected error message: %v", err)
	}
	if !strings.Contains(err.Error(), "parse error") {
		t.Errorf("last error not wrapped: %v", err)
	}
}

func TestWithRetryMinimumOneAttempt(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), 0, "test_op", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryStopsOnceContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := WithRetry(ctx, 3, "test_op", func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("should not matter")
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls after cancellation, got %d", calls)
	}
}
