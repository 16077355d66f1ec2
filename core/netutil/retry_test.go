package netutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, 0, func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesTemporaryError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return MarkTemporary(errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, 0, func() error {
		calls++
		return MarkTemporary(errors.New("still down"))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestShouldRetryTemporaryWrap(t *testing.T) {
	if ShouldRetry(errors.New("plain")) {
		t.Fatal("plain error must not retry")
	}
	if !ShouldRetry(MarkTemporary(errors.New("wrapped"))) {
		t.Fatal("temporary error must retry")
	}
}
