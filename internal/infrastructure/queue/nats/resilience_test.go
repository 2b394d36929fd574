package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/clauseguard/clauseguard/internal/core/domain"
)

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"nil", nil, false, false},
		{"context canceled", context.Canceled, false, false},
		{"deadline exceeded", fmt.Errorf("publish: %w", context.DeadlineExceeded), false, false},
		{"no servers", nats.ErrNoServers, true, true},
		{"timeout", fmt.Errorf("publish: %w", nats.ErrTimeout), true, true},
		{"connection closed", nats.ErrConnectionClosed, true, true},
		{"disconnected", nats.ErrDisconnected, true, true},
		{"invalid connection", nats.ErrInvalidConnection, true, true},
		{"payload too big", nats.ErrMaxPayload, false, true},
		{"unknown", errors.New("subject rejected"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyNATSError(tc.err)
			if class.Retryable != tc.retryable {
				t.Errorf("retryable = %v, want %v", class.Retryable, tc.retryable)
			}
			if class.RecordFailure != tc.recordFailure {
				t.Errorf("recordFailure = %v, want %v", class.RecordFailure, tc.recordFailure)
			}
		})
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	if got := wrapTemporaryIfNeeded("publish", nil); got != nil {
		t.Fatalf("nil error should stay nil, got %v", got)
	}

	wrapped := wrapTemporaryIfNeeded("publish", nats.ErrNoServers)
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("connection failure should be temporary, got %v", wrapped)
	}
	if !errors.Is(wrapped, nats.ErrNoServers) {
		t.Fatalf("wrapping must keep the cause, got %v", wrapped)
	}

	// Already-temporary errors are not double wrapped.
	if again := wrapTemporaryIfNeeded("publish", wrapped); again != wrapped {
		t.Fatalf("expected the same error back, got %v", again)
	}

	permanent := errors.New("subject rejected")
	if got := wrapTemporaryIfNeeded("publish", permanent); got != permanent {
		t.Fatalf("permanent error should pass through, got %v", got)
	}
}
