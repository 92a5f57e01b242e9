package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func newTestRetry(p Provider, waits *[]time.Duration) *retryProvider {
	r := WithRetry(p, RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}).(*retryProvider)
	r.wait = func(ctx context.Context, d time.Duration) error {
		if waits != nil {
			*waits = append(*waits, d)
		}
		return ctx.Err()
	}
	return r
}

var okContent = json.RawMessage(`{"ok":true}`)

func TestRetry(t *testing.T) {
	down := func() MockResponse { return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}} }
	invalid := func() MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	}
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{{Content: okContent}}, false, 1},
		{"transient then ok", []MockResponse{down(), {Content: okContent}}, false, 2},
		{"all attempts fail", []MockResponse{down(), down(), down()}, true, 3},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}}, true, 1},
		{"auth not retried", []MockResponse{{Err: &ErrAuth{Err: errors.New("401")}}, {Content: okContent}}, true, 1},
		{"invalid retried once", []MockResponse{invalid(), invalid(), {Content: okContent}}, true, 2},
		{"invalid then ok", []MockResponse{invalid(), {Content: okContent}}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			_, err := newTestRetry(mock, nil).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 7 * time.Second, Err: errors.New("429")}},
		MockResponse{Content: okContent},
	)
	var waits []time.Duration
	if _, err := newTestRetry(mock, &waits).Generate(context.Background(), Request{}); err != nil {
		t.Fatal(err)
	}
	if len(waits) != 1 || waits[0] != 7*time.Second {
		t.Fatalf("waits = %v", waits)
	}
}

func TestRetry_BackoffGrowsWithJitter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	var waits []time.Duration
	_, _ = newTestRetry(mock, &waits).Generate(context.Background(), Request{})
	if len(waits) != 2 {
		t.Fatalf("waits = %v, want 2 (none after the last attempt)", waits)
	}
	within := func(d, base time.Duration) bool {
		return d >= base*8/10 && d <= base*12/10
	}
	if !within(waits[0], 100*time.Millisecond) || !within(waits[1], 200*time.Millisecond) {
		t.Fatalf("waits = %v", waits)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: okContent},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRetry(mock, nil).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d", mock.CallCount())
	}
}
