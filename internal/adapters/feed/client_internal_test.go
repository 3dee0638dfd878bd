package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestGet_RetriesWaitOnLimiter(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"slug": "reykjavik"})
	}))
	defer ts.Close()

	cl, err := New(ts.URL, "", 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// two tokens, no refill within the test
	cl.rl = rate.NewLimiter(rate.Every(time.Hour), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cl.GetLocation(ctx, "reykjavik"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
	if tokens := cl.rl.Tokens(); tokens >= 0.5 {
		t.Fatalf("retry did not spend a limiter token, %.2f left", tokens)
	}
}

func TestGet_RetryBlockedByEmptyLimiter(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cl, err := New(ts.URL, "", 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cl.rl = rate.NewLimiter(rate.Every(time.Hour), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := cl.GetLocation(ctx, "reykjavik"); err == nil {
		t.Fatalf("expected an error once the limiter is exhausted")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("retry bypassed the limiter: %d attempts", got)
	}
}
