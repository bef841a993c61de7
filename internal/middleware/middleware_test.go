package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docmorph/api/internal/config"
	"golang.org/x/time/rate"
)

func TestWrapInjectsTrace(t *testing.T) {
	var gotTrace string
	handler := Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotTrace, _ = r.Context().Value(config.TraceIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotTrace == "" {
		t.Error("no trace id injected into the request context")
	}
	if req.Header.Get("X-Trace-Id") != gotTrace {
		t.Errorf("header trace %q != context trace %q", req.Header.Get("X-Trace-Id"), gotTrace)
	}
}

func TestWrapKeepsCallerTrace(t *testing.T) {
	var gotTrace string
	handler := Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotTrace, _ = r.Context().Value(config.TraceIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Trace-Id", "trace-abc")
	handler(httptest.NewRecorder(), req)

	if gotTrace != "trace-abc" {
		t.Errorf("trace = %q, want trace-abc", gotTrace)
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)

	first := limiter.GetLimiter("10.0.0.3")
	if first != limiter.GetLimiter("10.0.0.3") {
		t.Error("same IP must reuse its limiter")
	}
	if first == limiter.GetLimiter("10.0.0.4") {
		t.Error("distinct IPs must not share a limiter")
	}

	if !first.Allow() || !first.Allow() {
		t.Fatal("burst of 2 must be allowed")
	}
	if first.Allow() {
		t.Error("third immediate request must be rejected")
	}
}

func TestWrapRejectsAfterBurst(t *testing.T) {
	handler := Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var lastCode int
	for i := 0; i < config.BurstRateLimitPerSecond+1; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		rec := httptest.NewRecorder()
		handler(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, want 429", lastCode)
	}
}
