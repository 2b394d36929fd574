package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == "" {
		t.Fatal("expected generated request id in context")
	}
	if rec.Header().Get(requestIDHeader) != seen {
		t.Errorf("response header %q does not match context id %q", rec.Header().Get(requestIDHeader), seen)
	}
}

func TestRequestIDPropagatedWhenPresent(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-42" {
		t.Errorf("expected propagated request id, got %q", seen)
	}
}

func TestRecoveryMiddlewareTurnsPanicInto500(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestInFlightLimitShedsExcessLoad(t *testing.T) {
	blocker := make(chan struct{})
	entered := make(chan struct{}, 1)

	handler := inFlightLimitMiddleware(1, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Non-blocking: requests after the first have no reader waiting.
		select {
		case entered <- struct{}{}:
		default:
		}
		<-blocker
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while at capacity, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on shed response")
	}

	close(blocker)
	wg.Wait()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code == http.StatusServiceUnavailable {
		t.Error("expected slot to be released after first request finished")
	}
}

func TestInFlightLimitDisabled(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if handler := inFlightLimitMiddleware(0, inner); handler == nil {
		t.Fatal("expected passthrough handler")
	}
}
