package network

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"market-terminal/src/logger"
	"market-terminal/src/models"
)

// -----------------------------------------------------------------------------

func testManager(maxRetries int) *AsyncNetworkManager {
	cfg := &models.MConfig{
		Network: models.MNetworkConfig{
			RequestTimeout:     5,
			MaxRetries:         maxRetries,
			ConcurrentRequests: 2,
		},
	}
	return NewAsyncNetworkManager(cfg, logger.NewLogger("test"))
}

// -----------------------------------------------------------------------------

func TestGetAppendsQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testManager(0).Get(srv.URL, map[string]string{"interval": "15m", "range": "1d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
	if !strings.Contains(gotQuery, "interval=15m") || !strings.Contains(gotQuery, "range=1d") {
		t.Errorf("query params missing: %q", gotQuery)
	}
}

// -----------------------------------------------------------------------------

func TestGetSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := testManager(0).Get(srv.URL, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA == "" || strings.HasPrefix(gotUA, "Go-http-client") {
		t.Errorf("expected a browser user agent, got %q", gotUA)
	}
}

// -----------------------------------------------------------------------------

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, err := testManager(2).Get(srv.URL, nil)
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("expected recovered body, got %q", body)
	}
	if atomic.LoadInt64(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

// -----------------------------------------------------------------------------

func TestGetExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := testManager(1).Get(srv.URL, nil); err == nil {
		t.Fatal("persistent 403 must exhaust retries and error")
	}
}
