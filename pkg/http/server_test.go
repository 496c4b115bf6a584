package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ResuMatch/internal/config"
)

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Middleware: config.MiddlewareConfig{
			RateLimiter: config.RateLimiterConfig{
				Enabled:   true,
				Algorithm: "tokenBucket",
				TokenBucket: config.TokenBucketConfig{
					Rate:     10,
					Capacity: 5,
				},
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 2,
				SuccessThreshold: 2,
				Timeout:          "10s",
			},
		},
	}
}

func TestNewServerWithAddress(t *testing.T) {
	srv, err := NewServer(newTestConfig(), WithAddress(":9999"))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.httpServer.Addr != ":9999" {
		t.Errorf("server address = %s, want :9999", srv.httpServer.Addr)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.RateLimiter.TokenBucket.Capacity = 2
	cfg.Middleware.RateLimiter.TokenBucket.Rate = 1

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	srv.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testServer := httptest.NewServer(srv.httpServer.Handler)
	defer testServer.Close()

	// The bucket starts full, so the first two requests pass.
	for i := 0; i < 2; i++ {
		resp, err := http.Get(testServer.URL + "/healthz")
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("request %d status = %d, want %d", i+1, resp.StatusCode, http.StatusOK)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(testServer.URL + "/healthz")
	if err != nil {
		t.Fatalf("request 3 failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("request 3 status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cfg := newTestConfig()
	cfg.Middleware.CircuitBreaker.FailureThreshold = 2

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	// Always fails so the breaker trips after the threshold.
	srv.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store unreachable", http.StatusInternalServerError)
	})

	testServer := httptest.NewServer(srv.httpServer.Handler)
	defer testServer.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(testServer.URL + "/readyz")
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("request %d status = %d, want %d", i+1, resp.StatusCode, http.StatusInternalServerError)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(testServer.URL + "/readyz")
	if err != nil {
		t.Fatalf("request 3 failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("request 3 status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Circuit Breaker is open") {
		t.Errorf("body = %q, want it to mention the open circuit breaker", string(body))
	}
}
