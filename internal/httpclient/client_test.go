package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(server.URL),
		WithRetry(RetryConfig{RetryMax: 3, RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	resp, err := client.NewRequest().SetResult(&out).Get(context.Background(), "/status")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.IsError() || !out.OK {
		t.Errorf("expected decoded success, got status %d body %q", resp.StatusCode, resp.String())
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestClient_QueryEscapingAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "a b,c" {
			t.Errorf("ids = %q", got)
		}
		if got := r.Header.Get("X-Key"); got != "secret" {
			t.Errorf("X-Key = %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithBaseURL(server.URL+"/"),
		WithHeaders(map[string]string{"X-Key": "secret"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.NewRequest().SetQueryParam("ids", "a b,c").Get(context.Background(), "/markets"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestClient_ErrorHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`slow down`))
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("rate limited")
	resp, err := client.NewRequestWithOptions(
		WithResponseErrorHandler(func(status int, body []byte) error {
			if status == http.StatusTooManyRequests {
				return sentinel
			}
			return nil
		}),
	).Get(context.Background(), "/x")

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if resp == nil || resp.String() != "slow down" {
		t.Errorf("expected response body to be returned with the error")
	}
}
