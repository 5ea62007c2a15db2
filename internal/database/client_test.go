package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const sampleBody = `{"data": [
	{"attributes": {"board_type": "K64F", "name": "FRDM-K64F", "product_code": "0240"}},
	{"attributes": {"board_type": "NUCLEO_F401RE", "name": "NUCLEO-F401RE", "product_code": "0720"}}
]}`

func TestClient_FetchTargets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	defer client.Close()

	records, err := client.FetchTargets(context.Background())
	if err != nil {
		t.Fatalf("FetchTargets() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	attrs, ok := records[1]["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("records[1][attributes] has type %T, want map", records[1]["attributes"])
	}
	if attrs["product_code"] != "0720" {
		t.Errorf("records[1] product_code = %v, want 0720", attrs["product_code"])
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		URL:       server.URL,
		AuthToken: "secret",
		Headers:   map[string]string{"X-Custom": "value"},
	})

	if _, err := client.FetchTargets(context.Background()); err != nil {
		t.Fatalf("FetchTargets() error = %v", err)
	}

	if got.Get("Authorization") != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", got.Get("Authorization"), "Bearer secret")
	}
	if got.Get("X-Custom") != "value" {
		t.Errorf("X-Custom = %q, want %q", got.Get("X-Custom"), "value")
	}
	if got.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q, want application/json", got.Get("Accept"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	if _, err := NewClient(Config{URL: server.URL}).FetchTargets(context.Background()); err != nil {
		t.Fatalf("FetchTargets() error = %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
}

func TestClient_RequestIDUniquePerCall(t *testing.T) {
	var (
		mu  sync.Mutex
		ids []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	for i := 0; i < 2; i++ {
		if _, err := client.FetchTargets(context.Background()); err != nil {
			t.Fatalf("FetchTargets() call %d error = %v", i, err)
		}
	}

	if len(ids) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(ids))
	}
	if ids[0] == ids[1] {
		t.Errorf("request IDs should differ between calls, both were %q", ids[0])
	}
}

func TestClient_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors": ["bad token"]}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{URL: server.URL}).FetchTargets(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("FetchTargets() error = %v, want ErrUnexpectedStatus", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should mention status code, got: %v", err)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>maintenance</html>"},
		{"missing data", `{"meta": {}}`},
		{"null data", `{"data": null}`},
		{"data not array", `{"data": {"board_type": "K64F"}}`},
		{"record not object", `{"data": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{URL: server.URL}).FetchTargets(context.Background())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("FetchTargets() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestClient_ResponseSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		maxBody int64
		wantErr error
	}{
		{"body at limit", int64(len(sampleBody)), nil},
		{"body over limit", int64(len(sampleBody)) - 1, ErrResponseTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{URL: server.URL})
			client.maxBody = tt.maxBody

			records, err := client.FetchTargets(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FetchTargets() error = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrMalformedResponse) {
				t.Errorf("FetchTargets() error = %v, oversized body reported as malformed", err)
			}
			if tt.wantErr == nil && len(records) != 2 {
				t.Errorf("len(records) = %d, want 2", len(records))
			}
		})
	}
}

func TestNewClient_ResponseSizeLimit(t *testing.T) {
	if got := NewClient(Config{}).maxBody; got != maxResponseBodySize {
		t.Errorf("maxBody = %d, want %d", got, maxResponseBodySize)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{URL: server.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.FetchTargets(context.Background())
	if err == nil {
		t.Fatal("FetchTargets() expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("FetchTargets() took %v, timeout not applied", elapsed)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Config{URL: server.URL}).FetchTargets(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchTargets() error = %v, want context.Canceled", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	if client.URL() != DefaultURL {
		t.Errorf("URL() = %q, want %q", client.URL(), DefaultURL)
	}
	if client.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.timeout, DefaultTimeout)
	}
	if client.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
}

func TestNewClient_HeadersCopied(t *testing.T) {
	headers := map[string]string{"X-Custom": "value"}
	client := NewClient(Config{Headers: headers})

	headers["X-Custom"] = "modified"
	if client.headers["X-Custom"] != "value" {
		t.Errorf("mutation affected client: headers[X-Custom] = %q", client.headers["X-Custom"])
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient(Config{})
	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}

func TestDecode_EmptyData(t *testing.T) {
	records, err := Decode([]byte(`{"data": []}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("Decode() = %v, want empty non-nil slice", records)
	}
}
