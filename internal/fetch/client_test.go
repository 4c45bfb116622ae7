package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// TestNew tests client construction with various options.
func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New("https://upstream.example.com")

		if c.baseURL != "https://upstream.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://upstream.example.com")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.userAgent == "" {
			t.Error("userAgent should not be empty")
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := New("https://upstream.example.com", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with retries option", func(t *testing.T) {
		c := New("https://upstream.example.com", WithRetries(5, 2*time.Second))
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 2*time.Second)
		}
	})

	t.Run("with header option", func(t *testing.T) {
		c := New("https://upstream.example.com",
			WithHeader("Origin", "https://www.kap.org.tr"),
			WithHeader("Referer", "https://www.kap.org.tr/tr/bildirim-sorgu"),
		)
		if c.headers["Origin"] != "https://www.kap.org.tr" {
			t.Errorf("Origin header = %q", c.headers["Origin"])
		}
		if c.headers["Referer"] != "https://www.kap.org.tr/tr/bildirim-sorgu" {
			t.Errorf("Referer header = %q", c.headers["Referer"])
		}
	})

	t.Run("with insecure TLS", func(t *testing.T) {
		c := New("https://upstream.example.com", WithInsecureTLS())
		tr, ok := c.httpClient.Transport.(*http.Transport)
		if !ok {
			t.Fatal("transport not replaced")
		}
		if !tr.TLSClientConfig.InsecureSkipVerify {
			t.Error("InsecureSkipVerify not set")
		}
	})
}

// TestUpstreamError tests the UpstreamError type.
func TestUpstreamError(t *testing.T) {
	t.Run("Error method", func(t *testing.T) {
		err := &UpstreamError{
			StatusCode: 404,
			URL:        "https://upstream.example.com/page",
			Body:       []byte("not found"),
		}
		expected := "upstream error 404: https://upstream.example.com/page"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsRetryable", func(t *testing.T) {
		tests := []struct {
			code int
			want bool
		}{
			{500, true},
			{502, true},
			{503, true},
			{429, true},
			{400, false},
			{403, false},
			{404, false},
		}
		for _, tt := range tests {
			err := &UpstreamError{StatusCode: tt.code}
			if got := err.IsRetryable(); got != tt.want {
				t.Errorf("IsRetryable() for %d = %v, want %v", tt.code, got, tt.want)
			}
		}
	})
}

func TestGetHTML_BrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, WithUserAgent("test-browser/1.0"))
	body, err := c.GetHTML(context.Background(), "/page", nil)
	if err != nil {
		t.Fatalf("GetHTML failed: %v", err)
	}

	if string(body) != "<html></html>" {
		t.Errorf("body = %q", body)
	}
	if gotUA != "test-browser/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-browser/1.0")
	}
	if gotLang == "" {
		t.Error("Accept-Language header missing")
	}
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(3, 10*time.Millisecond))

	var result map[string]string
	if err := c.GetJSON(context.Background(), "/api", nil, &result); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if result["status"] != "ok" {
		t.Errorf("result = %v", result)
	}
}

func TestGetJSON_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(3, 10*time.Millisecond))

	var result map[string]string
	err := c.GetJSON(context.Background(), "/missing", nil, &result)
	if err == nil {
		t.Fatal("expected error")
	}

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error type = %T, want *UpstreamError", err)
	}
	if upErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", upErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries on 404)", calls.Load())
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{"echo": req["query"]})
	}))
	defer srv.Close()

	c := New(srv.URL)

	var result map[string]string
	err := c.PostJSON(context.Background(), "/query", map[string]string{"query": "halka arz"}, &result)
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if result["echo"] != "halka arz" {
		t.Errorf("echo = %q, want %q", result["echo"], "halka arz")
	}
}

func TestGetHTML_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(10, 50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetHTML(ctx, "/slow", nil)
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}
