package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-key", "test-model", srv.URL)
}

// TestGenerate verifies the request shape and response parsing against a
// fake chat-completions endpoint.
func TestGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %v, want one user message", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Resumo do histórico."}},
			},
		})
	})

	got, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Resumo do histórico." {
		t.Errorf("Generate = %q", got)
	}
}

// TestGenerateHTTPError verifies a non-200 status becomes an error.
func TestGenerateHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for HTTP 429, got nil")
	}
}

// TestGenerateEmptyResponse verifies an empty choices array is an error,
// never an empty insight.
func TestGenerateEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty choices, got nil")
	}
}

// TestConfigured verifies key presence detection, including on a nil
// client.
func TestConfigured(t *testing.T) {
	if !NewClient("key", "").Configured() {
		t.Error("client with key reports unconfigured")
	}
	if NewClient("", "").Configured() {
		t.Error("client without key reports configured")
	}
	var nilClient *Client
	if nilClient.Configured() {
		t.Error("nil client reports configured")
	}
}
