package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func newTestOpenAI(t *testing.T, url string) Generator {
	t.Helper()
	g, err := NewOpenAI(OpenAIConfig{
		ResponsesURL: url,
		APIKey:       "test-key",
		Model:        "test-model",
	})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}
	return g
}

func TestOpenAIGenerateOutputText(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"output_text": "The corridor is silent."}`)
	defer srv.Close()

	result, err := newTestOpenAI(t, srv.URL).Generate(context.Background(), Request{Prompt: "describe"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Kind != KindRaw || result.Raw != "The corridor is silent." {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestOpenAIGenerateNestedOutput(t *testing.T) {
	payload := map[string]any{
		"output": []map[string]any{
			{"content": []map[string]any{{"type": "output_text", "text": `{"narration": "done"}`}}},
		},
	}
	body, _ := json.Marshal(payload)
	srv := newTestServer(t, http.StatusOK, string(body))
	defer srv.Close()

	result, err := newTestOpenAI(t, srv.URL).Generate(context.Background(), Request{Prompt: "act"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Kind != KindStructured {
		t.Fatalf("expected structured result, got %+v", result)
	}
	if result.Structured["narration"] != "done" {
		t.Errorf("narration = %v", result.Structured["narration"])
	}
}

func TestOpenAIStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Class
	}{
		{"rate limited", http.StatusTooManyRequests, ClassRateLimited},
		{"overloaded", http.StatusServiceUnavailable, ClassOverloaded},
		{"server error", http.StatusInternalServerError, ClassOverloaded},
		{"unauthorized", http.StatusUnauthorized, ClassAuth},
		{"forbidden", http.StatusForbidden, ClassAuth},
		{"bad request", http.StatusBadRequest, ClassRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, `{"error": "nope"}`)
			defer srv.Close()

			_, err := newTestOpenAI(t, srv.URL).Generate(context.Background(), Request{Prompt: "p"})
			if ClassOf(err) != tt.want {
				t.Errorf("status %d classified as %q, want %q", tt.status, ClassOf(err), tt.want)
			}
		})
	}
}

func TestOpenAIMissingOutput(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"output": []}`)
	defer srv.Close()

	_, err := newTestOpenAI(t, srv.URL).Generate(context.Background(), Request{Prompt: "p"})
	if ClassOf(err) != ClassMalformed {
		t.Errorf("expected malformed, got %v", err)
	}
}

func TestOpenAIConfigValidation(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{Model: "m"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Error("expected error for missing model")
	}
}
