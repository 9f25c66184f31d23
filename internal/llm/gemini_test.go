package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type":        "object",
		"description": "a batch",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": float64(20),
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt":  map[string]any{"type": "string"},
						"correct": map[string]any{"type": "integer", "enum": []any{"0", "1"}},
					},
					"required": []string{"prompt", "correct"},
				},
			},
		},
		"required": []any{"questions"},
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject {
		t.Errorf("Type = %v, want OBJECT", s.Type)
	}
	if s.Description != "a batch" {
		t.Errorf("Description = %q", s.Description)
	}
	if len(s.Required) != 1 || s.Required[0] != "questions" {
		t.Errorf("Required = %v", s.Required)
	}
	qs := s.Properties["questions"]
	if qs == nil || qs.Type != genai.TypeArray {
		t.Fatalf("questions = %+v, want ARRAY", qs)
	}
	if qs.MinItems == nil || *qs.MinItems != 1 {
		t.Errorf("MinItems = %v, want 1", qs.MinItems)
	}
	if qs.MaxItems == nil || *qs.MaxItems != 20 {
		t.Errorf("MaxItems = %v, want 20", qs.MaxItems)
	}
	item := qs.Items
	if item == nil || item.Properties["prompt"].Type != genai.TypeString {
		t.Fatalf("items = %+v", item)
	}
	if got := item.Properties["correct"]; got.Type != genai.TypeInteger || len(got.Enum) != 2 {
		t.Errorf("correct = %+v", got)
	}
	if len(item.Required) != 2 {
		t.Errorf("item Required = %v", item.Required)
	}
}

func geminiServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiProviderGenerate(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"question\":\"q\",\"answer\":2}"}]},"finishReason":"STOP"}],`+
		`"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`)

	p, err := NewGeminiProvider(context.Background(), ProviderConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	resp, err := p.Generate(context.Background(), UserRequest("sys", "make one", pairSchema, 128))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"question":"q","answer":2}` {
		t.Errorf("Content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestGeminiProviderRateLimited(t *testing.T) {
	srv := geminiServer(t, http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)
	p, err := NewGeminiProvider(context.Background(), ProviderConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	_, err = p.Generate(context.Background(), UserRequest("", "x", nil, 64))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Errorf("error = %v, want ErrRateLimit", err)
	}
}
