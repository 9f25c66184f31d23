package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

var pairSchema = &Schema{
	Name: "test-pair",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"answer":   map[string]any{"type": "integer"},
		},
		"required":             []any{"question", "answer"},
		"additionalProperties": false,
	},
}

func TestMockProviderScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: usage(10, 5)},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
	)

	resp, err := mock.Generate(context.Background(), UserRequest("", "first", nil, 100))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"a":1}` {
		t.Errorf("Content = %s, want {\"a\":1}", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}

	_, err = mock.Generate(context.Background(), UserRequest("", "second", nil, 100))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Errorf("second call error = %v, want ErrRateLimit", err)
	}

	_, err = mock.Generate(context.Background(), UserRequest("", "third", nil, 100))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("empty script error = %v, want ErrProviderUnavailable", err)
	}

	calls := mock.Calls()
	if len(calls) != 3 || calls[2].Messages[0].Content != "third" {
		t.Errorf("Calls = %+v", calls)
	}
}

func TestMockProviderFallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = func(req Request) (json.RawMessage, error) {
		return json.RawMessage(`{"question":"q","answer":4}`), nil
	}
	resp, err := mock.Generate(context.Background(), UserRequest("", "x", pairSchema, 100))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Model != "mock" {
		t.Errorf("Model = %q, want mock", resp.Model)
	}
}

func TestMockProviderValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"question":"q"}`)})
	_, err := mock.Generate(context.Background(), UserRequest("", "x", pairSchema, 100))
	var inval *ErrInvalidResponse
	if !errors.As(err, &inval) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestMockProviderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("CallCount = %d, want 0", mock.CallCount())
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		in      string
		aliases map[string]string
		want    string
	}{
		{"claude-haiku", anthropicAliases, "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", anthropicAliases, "claude-opus-4-1"},
		{"gemini-flash", geminiAliases, "gemini-2.5-flash"},
		{"gemini-2.0-flash", geminiAliases, "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, tt.aliases); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
	ctx := WithPurpose(context.Background(), "question-gen")
	if got := PurposeFrom(ctx); got != "question-gen" {
		t.Errorf("PurposeFrom = %q, want question-gen", got)
	}
}

func TestUnwrap(t *testing.T) {
	mock := NewMockProvider()
	p := WithTimeout(WithRetry(WithRateLimit(WithLogging(mock, nil, nil), RateLimitConfig{PerMinute: 60}), RetryConfig{}), 1e9)
	if Unwrap(p) != Provider(mock) {
		t.Errorf("Unwrap did not return the base provider")
	}
	if p.Name() != ProviderMock || p.ModelID() != "mock" {
		t.Errorf("Name/ModelID = %q/%q, want mock/mock", p.Name(), p.ModelID())
	}
}
