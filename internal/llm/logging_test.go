package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/smartstudy/internal/store"
)

type fakeLLMRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeLLMRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func (f *fakeLLMRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEventRecord, error) {
	return nil, nil
}

func (f *fakeLLMRepo) GetLLMEvent(context.Context, int) (*store.LLMEventRecord, error) {
	return nil, nil
}

func TestLoggingRecordsSuccess(t *testing.T) {
	repo := &fakeLLMRepo{}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: usage(20, 8)})
	p := WithLogging(mock, repo, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	ctx := WithPurpose(context.Background(), "question-gen")
	if _, err := p.Generate(ctx, UserRequest("system text", "user text", nil, 10)); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != ProviderMock || ev.Model != "mock" {
		t.Errorf("Provider/Model = %q/%q, want mock/mock", ev.Provider, ev.Model)
	}
	if ev.Purpose != "question-gen" {
		t.Errorf("Purpose = %q, want question-gen", ev.Purpose)
	}
	if !ev.Success || ev.ErrorMessage != "" {
		t.Errorf("Success = %v, ErrorMessage = %q", ev.Success, ev.ErrorMessage)
	}
	if ev.InputTokens != 20 || ev.OutputTokens != 8 {
		t.Errorf("tokens = %d/%d, want 20/8", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "system text") || !strings.Contains(ev.RequestBody, "user text") {
		t.Errorf("RequestBody = %q", ev.RequestBody)
	}
	if ev.ResponseBody != `{"ok":true}` {
		t.Errorf("ResponseBody = %q", ev.ResponseBody)
	}
}

func TestLoggingRecordsFailure(t *testing.T) {
	repo := &fakeLLMRepo{}
	var buf bytes.Buffer
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("boom")}})
	p := WithLogging(mock, repo, slog.New(slog.NewTextHandler(&buf, nil)))

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success {
		t.Fatalf("events = %+v, want one failure", repo.events)
	}
	if !strings.Contains(repo.events[0].ErrorMessage, "boom") {
		t.Errorf("ErrorMessage = %q", repo.events[0].ErrorMessage)
	}
	if !strings.Contains(buf.String(), "llm request failed") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestLoggingRepoErrorIsNotFatal(t *testing.T) {
	repo := &fakeLLMRepo{err: errors.New("disk full")}
	var buf bytes.Buffer
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, repo, slog.New(slog.NewTextHandler(&buf, nil)))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("log output = %q, want repo error", buf.String())
	}
}

func TestLoggingWithStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{DSN: t.TempDir() + "/llm.db"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`), Usage: usage(3, 4)})
	p := WithLogging(mock, st, nil)
	if _, err := p.Generate(WithPurpose(ctx, "test"), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	events, err := st.QueryLLMEvents(ctx, store.QueryOpts{})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(events) != 1 || events[0].Purpose != "test" || events[0].OutputTokens != 4 {
		t.Errorf("events = %+v", events)
	}
}
