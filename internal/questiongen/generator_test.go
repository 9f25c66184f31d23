package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/llm"
	"github.com/abhisek/smartstudy/internal/logging"
)

func batchJSON(t *testing.T, cands ...Candidate) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(batchOutput{Questions: cands})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func candidate(prompt string, correct int) Candidate {
	return Candidate{
		Prompt:       prompt,
		Options:      []string{"A", "B", "C", "D"},
		CorrectIndex: correct,
		Subject:      "Model subject",
		Explanation:  "Because.",
	}
}

func TestGenerateSingleChunk(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(t,
		candidate("Q one?", 0),
		candidate("Q two?", 3),
		candidate("Q one", 1),
	)})
	g := New(mock, DefaultConfig(), logging.Discard())

	res, err := g.Generate(context.Background(), Input{Text: "Some study text.", Count: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("Questions = %d, want 2 after dedup", len(res.Questions))
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Validator != "dedup" {
		t.Errorf("Rejected = %+v", res.Rejected)
	}
	q := res.Questions[1]
	if q.CorrectIndex != 3 || q.Subject != "Model subject" || q.NextDueSession != 1 || q.IntervalIndex != 0 {
		t.Errorf("question = %+v", q)
	}
	if !strings.HasPrefix(q.ID, "q-") {
		t.Errorf("ID = %q, want q- prefix", q.ID)
	}

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Schema != BatchSchema {
		t.Fatalf("calls = %+v", calls)
	}
	if !strings.Contains(calls[0].Messages[0].Content, "Questions: 3") {
		t.Errorf("prompt = %q", calls[0].Messages[0].Content)
	}
}

func TestGenerateSubjectOverrideAndTrim(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(t,
		candidate("One?", 0), candidate("Two?", 1), candidate("Three?", 2),
	)})
	g := New(mock, DefaultConfig(), logging.Discard())

	res, err := g.Generate(context.Background(), Input{Text: "text", Count: 2, Subject: "History"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("Questions = %d, want 2", len(res.Questions))
	}
	for _, q := range res.Questions {
		if q.Subject != "History" {
			t.Errorf("Subject = %q, want History", q.Subject)
		}
	}
}

func TestGenerateRejectsInvalid(t *testing.T) {
	bad := candidate("Bad?", 0)
	bad.Options = []string{"A", "A", "C", "D"}
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(t, bad, candidate("Good?", 2))})
	g := New(mock, DefaultConfig(), logging.Discard())

	res, err := g.Generate(context.Background(), Input{Text: "text", Count: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Questions) != 1 || len(res.Rejected) != 1 || res.Rejected[0].Validator != "structural" {
		t.Errorf("Questions = %d, Rejected = %+v", len(res.Questions), res.Rejected)
	}
}

func TestGenerateAllRejected(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(t, candidate("Dup?", 0))})
	g := New(mock, DefaultConfig(), logging.Discard())

	res, err := g.Generate(context.Background(), Input{Text: "text", Count: 1, Existing: []string{"dup"}})
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("error = %v, want ErrNoQuestions", err)
	}
	if res == nil || len(res.Rejected) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestGenerateChunksConcurrently(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.Fallback = SampleResponder
	cfg := DefaultConfig()
	cfg.ChunkChars = 40

	text := "Plants need light to grow well.\n\nWater moves up through the xylem.\n\nLeaves contain chlorophyll pigments."
	res, err := New(mock, cfg, logging.Discard()).Generate(context.Background(), Input{Text: text, Count: 6})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Chunks != 3 || mock.CallCount() != 3 {
		t.Errorf("Chunks = %d, calls = %d, want 3", res.Chunks, mock.CallCount())
	}
	// Each chunk's sample questions share prompts, so later chunks dedup.
	if len(res.Questions) != 2 {
		t.Errorf("Questions = %d, want 2", len(res.Questions))
	}
}

func TestGenerateProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	g := New(mock, DefaultConfig(), logging.Discard())

	_, err := g.Generate(context.Background(), Input{Text: "text", Count: 1})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestGenerateBadInput(t *testing.T) {
	g := New(llm.NewMockProvider(), DefaultConfig(), logging.Discard())
	if _, err := g.Generate(context.Background(), Input{Text: "  ", Count: 1}); !errors.Is(err, ErrNoText) {
		t.Errorf("blank text error = %v, want ErrNoText", err)
	}
	if _, err := g.Generate(context.Background(), Input{Text: "x", Count: 0}); err == nil {
		t.Error("zero count should fail")
	}
}

func TestSampleResponder(t *testing.T) {
	req := llm.UserRequest(systemPrompt, buildUserMessage("Rome is in Italy. Paris is in France.", 3, "Geo", nil), BatchSchema, 100)
	raw, err := SampleResponder(req)
	if err != nil {
		t.Fatalf("SampleResponder: %v", err)
	}
	var out batchOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(out.Questions))
	}
	v := &StructuralValidator{}
	for _, c := range out.Questions {
		if c.Subject != "Geo" {
			t.Errorf("Subject = %q, want Geo", c.Subject)
		}
		if verr := v.Validate(&c); verr != nil {
			t.Errorf("sample candidate invalid: %v", verr)
		}
	}
	if out.Questions[0].Options[0] != "Rome is in Italy" {
		t.Errorf("correct option = %q", out.Questions[0].Options[0])
	}
}

func TestNewSet(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	qs := []deck.Question{deck.NewQuestion("q1", "p", [4]string{"a", "b", "c", "d"}, 0)}
	set := NewSet("notes.txt", qs, now)
	if set.Name != "AI-Generated - notes.txt" || set.Source != deck.SourceAI || !set.Active {
		t.Errorf("set = %+v", set)
	}
	if len(set.Questions) != 1 || !set.CreatedAt.Equal(now) {
		t.Errorf("set = %+v", set)
	}
}
