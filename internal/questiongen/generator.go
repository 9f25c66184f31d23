// Package questiongen turns study material into multiple-choice questions
// using an LLM provider.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/llm"
)

// Purpose tags generation requests in the LLM request log.
const Purpose = "question-gen"

// ErrNoText is returned when the input has no usable text.
var ErrNoText = errors.New("source text is empty")

// ErrNoQuestions is returned when every candidate was rejected.
var ErrNoQuestions = errors.New("no valid questions were generated")

// Generator produces question batches from source text.
type Generator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Generator{provider: provider, config: cfg, logger: logger}
}

// Generate splits in.Text into chunks, requests a batch per chunk
// concurrently, then validates and dedups the merged result. Any failed
// request fails the whole run.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrNoText
	}
	if in.Count < 1 {
		return nil, fmt.Errorf("question count must be >= 1, got %d", in.Count)
	}
	ctx = llm.WithPurpose(ctx, Purpose)

	chunks := splitChunks(in.Text, g.config.ChunkChars)
	shares := distribute(in.Count, len(chunks), MaxPerChunk)
	batches := make([][]Candidate, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Concurrency)
	requests := 0
	for i, chunk := range chunks {
		if shares[i] == 0 {
			continue
		}
		requests++
		eg.Go(func() error {
			batch, err := g.generateChunk(egCtx, chunk, shares[i], in)
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			batches[i] = batch
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Chunks: requests}
	var valid []Candidate
	for _, batch := range batches {
		for _, c := range batch {
			if verr := g.validate(&c); verr != nil {
				res.Rejected = append(res.Rejected, verr)
				continue
			}
			if in.Subject != "" {
				c.Subject = in.Subject
			}
			valid = append(valid, c)
		}
	}
	kept, dropped := dedupBatch(valid, in.Existing)
	res.Rejected = append(res.Rejected, dropped...)
	if len(kept) > in.Count {
		kept = kept[:in.Count]
	}
	for _, c := range kept {
		res.Questions = append(res.Questions, c.Question())
	}

	g.logger.Info("questions generated",
		slog.Int("requested", in.Count),
		slog.Int("generated", len(res.Questions)),
		slog.Int("rejected", len(res.Rejected)),
		slog.Int("chunks", requests),
	)
	if len(res.Questions) == 0 {
		return res, ErrNoQuestions
	}
	return res, nil
}

func (g *Generator) generateChunk(ctx context.Context, chunk string, count int, in Input) ([]Candidate, error) {
	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(chunk, count, in.Subject, in.Existing)}},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}
	var out batchOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}
	return out.Questions, nil
}

func (g *Generator) validate(c *Candidate) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(c); verr != nil {
			return verr
		}
	}
	return nil
}

// NewSet wraps generated questions in an active AI set named after the
// source file.
func NewSet(fileName string, questions []deck.Question, now time.Time) deck.Set {
	set := deck.NewSet(deck.AIGeneratedPrefix+fileName, deck.SourceAI, now)
	set.Questions = questions
	return set
}
