package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/smartstudy/internal/deck"
)

// Length limits for generated text.
const (
	maxPromptLen      = 500
	maxOptionLen      = 200
	maxExplanationLen = 1000
)

// StructuralValidator checks that a candidate is a well-formed
// four-option question with one correct answer.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Candidate) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Prompt: c.Prompt, Message: fmt.Sprintf(format, args...)}
	}

	c.Prompt = strings.TrimSpace(c.Prompt)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Explanation = strings.TrimSpace(c.Explanation)

	if c.Prompt == "" {
		return fail("question is empty")
	}
	if len(c.Prompt) > maxPromptLen {
		return fail("question exceeds %d characters", maxPromptLen)
	}
	if len(c.Options) != deck.OptionCount {
		return fail("expected %d options, got %d", deck.OptionCount, len(c.Options))
	}
	seen := make(map[string]bool, len(c.Options))
	for i := range c.Options {
		c.Options[i] = strings.TrimSpace(c.Options[i])
		opt := c.Options[i]
		if opt == "" {
			return fail("option %d is empty", i+1)
		}
		if len(opt) > maxOptionLen {
			return fail("option %d exceeds %d characters", i+1, maxOptionLen)
		}
		key := strings.ToLower(opt)
		if seen[key] {
			return fail("option %q appears twice", opt)
		}
		seen[key] = true
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= deck.OptionCount {
		return fail("correct_index %d out of range 0-%d", c.CorrectIndex, deck.OptionCount-1)
	}
	if len(c.Explanation) > maxExplanationLen {
		return fail("explanation exceeds %d characters", maxExplanationLen)
	}
	return nil
}
