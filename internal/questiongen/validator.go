package questiongen

import "fmt"

// Validator checks a generated candidate.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if c passes.
	Validate(c *Candidate) *ValidationError
}

// ValidationError describes why a candidate was dropped.
type ValidationError struct {
	Validator string
	Prompt    string
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Prompt == "" {
		return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
	}
	return fmt.Sprintf("validator %q: %s (question %q)", e.Validator, e.Message, truncate(e.Prompt, 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
