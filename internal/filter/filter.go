// Package filter narrows question pools with CEL expressions such as
//
//	subject == "Biology" && interval < 2
package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/abhisek/smartstudy/internal/deck"
)

// Variables lists the names available to expressions.
var Variables = []string{
	"id", "prompt", "subject", "set", "interval", "mastery",
	"next_due", "last_reviewed", "correct", "incorrect",
}

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func celEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("id", cel.StringType),
			cel.Variable("prompt", cel.StringType),
			cel.Variable("subject", cel.StringType),
			cel.Variable("set", cel.StringType),
			cel.Variable("interval", cel.IntType),
			cel.Variable("mastery", cel.StringType),
			cel.Variable("next_due", cel.IntType),
			cel.Variable("last_reviewed", cel.IntType),
			cel.Variable("correct", cel.IntType),
			cel.Variable("incorrect", cel.IntType),
		)
	})
	return env, envErr
}

// Filter is a compiled boolean expression over one question.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression must return a bool.
// An empty expression yields a nil Filter, which matches everything.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	e, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("filter env: %w", err)
	}
	ast, iss := e.Compile(expr)
	if err := iss.Err(); err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	if !ast.OutputType().IsExactType(types.BoolType) {
		return nil, fmt.Errorf("filter must return bool, got %s", ast.OutputType())
	}
	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against q from the named set. A nil Filter
// matches every question.
func (f *Filter) Match(q deck.Question, setName string) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(activation(q, setName))
	if err != nil {
		return false, fmt.Errorf("evaluate filter on %s: %w", q.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("filter did not return a bool")
	}
	return b, nil
}

// Apply returns copies of sets holding only the matching questions. Sets
// keep their position and active flag even when emptied.
func (f *Filter) Apply(sets []deck.Set) ([]deck.Set, error) {
	out := deck.Clone(sets)
	if f == nil {
		return out, nil
	}
	for i := range out {
		kept := out[i].Questions[:0]
		for _, q := range out[i].Questions {
			ok, err := f.Match(q, out[i].Name)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, q)
			}
		}
		out[i].Questions = kept
	}
	return out, nil
}

func activation(q deck.Question, setName string) map[string]any {
	lastReviewed := 0
	if q.LastReviewedSession != nil {
		lastReviewed = *q.LastReviewedSession
	}
	return map[string]any{
		"id":            q.ID,
		"prompt":        q.Prompt,
		"subject":       q.Subject,
		"set":           setName,
		"interval":      int64(q.IntervalIndex),
		"mastery":       deck.MasteryLabel(q.IntervalIndex),
		"next_due":      int64(q.NextDueSession),
		"last_reviewed": int64(lastReviewed),
		"correct":       int64(q.TimesCorrect),
		"incorrect":     int64(q.TimesIncorrect),
	}
}
