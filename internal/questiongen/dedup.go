package questiongen

import (
	"strings"
	"unicode"
)

// dedupName is reported as the validator for dropped repeats.
const dedupName = "dedup"

// promptKey normalizes a prompt for duplicate detection: lower case,
// punctuation dropped, whitespace collapsed.
func promptKey(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

// dedupBatch drops candidates whose prompt repeats an existing prompt or
// an earlier candidate, keeping the first occurrence.
func dedupBatch(cands []Candidate, existing []string) (kept []Candidate, dropped []*ValidationError) {
	seen := make(map[string]bool, len(existing)+len(cands))
	for _, p := range existing {
		seen[promptKey(p)] = true
	}
	for _, c := range cands {
		key := promptKey(c.Prompt)
		if seen[key] {
			dropped = append(dropped, &ValidationError{
				Validator: dedupName,
				Prompt:    c.Prompt,
				Message:   "duplicate question",
			})
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}
	return kept, dropped
}
