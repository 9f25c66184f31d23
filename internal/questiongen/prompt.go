package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice questions that help a student review study material.

Rules:
- Every question must be answerable from the provided source text alone.
- Each question has exactly 4 options and exactly one correct option.
- Distractors should be plausible and reflect common misunderstandings, not jokes or obviously wrong values.
- Do not use "all of the above" or "none of the above".
- Vary the position of the correct option.
- Keep prompts under 300 characters and explanations to one or two sentences.
- Do not repeat any question from the "already in the library" list.`

// maxExisting bounds how many library prompts are listed for dedup.
const maxExisting = 20

// buildUserMessage renders the request for one chunk.
func buildUserMessage(chunk string, count int, subject string, existing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Questions: %d\n", count)
	if subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", subject)
	}

	b.WriteString("\nAlready in the library:\n")
	b.WriteString(numbered(existing, maxExisting))

	b.WriteString("\n\nSource text:\n")
	b.WriteString(chunk)
	return b.String()
}

// numbered formats the last max items as a numbered list, or "None".
func numbered(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, s := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
