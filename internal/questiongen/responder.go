package questiongen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/smartstudy/internal/llm"
)

// SampleResponder answers generation requests offline, for the mock
// provider. Each question asks which statement appears in the source text,
// using that chunk's sentences as options.
func SampleResponder(req llm.Request) (json.RawMessage, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("sample responder: request has no messages")
	}
	msg := req.Messages[len(req.Messages)-1].Content

	count := 1
	subject := "General"
	for _, line := range strings.Split(msg, "\n") {
		if v, ok := strings.CutPrefix(line, "Questions: "); ok {
			fmt.Sscanf(v, "%d", &count)
		}
		if v, ok := strings.CutPrefix(line, "Subject: "); ok {
			subject = strings.TrimSpace(v)
		}
	}
	source := msg
	if _, after, ok := strings.Cut(msg, "Source text:\n"); ok {
		source = after
	}
	sentences := splitSentences(source)

	out := batchOutput{}
	for i := range min(max(count, 1), MaxPerChunk) {
		correct := i % 4
		c := Candidate{
			Prompt:       fmt.Sprintf("Sample question %d: which statement is from the source text?", i+1),
			Options:      make([]string, 4),
			CorrectIndex: correct,
			Subject:      subject,
			Explanation:  "The correct option is quoted from the material.",
		}
		for j := range c.Options {
			c.Options[j] = fmt.Sprintf("Distractor %d-%d", i+1, j+1)
		}
		if len(sentences) > 0 {
			c.Options[correct] = sentences[i%len(sentences)]
		} else {
			c.Options[correct] = fmt.Sprintf("Statement %d", i+1)
		}
		out.Questions = append(out.Questions, c)
	}
	return json.Marshal(out)
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '\n' || r == '?' || r == '!' }) {
		if s = strings.TrimSpace(s); len(s) >= 3 && len(s) <= maxOptionLen {
			out = append(out, s)
		}
	}
	return out
}
