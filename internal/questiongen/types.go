package questiongen

import "github.com/abhisek/smartstudy/internal/deck"

// Input is the source material for one generation run.
type Input struct {
	// Text is the study material, already extracted to plain text.
	Text string

	// Count is the total number of questions wanted across all chunks.
	Count int

	// Subject, when set, overrides the subject the model picks.
	Subject string

	// Existing holds prompts already in the library. Generated questions
	// that repeat one of them are dropped.
	Existing []string
}

// Candidate is one question as returned by the model, before it becomes a
// deck.Question.
type Candidate struct {
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Subject      string   `json:"subject"`
	Explanation  string   `json:"explanation"`
}

// Question converts a validated candidate into a question with a fresh ID
// and default scheduling.
func (c Candidate) Question() deck.Question {
	var opts [deck.OptionCount]string
	copy(opts[:], c.Options)
	q := deck.NewQuestion(deck.NewQuestionID(), c.Prompt, opts, c.CorrectIndex)
	q.Subject = c.Subject
	q.Explanation = c.Explanation
	return q
}

// batchOutput is the raw response shape.
type batchOutput struct {
	Questions []Candidate `json:"questions"`
}

// Result is the outcome of Generate.
type Result struct {
	Questions []deck.Question

	// Rejected lists candidates dropped by a validator.
	Rejected []*ValidationError

	// Chunks is the number of model requests made.
	Chunks int
}
