package questiongen

import "testing"

func validCandidate() Candidate {
	return Candidate{
		Prompt:       "What is the powerhouse of the cell?",
		Options:      []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi body"},
		CorrectIndex: 1,
		Subject:      "Biology",
		Explanation:  "Mitochondria produce ATP.",
	}
}

func TestStructuralValidator(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Candidate)
		ok     bool
	}{
		{"valid", func(*Candidate) {}, true},
		{"empty prompt", func(c *Candidate) { c.Prompt = "   " }, false},
		{"three options", func(c *Candidate) { c.Options = c.Options[:3] }, false},
		{"blank option", func(c *Candidate) { c.Options[2] = " " }, false},
		{"duplicate option", func(c *Candidate) { c.Options[3] = "nucleus" }, false},
		{"index too high", func(c *Candidate) { c.CorrectIndex = 4 }, false},
		{"negative index", func(c *Candidate) { c.CorrectIndex = -1 }, false},
		{"empty explanation ok", func(c *Candidate) { c.Explanation = "" }, true},
	}
	v := &StructuralValidator{}
	for _, tt := range tests {
		c := validCandidate()
		c.Options = append([]string(nil), c.Options...)
		tt.mutate(&c)
		err := v.Validate(&c)
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
		if err != nil && err.Validator != "structural" {
			t.Errorf("%s: Validator = %q", tt.name, err.Validator)
		}
	}
}

func TestStructuralValidatorTrims(t *testing.T) {
	c := validCandidate()
	c.Prompt = "  padded?  "
	c.Options = []string{" a ", "b", "c", "d"}
	if err := (&StructuralValidator{}).Validate(&c); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Prompt != "padded?" || c.Options[0] != "a" {
		t.Errorf("not trimmed: %q %q", c.Prompt, c.Options[0])
	}
}

func TestDedupBatch(t *testing.T) {
	a := validCandidate()
	b := validCandidate()
	b.Prompt = "what is the POWERHOUSE of the cell"
	c := validCandidate()
	c.Prompt = "Name a plant pigment."
	d := validCandidate()
	d.Prompt = "Which organelle holds DNA?"

	kept, dropped := dedupBatch([]Candidate{a, b, c, d}, []string{"Which organelle  holds DNA"})
	if len(kept) != 2 || kept[0].Prompt != a.Prompt || kept[1].Prompt != c.Prompt {
		t.Errorf("kept = %+v", kept)
	}
	if len(dropped) != 2 || dropped[0].Validator != "dedup" {
		t.Errorf("dropped = %+v", dropped)
	}
}

func TestPromptKey(t *testing.T) {
	if got := promptKey("  What's   2+2? "); got != "whats 22" {
		t.Errorf("promptKey = %q, want %q", got, "whats 22")
	}
}
