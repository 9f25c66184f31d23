package questiongen

import "github.com/abhisek/smartstudy/internal/llm"

// MaxPerChunk caps the questions requested from one chunk.
const MaxPerChunk = 25

// BatchSchema defines the JSON schema for a batch of multiple-choice
// questions.
var BatchSchema = &llm.Schema{
	Name:        "mcq-batch",
	Description: "A batch of multiple-choice study questions drawn from source material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": MaxPerChunk,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question prompt, answerable from the source text alone",
						},
						"options": map[string]any{
							"type":        "array",
							"minItems":    4,
							"maxItems":    4,
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer options, one of them correct",
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     3,
							"description": "Zero-based index of the correct option",
						},
						"subject": map[string]any{
							"type":        "string",
							"description": "A short topic label, e.g. \"Photosynthesis\"",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences on why the correct option is right",
						},
					},
					"required":             []any{"question", "options", "correct_index", "subject", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
