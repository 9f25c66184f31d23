package questiongen

// Config controls the Generator.
type Config struct {
	// Validators run in order on every candidate; the first failure drops it.
	Validators []Validator

	// MaxTokens is the token budget for each chunk's response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// ChunkChars bounds the source text sent in one request.
	ChunkChars int

	// Concurrency bounds in-flight requests.
	Concurrency int
}

// DefaultConfig returns the standard validator chain and defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0.4,
		ChunkChars:  6000,
		Concurrency: 3,
	}
}
