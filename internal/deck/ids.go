package deck

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// NewQuestionID returns a short random question ID.
func NewQuestionID() string {
	return "q-" + shortuuid.New()
}

// NewSetID returns a random set ID.
func NewSetID() string {
	return uuid.New().String()
}
