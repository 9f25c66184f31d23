package deck

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is matched by errors.Is for every *DuplicateIDError.
var ErrDuplicateID = errors.New("duplicate id")

// DuplicateIDError reports a question (or set) ID that is not unique.
type DuplicateIDError struct {
	ID        string
	FirstSet  string
	SecondSet string
	IsSet     bool
}

func (e *DuplicateIDError) Error() string {
	if e.IsSet {
		return fmt.Sprintf("set id %q already exists", e.ID)
	}
	return fmt.Sprintf("question id %q appears in set %q and set %q", e.ID, e.FirstSet, e.SecondSet)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// RecordError describes one dropped record during load or import.
type RecordError struct {
	// Ref locates the record: a question ID, a "set[i].questions[j]" path,
	// or a "line N" reference for line-based formats.
	Ref string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// LoadReport summarizes records dropped while loading or importing.
type LoadReport struct {
	Dropped int
	Errors  []*RecordError
}

// Add records a dropped record.
func (r *LoadReport) Add(ref string, err error) {
	r.Dropped++
	r.Errors = append(r.Errors, &RecordError{Ref: ref, Err: err})
}

// Merge folds other into r.
func (r *LoadReport) Merge(other LoadReport) {
	r.Dropped += other.Dropped
	r.Errors = append(r.Errors, other.Errors...)
}
