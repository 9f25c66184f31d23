package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// DocumentVersion is written into every exported document. Documents with
// a different major version are rejected on import.
const DocumentVersion = "v1.0.0"

// ErrUnsupportedVersion is returned for documents with an unknown major version.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// Document is the JSON interchange form of a whole library.
type Document struct {
	Version        string        `json:"version"`
	CurrentSession int           `json:"current_session"`
	Sets           []DocumentSet `json:"sets"`
}

// DocumentSet is the JSON form of a Set. Questions are kept raw so that
// each record can be validated and dropped on its own.
type DocumentSet struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	Active    *bool             `json:"active,omitempty"`
	Source    Source            `json:"source,omitempty"`
	Questions []json.RawMessage `json:"questions"`
}

// Library is the decoded content of a Document.
type Library struct {
	CurrentSession int
	Sets           []Set
}

// questionSchema constrains authored content only. Scheduling fields are
// repaired by NormalizeQuestion rather than rejected.
const questionSchema = `{
  "type": "object",
  "required": ["id", "question", "options", "correctAnswerIndex"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "question": {"type": "string", "minLength": 1},
    "options": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 4,
      "maxItems": 4
    },
    "correctAnswerIndex": {"type": "integer", "minimum": 0, "maximum": 3},
    "subject": {"type": "string"},
    "explanation": {"type": "string"}
  }
}`

var schedulingKeys = []string{
	"intervalIndex",
	"nextDueSession",
	"lastReviewedSession",
	"timesCorrect",
	"timesIncorrect",
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func questionValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(questionSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse question schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://question.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// EncodeDocument writes lib as an indented JSON document.
func EncodeDocument(w io.Writer, lib Library) error {
	doc := Document{
		Version:        DocumentVersion,
		CurrentSession: lib.CurrentSession,
		Sets:           make([]DocumentSet, 0, len(lib.Sets)),
	}
	if doc.CurrentSession < 1 {
		doc.CurrentSession = 1
	}
	for _, s := range lib.Sets {
		active := s.Active
		ds := DocumentSet{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: s.CreatedAt.UTC(),
			Active:    &active,
			Source:    s.Source,
			Questions: make([]json.RawMessage, 0, len(s.Questions)),
		}
		for _, q := range s.Questions {
			b, err := json.Marshal(ToRaw(q))
			if err != nil {
				return fmt.Errorf("marshal question %s: %w", q.ID, err)
			}
			ds.Questions = append(ds.Questions, b)
		}
		doc.Sets = append(doc.Sets, ds)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// DecodeDocument reads a JSON document. Invalid question records are
// dropped and counted in the report. Duplicate question IDs fail the
// whole document.
func DecodeDocument(r io.Reader) (Library, LoadReport, error) {
	var report LoadReport
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Library{}, report, fmt.Errorf("decode document: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return Library{}, report, err
	}
	validator, err := questionValidator()
	if err != nil {
		return Library{}, report, err
	}

	lib := Library{CurrentSession: doc.CurrentSession}
	if lib.CurrentSession < 1 {
		lib.CurrentSession = 1
	}
	for i, ds := range doc.Sets {
		set := Set{
			ID:        strings.TrimSpace(ds.ID),
			Name:      strings.TrimSpace(ds.Name),
			CreatedAt: ds.CreatedAt,
			Active:    ds.Active == nil || *ds.Active,
			Source:    ds.Source,
		}
		if set.ID == "" {
			set.ID = NewSetID()
		}
		if set.Name == "" {
			set.Name = fmt.Sprintf("Set %d", i+1)
		}
		if !validSource(set.Source) {
			set.Source = SourceJSON
		}
		for j, rawMsg := range ds.Questions {
			ref := fmt.Sprintf("sets[%d].questions[%d]", i, j)
			q, err := decodeQuestion(validator, rawMsg)
			if err != nil {
				report.Add(ref, err)
				continue
			}
			set.Questions = append(set.Questions, q)
		}
		lib.Sets = append(lib.Sets, set)
	}
	if err := CheckUniqueIDs(lib.Sets); err != nil {
		return Library{}, report, err
	}
	return lib, report, nil
}

func decodeQuestion(validator *jsonschema.Schema, msg json.RawMessage) (Question, error) {
	var generic any
	if err := json.Unmarshal(msg, &generic); err != nil {
		return Question{}, fmt.Errorf("invalid JSON: %w", err)
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return Question{}, errors.New("record is not an object")
	}
	if err := validator.Validate(obj); err != nil {
		return Question{}, fmt.Errorf("schema validation failed: %w", err)
	}
	for _, k := range schedulingKeys {
		if v, present := obj[k]; present && !isWholeNumber(v) {
			delete(obj, k)
		}
	}
	clean, err := json.Marshal(obj)
	if err != nil {
		return Question{}, err
	}
	var raw RawQuestion
	if err := json.Unmarshal(clean, &raw); err != nil {
		return Question{}, err
	}
	return NormalizeQuestion(raw)
}

func isWholeNumber(v any) bool {
	f, ok := v.(float64)
	return ok && f == float64(int64(f))
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != semver.Major(DocumentVersion) {
		return fmt.Errorf("%w: %s (want %s.x.y)", ErrUnsupportedVersion, v, semver.Major(DocumentVersion))
	}
	return nil
}

func validSource(s Source) bool {
	switch s {
	case SourceManual, SourceCSV, SourceMarkdown, SourceJSON, SourceAI:
		return true
	}
	return false
}
