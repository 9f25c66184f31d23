// Package transfer reads and writes question sets in CSV and Markdown.
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/smartstudy/internal/deck"
)

// CSVHeader is the column layout for CSV import and export.
var CSVHeader = []string{
	"question", "option1", "option2", "option3", "option4",
	"correctAnswerIndex", "subject", "explanation",
}

// minCSVFields is question, four options and the correct index.
const minCSVFields = 6

var headerKeywords = []string{"question", "option", "correctanswerindex", "subject", "explanation"}

// ReadCSV parses one question per row. A header row is detected by keyword
// and skipped. Malformed rows are skipped and reported by line number;
// only an unreadable stream is an error.
func ReadCSV(r io.Reader) ([]deck.Question, deck.LoadReport, error) {
	var (
		report deck.LoadReport
		out    []deck.Question
	)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Add(fmt.Sprintf("line %d", perr.Line), err)
				continue
			}
			return nil, report, fmt.Errorf("read csv: %w", err)
		}
		if blankRecord(rec) {
			continue
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}

		line, _ := cr.FieldPos(0)
		q, err := csvQuestion(rec)
		if err != nil {
			report.Add(fmt.Sprintf("line %d", line), err)
			continue
		}
		out = append(out, q)
	}
	return out, report, nil
}

func csvQuestion(rec []string) (deck.Question, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	if len(rec) < minCSVFields {
		return deck.Question{}, fmt.Errorf("expected at least %d values, got %d", minCSVFields, len(rec))
	}
	idx, err := strconv.Atoi(rec[5])
	if err != nil || idx < 0 || idx >= deck.OptionCount {
		return deck.Question{}, fmt.Errorf("invalid correctAnswerIndex %q", rec[5])
	}
	var opts [deck.OptionCount]string
	copy(opts[:], rec[1:5])
	q := deck.NewQuestion(deck.NewQuestionID(), rec[0], opts, idx)
	if len(rec) > 6 {
		q.Subject = rec[6]
	}
	if len(rec) > 7 {
		q.Explanation = rec[7]
	}
	if err := q.Validate(); err != nil {
		return deck.Question{}, errors.New("missing question or options")
	}
	return q, nil
}

func isHeader(rec []string) bool {
	joined := strings.ToLower(strings.Join(rec, ","))
	for _, kw := range headerKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes questions with a header row. Scheduling state is not
// exported; use the JSON document for a full backup.
func WriteCSV(w io.Writer, questions []deck.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, q := range questions {
		row := []string{q.Prompt}
		row = append(row, q.Options[:]...)
		row = append(row, strconv.Itoa(q.CorrectIndex), q.Subject, q.Explanation)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write question %s: %w", q.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
