package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/smartstudy/internal/deck"
)

// insertChunk bounds rows per multi-row INSERT to stay under driver
// parameter limits.
const insertChunk = 50

var questionColumns = []string{
	"id", "set_id", "position", "prompt", "options", "correct_index",
	"subject", "explanation", "interval_index", "next_due_session",
	"last_reviewed_session", "times_correct", "times_incorrect",
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// LoadSets returns every set with its questions in display order. Question
// rows that fail normalization are dropped and counted in the report.
func (s *Store) LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error) {
	var report deck.LoadReport
	sets, err := s.loadSetRows(ctx, s.db)
	if err != nil {
		return nil, report, err
	}

	index := make(map[string]int, len(sets))
	for i, set := range sets {
		index[set.ID] = i
	}

	b := s.builder()
	query, args := b.Select(questionColumns...).
		From(b.Table(tableQuestions)).
		OrderBy("set_id", "position", "id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, report, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw          deck.RawQuestion
			setID        string
			position     int
			options      []byte
			correct      int
			interval     int
			nextDue      int
			lastReviewed sql.NullInt64
			timesOK      int
			timesBad     int
		)
		if err := rows.Scan(&raw.ID, &setID, &position, &raw.Question, &options, &correct,
			&raw.Subject, &raw.Explanation, &interval, &nextDue, &lastReviewed, &timesOK, &timesBad); err != nil {
			return nil, report, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &raw.Options); err != nil {
			report.Add(raw.ID, fmt.Errorf("decode options: %w", err))
			continue
		}
		raw.CorrectAnswerIndex = &correct
		raw.IntervalIndex = &interval
		raw.NextDueSession = &nextDue
		raw.TimesCorrect = &timesOK
		raw.TimesIncorrect = &timesBad
		if lastReviewed.Valid {
			v := int(lastReviewed.Int64)
			raw.LastReviewedSession = &v
		}

		si, ok := index[setID]
		if !ok {
			report.Add(raw.ID, fmt.Errorf("orphaned question: set %q does not exist", setID))
			continue
		}
		q, err := deck.NormalizeQuestion(raw)
		if err != nil {
			report.Add(raw.ID, err)
			continue
		}
		sets[si].Questions = append(sets[si].Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, report, fmt.Errorf("iterate questions: %w", err)
	}
	return sets, report, nil
}

func (s *Store) loadSetRows(ctx context.Context, q querier) ([]deck.Set, error) {
	b := s.builder()
	query, args := b.Select("id", "name", "created_at", "active", "source").
		From(b.Table(tableSets)).
		OrderBy("position", "id").
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var sets []deck.Set
	for rows.Next() {
		var (
			set    deck.Set
			source string
		)
		if err := rows.Scan(&set.ID, &set.Name, &set.CreatedAt, &set.Active, &source); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		set.Source = deck.Source(source)
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return sets, nil
}

// SaveSets replaces all stored sets and questions in one transaction.
func (s *Store) SaveSets(ctx context.Context, sets []deck.Set) error {
	if err := deck.CheckUniqueIDs(sets); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		b := s.builder()
		for _, table := range []string{tableQuestions, tableSets} {
			query, args := b.Delete(table).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for i, set := range sets {
			if err := s.insertSet(ctx, tx, set, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddSet appends a new set after checking that neither the set ID nor any
// of its question IDs already exist.
func (s *Store) AddSet(ctx context.Context, set deck.Set) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := s.loadSetRows(ctx, tx)
		if err != nil {
			return err
		}
		ids, err := s.questionIDs(ctx, tx)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.ID == set.ID {
				return &deck.DuplicateIDError{ID: set.ID, FirstSet: set.ID, SecondSet: set.ID, IsSet: true}
			}
		}
		current := append([]deck.Set{{ID: "existing", Questions: ids}}, set)
		if err := deck.CheckUniqueIDs(current); err != nil {
			return err
		}
		return s.insertSet(ctx, tx, set, len(existing))
	})
}

// questionIDs returns stub questions carrying only IDs, for duplicate checks.
func (s *Store) questionIDs(ctx context.Context, q querier) ([]deck.Question, error) {
	b := s.builder()
	query, args := b.Select("id").From(b.Table(tableQuestions)).Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question ids: %w", err)
	}
	defer rows.Close()

	var out []deck.Question
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		out = append(out, deck.Question{ID: id})
	}
	return out, rows.Err()
}

func (s *Store) insertSet(ctx context.Context, tx *sql.Tx, set deck.Set, position int) error {
	created := set.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	source := set.Source
	if source == "" {
		source = deck.SourceManual
	}
	b := s.builder()
	query, args := b.Insert(tableSets).
		Columns("id", "name", "created_at", "active", "source", "position").
		Values(set.ID, set.Name, created.UTC(), set.Active, string(source), position).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert set %s: %w", set.ID, err)
	}

	for start := 0; start < len(set.Questions); start += insertChunk {
		end := min(start+insertChunk, len(set.Questions))
		ins := b.Insert(tableQuestions).Columns(questionColumns...)
		for i := start; i < end; i++ {
			row, err := questionRow(set.Questions[i], set.ID, i)
			if err != nil {
				return err
			}
			ins.Values(row...)
		}
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert questions for set %s: %w", set.ID, err)
		}
	}
	return nil
}

// questionRow encodes q in questionColumns order.
func questionRow(q deck.Question, setID string, position int) ([]any, error) {
	options, err := json.Marshal(q.Options[:])
	if err != nil {
		return nil, fmt.Errorf("encode options for %s: %w", q.ID, err)
	}
	var lastReviewed any
	if q.LastReviewedSession != nil {
		lastReviewed = *q.LastReviewedSession
	}
	return []any{q.ID, setID, position, q.Prompt, string(options), q.CorrectIndex,
		q.Subject, q.Explanation, q.IntervalIndex, q.NextDueSession,
		lastReviewed, q.TimesCorrect, q.TimesIncorrect}, nil
}

// SetActive toggles whether a set takes part in study and exams.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	query, args := s.builder().Update(tableSets).
		Set("active", active).
		Where(entsql.EQ("id", id)).
		Query()
	return s.execOne(ctx, query, args, id)
}

// RenameSet changes a set's display name.
func (s *Store) RenameSet(ctx context.Context, id, name string) error {
	if name == "" {
		return fmt.Errorf("rename set %s: name is empty", id)
	}
	query, args := s.builder().Update(tableSets).
		Set("name", name).
		Where(entsql.EQ("id", id)).
		Query()
	return s.execOne(ctx, query, args, id)
}

// DeleteSet removes a set and its questions.
func (s *Store) DeleteSet(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		b := s.builder()
		query, args := b.Delete(tableQuestions).Where(entsql.EQ("set_id", id)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete questions of set %s: %w", id, err)
		}
		query, args = b.Delete(tableSets).Where(entsql.EQ("id", id)).Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete set %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrSetNotFound, id)
		}
		return nil
	})
}

func (s *Store) execOne(ctx context.Context, query string, args []any, id string) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update set %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSetNotFound, id)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
