package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/smartstudy/internal/deck"
)

// AddQuestion appends q to the end of a set. The question must be valid
// and its ID unused across the whole library.
func (s *Store) AddQuestion(ctx context.Context, setID string, q deck.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		sets, err := s.loadSetRows(ctx, tx)
		if err != nil {
			return err
		}
		if deck.FindSet(sets, setID) < 0 {
			return fmt.Errorf("%w: %s", ErrSetNotFound, setID)
		}
		ids, err := s.questionIDs(ctx, tx)
		if err != nil {
			return err
		}
		if err := deck.CheckUniqueIDs([]deck.Set{
			{ID: "existing", Questions: ids},
			{ID: setID, Questions: []deck.Question{q}},
		}); err != nil {
			return err
		}

		b := s.builder()
		query, args := b.Select(entsql.Max("position")).
			From(b.Table(tableQuestions)).
			Where(entsql.EQ("set_id", setID)).
			Query()
		var last sql.NullInt64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
			return fmt.Errorf("query position in set %s: %w", setID, err)
		}
		position := 0
		if last.Valid {
			position = int(last.Int64) + 1
		}

		row, err := questionRow(q, setID, position)
		if err != nil {
			return err
		}
		query, args = b.Insert(tableQuestions).Columns(questionColumns...).Values(row...).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
		return nil
	})
}

// UpdateQuestion rewrites the authored content of an existing question.
// Scheduling state is left as it is.
func (s *Store) UpdateQuestion(ctx context.Context, q deck.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	options, err := json.Marshal(q.Options[:])
	if err != nil {
		return fmt.Errorf("encode options for %s: %w", q.ID, err)
	}
	query, args := s.builder().Update(tableQuestions).
		Set("prompt", q.Prompt).
		Set("options", string(options)).
		Set("correct_index", q.CorrectIndex).
		Set("subject", q.Subject).
		Set("explanation", q.Explanation).
		Where(entsql.EQ("id", q.ID)).
		Query()
	return s.execQuestion(ctx, "update", query, args, q.ID)
}

// DeleteQuestion removes a single question.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	query, args := s.builder().Delete(tableQuestions).Where(entsql.EQ("id", id)).Query()
	return s.execQuestion(ctx, "delete", query, args, id)
}

func (s *Store) execQuestion(ctx context.Context, op, query string, args []any, id string) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s question %s: %w", op, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return nil
}
