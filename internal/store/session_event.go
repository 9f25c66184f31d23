package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// appendEvent inserts one event row stamped with the next global sequence.
func (s *Store) appendEvent(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	allCols := append([]string{"sequence", "timestamp"}, cols...)
	allVals := append([]any{seqNum, time.Now().UTC()}, vals...)
	query, args := s.builder().Insert(table).Columns(allCols...).Values(allVals...).Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

// eventSelector builds a newest-first select over an event table.
func (s *Store) eventSelector(table string, opts QueryOpts, cols ...string) *entsql.Selector {
	b := s.builder()
	sel := b.Select(cols...).From(b.Table(table)).OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (s *Store) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return s.appendEvent(ctx, tableSessionEvent,
		[]string{"run_id", "session_number", "score", "total", "duration_secs", "day"},
		[]any{data.RunID, data.SessionNumber, data.Score, data.Total, data.DurationSecs, data.Day},
	)
}

func (s *Store) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	var selected any
	if data.Selected != nil {
		selected = *data.Selected
	}
	return s.appendEvent(ctx, tableAnswerEvent,
		[]string{"run_id", "question_id", "subject", "selected", "correct", "timed_out", "interval_index", "next_due_session"},
		[]any{data.RunID, data.QuestionID, data.Subject, selected, data.Correct, data.TimedOut, data.IntervalIndex, data.NextDueSession},
	)
}

func (s *Store) RecentSessions(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	query, args := s.eventSelector(tableSessionEvent, opts,
		"sequence", "timestamp", "run_id", "session_number", "score", "total", "duration_secs", "day",
	).Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var records []SessionEventRecord
	for rows.Next() {
		var r SessionEventRecord
		if err := rows.Scan(&r.Sequence, &r.Timestamp, &r.RunID, &r.SessionNumber,
			&r.Score, &r.Total, &r.DurationSecs, &r.Day); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AnswerAccuracy returns the fraction of recorded answers for a question
// that were correct, and the number of answers.
func (s *Store) AnswerAccuracy(ctx context.Context, questionID string) (float64, int, error) {
	b := s.builder()
	query, args := b.Select("correct").
		From(b.Table(tableAnswerEvent)).
		Where(entsql.EQ("question_id", questionID)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("query answer accuracy: %w", err)
	}
	defer rows.Close()

	total, correct := 0, 0
	for rows.Next() {
		var ok bool
		if err := rows.Scan(&ok); err != nil {
			return 0, 0, fmt.Errorf("scan answer: %w", err)
		}
		total++
		if ok {
			correct++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(total), total, nil
}
