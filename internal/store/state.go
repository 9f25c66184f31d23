package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Study state keys.
const (
	keyCurrentSession = "current_session"
	keyStats          = "stats"
)

// LoadCurrentSession returns the persisted session number, 1 if unset.
func (s *Store) LoadCurrentSession(ctx context.Context) (int, error) {
	var n int
	found, err := s.getState(ctx, keyCurrentSession, &n)
	if err != nil {
		return 1, err
	}
	if !found || n < 1 {
		return 1, nil
	}
	return n, nil
}

// SaveCurrentSession persists the session number.
func (s *Store) SaveCurrentSession(ctx context.Context, session int) error {
	if session < 1 {
		return fmt.Errorf("session number must be >= 1, got %d", session)
	}
	return s.putState(ctx, keyCurrentSession, session)
}

// LoadStats returns the gamification stats, zero-valued if unset.
func (s *Store) LoadStats(ctx context.Context) (StatsData, error) {
	var st StatsData
	if _, err := s.getState(ctx, keyStats, &st); err != nil {
		return StatsData{}, err
	}
	return st, nil
}

// SaveStats persists the gamification stats.
func (s *Store) SaveStats(ctx context.Context, stats StatsData) error {
	return s.putState(ctx, keyStats, stats)
}

// ResetProgress returns every question to its default schedule, resets the
// session number and stats, and clears study history. Sets, questions and
// LLM request logs are kept.
func (s *Store) ResetProgress(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		b := s.builder()
		query, args := b.Update(tableQuestions).
			Set("interval_index", 0).
			Set("next_due_session", 1).
			SetNull("last_reviewed_session").
			Set("times_correct", 0).
			Set("times_incorrect", 0).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset schedules: %w", err)
		}
		for _, table := range []string{tableStudyState, tableSessionEvent, tableAnswerEvent, tableQuestEvent, tableRewardEvent} {
			query, args := b.Delete(table).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) getState(ctx context.Context, key string, dst any) (bool, error) {
	b := s.builder()
	query, args := b.Select("value").
		From(b.Table(tableStudyState)).
		Where(entsql.EQ("id", key)).
		Query()
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load state %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putState(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	query, args := s.builder().Insert(tableStudyState).
		Columns("id", "value", "updated_at").
		Values(key, string(raw), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}
