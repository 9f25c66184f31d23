package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (s *Store) AppendQuestEvent(ctx context.Context, data QuestEventData) error {
	return s.appendEvent(ctx, tableQuestEvent,
		[]string{"day", "kind", "subject"},
		[]any{data.Day, data.Kind, data.Subject},
	)
}

func (s *Store) AppendRewardEvent(ctx context.Context, data RewardEventData) error {
	return s.appendEvent(ctx, tableRewardEvent,
		[]string{"kind", "ref", "day", "xp", "reason"},
		[]any{data.Kind, data.Ref, data.Day, data.XP, data.Reason},
	)
}

func (s *Store) QuestEvents(ctx context.Context, day string) ([]QuestEventData, error) {
	b := s.builder()
	query, args := b.Select("day", "kind", "subject").
		From(b.Table(tableQuestEvent)).
		Where(entsql.EQ("day", day)).
		OrderBy("sequence").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quest events: %w", err)
	}
	defer rows.Close()

	var out []QuestEventData
	for rows.Next() {
		var e QuestEventData
		if err := rows.Scan(&e.Day, &e.Kind, &e.Subject); err != nil {
			return nil, fmt.Errorf("scan quest event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) RewardEvents(ctx context.Context, kind string) ([]RewardEventRecord, error) {
	b := s.builder()
	sel := b.Select("sequence", "timestamp", "kind", "ref", "day", "xp", "reason").
		From(b.Table(tableRewardEvent)).
		OrderBy("sequence")
	if kind != "" {
		sel.Where(entsql.EQ("kind", kind))
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reward events: %w", err)
	}
	defer rows.Close()

	var out []RewardEventRecord
	for rows.Next() {
		var r RewardEventRecord
		if err := rows.Scan(&r.Sequence, &r.Timestamp, &r.Kind, &r.Ref, &r.Day, &r.XP, &r.Reason); err != nil {
			return nil, fmt.Errorf("scan reward event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
