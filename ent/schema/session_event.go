package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records a completed study run.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("run_id").
			NotEmpty().
			Comment("UUID grouping answer events of one run"),
		field.Int("session_number").
			Comment("Global session number the run belonged to"),
		field.Int("score").
			Default(0),
		field.Int("total").
			Default(0),
		field.Int("duration_secs").
			Default(0),
		field.String("day").
			NotEmpty().
			Comment("Local calendar day, YYYY-MM-DD"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("day"),
	}
}
