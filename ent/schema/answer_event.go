package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnswerEvent records a single scored answer within a study run.
type AnswerEvent struct {
	ent.Schema
}

func (AnswerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AnswerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("run_id").
			NotEmpty().
			Comment("Links to SessionEvent"),
		field.String("question_id").
			NotEmpty(),
		field.String("subject").
			Default(""),
		field.Int("selected").
			Optional().
			Nillable().
			Comment("Chosen option, null on timeout"),
		field.Bool("correct"),
		field.Bool("timed_out").
			Default(false),
		field.Int("interval_index").
			Comment("Ladder rung after the answer"),
		field.Int("next_due_session"),
	}
}

func (AnswerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("question_id"),
		index.Fields("correct"),
	}
}
