package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is a multiple-choice question together with its review schedule.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Globally unique across all sets"),
		field.String("set_id").
			NotEmpty(),
		field.Int("position").
			Default(0).
			Comment("Order within the set"),
		field.Text("prompt"),
		field.JSON("options", []string{}).
			Comment("Exactly four option texts"),
		field.Int("correct_index"),
		field.String("subject").
			Default(""),
		field.Text("explanation").
			Default(""),
		field.Int("interval_index").
			Default(0).
			Comment("Rung on the review ladder"),
		field.Int("next_due_session").
			Default(1),
		field.Int("last_reviewed_session").
			Optional().
			Nillable().
			Comment("Null until first answered"),
		field.Int("times_correct").
			Default(0),
		field.Int("times_incorrect").
			Default(0),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("set_id", "position"),
		index.Fields("next_due_session"),
	}
}
