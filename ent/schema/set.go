package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Set is a named, independently activatable group of questions.
type Set struct {
	ent.Schema
}

func (Set) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("UUID of the set"),
		field.String("name").
			NotEmpty(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Bool("active").
			Default(true).
			Comment("Inactive sets are excluded from study and exams"),
		field.String("source").
			Default("manual").
			Comment("manual, csv, markdown, json or ai"),
		field.Int("position").
			Default(0).
			Comment("Display order"),
	}
}

func (Set) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("position"),
	}
}
