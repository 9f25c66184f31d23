package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// StudyState is a small key/value table for singleton state such as the
// current session number and gamification stats.
type StudyState struct {
	ent.Schema
}

func (StudyState) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Comment("State key"),
		field.JSON("value", json.RawMessage{}),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
