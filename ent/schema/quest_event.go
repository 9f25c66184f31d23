package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuestEvent records progress toward daily quests.
type QuestEvent struct {
	ent.Schema
}

func (QuestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("day").
			NotEmpty().
			Comment("Local calendar day, YYYY-MM-DD"),
		field.String("kind").
			NotEmpty().
			Comment("session or correct"),
		field.String("subject").
			Default(""),
	}
}

func (QuestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("day"),
	}
}
