package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RewardEvent records XP awarded for a claimed quest or unlocked achievement.
type RewardEvent struct {
	ent.Schema
}

func (RewardEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (RewardEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("kind").
			NotEmpty().
			Comment("quest or achievement"),
		field.String("ref").
			NotEmpty().
			Comment("Quest or achievement ID"),
		field.String("day").
			NotEmpty(),
		field.Int("xp").
			Default(0),
		field.String("reason").
			Default(""),
	}
}

func (RewardEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("kind", "ref"),
		index.Fields("day"),
	}
}
