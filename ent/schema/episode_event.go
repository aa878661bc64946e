package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// EpisodeEvent records a finished training or evaluation episode.
type EpisodeEvent struct {
	ent.Schema
}

func (EpisodeEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "episode_events"}}
}

func (EpisodeEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (EpisodeEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("run_id"),
		field.Enum("kind").
			Values("train", "evaluate"),
		field.Int("episode"),
		field.Int("steps"),
		field.Float("total_reward"),
		field.Text("history").
			Default("[]").
			Comment("JSON list of (level, reward) pairs"),
	}
}

func (EpisodeEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
	}
}
