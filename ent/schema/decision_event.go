package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DecisionEvent records one difficulty decision.
type DecisionEvent struct {
	ent.Schema
}

func (DecisionEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "decision_events"}}
}

func (DecisionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (DecisionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Default("").
			Comment("Quiz session or API caller session, empty when unknown"),
		field.String("question_id").
			Default(""),
		field.Enum("level").
			Values("easy", "medium", "hard").
			Comment("Level the question was asked at"),
		field.Bool("correct"),
		field.Int64("response_ms").
			Default(0),
		field.Float("accuracy").
			Comment("Session accuracy after this answer, in percent"),
		field.Enum("next_level").
			Values("easy", "medium", "hard"),
		field.String("source").
			Comment("What chose next_level: heuristic, classifier or policy"),
		field.Float("classifier_score").
			Optional().
			Nillable(),
		field.String("policy_action").
			Default("").
			Comment("EASIER, SAME or HARDER when the policy was consulted"),
		field.Bool("heuristic_only").
			Default(false),
	}
}

func (DecisionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
