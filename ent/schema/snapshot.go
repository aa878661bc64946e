package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// Snapshot captures the quiz state needed to resume a session.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "snapshots"}}
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Comment("Event sequence number at the time of snapshot"),
		field.Int64("created_at").
			Comment("When the snapshot was taken, in unix milliseconds"),
		field.Text("data").
			Comment("Quiz state as JSON"),
	}
}
