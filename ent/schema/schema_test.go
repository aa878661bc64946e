package schema

import (
	"context"
	"path/filepath"
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizladder/internal/store"
)

// columns returns the column names a schema describes, in declaration
// order, including the implicit id.
func columns(s ent.Interface) []string {
	cols := []string{"id"}
	for _, m := range s.Mixin() {
		for _, f := range m.Fields() {
			cols = append(cols, f.Descriptor().Name)
		}
	}
	for _, f := range s.Fields() {
		cols = append(cols, f.Descriptor().Name)
	}
	return cols
}

func tableName(t *testing.T, s ent.Interface) string {
	t.Helper()
	for _, a := range s.Annotations() {
		if ann, ok := a.(entsql.Annotation); ok && ann.Table != "" {
			return ann.Table
		}
	}
	t.Fatalf("%T has no table annotation", s)
	return ""
}

func TestSchemasMatchMigratedTables(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer s.Close()

	schemas := []ent.Interface{DecisionEvent{}, EpisodeEvent{}, LLMEvent{}, Snapshot{}}
	for _, sc := range schemas {
		table := tableName(t, sc)
		t.Run(table, func(t *testing.T) {
			rows, err := s.DB().QueryContext(context.Background(),
				"SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
			require.NoError(t, err)
			defer rows.Close()

			var got []string
			for rows.Next() {
				var name string
				require.NoError(t, rows.Scan(&name))
				got = append(got, name)
			}
			require.NoError(t, rows.Err())

			assert.Equal(t, columns(sc), got)
		})
	}
}
