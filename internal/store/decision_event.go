package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/quizladder/internal/difficulty"
)

var decisionColumns = []string{
	"session_id", "question_id", "level", "correct", "response_ms", "accuracy",
	"next_level", "source", "classifier_score", "policy_action", "heuristic_only",
}

func (r *eventRepo) AppendDecision(ctx context.Context, data DecisionEventData) error {
	err := r.insert(ctx, tableDecisions, decisionColumns, []any{
		data.SessionID,
		data.QuestionID,
		string(data.Level),
		data.Correct,
		data.ResponseMs,
		data.Accuracy,
		string(data.NextLevel),
		data.Source,
		data.ClassifierScore,
		data.PolicyAction,
		data.HeuristicOnly,
	})
	if err != nil {
		return fmt.Errorf("save decision event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryDecisions(ctx context.Context, opts QueryOpts) ([]DecisionRecord, error) {
	var extra []*entsql.Predicate
	if opts.SessionID != "" {
		extra = append(extra, entsql.EQ("session_id", opts.SessionID))
	}
	query, args := selectEvents(tableDecisions, decisionColumns, opts, extra...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decision events: %w", err)
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var (
			rec       DecisionRecord
			createdAt int64
			level     string
			next      string
			score     sql.NullFloat64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &createdAt,
			&rec.SessionID, &rec.QuestionID, &level, &rec.Correct, &rec.ResponseMs,
			&rec.Accuracy, &next, &rec.Source, &score, &rec.PolicyAction, &rec.HeuristicOnly)
		if err != nil {
			return nil, fmt.Errorf("scan decision event: %w", err)
		}
		rec.Timestamp = fromMillis(createdAt)
		rec.Level = difficulty.Level(level)
		rec.NextLevel = difficulty.Level(next)
		if score.Valid {
			v := score.Float64
			rec.ClassifierScore = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) DecisionStats(ctx context.Context, sessionID string) (*DecisionStats, error) {
	sel := builder().
		Select(
			"level",
			"source",
			entsql.As(entsql.Count("*"), "n"),
			entsql.As("COALESCE(SUM(correct), 0)", "correct"),
			entsql.As("COALESCE(SUM(heuristic_only), 0)", "heuristic_only"),
		).
		From(entsql.Table(tableDecisions)).
		GroupBy("level", "source")
	if sessionID != "" {
		sel.Where(entsql.EQ("session_id", sessionID))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decision stats: %w", err)
	}
	defer rows.Close()

	stats := &DecisionStats{
		ByLevel:  map[difficulty.Level]int{},
		BySource: map[string]int{},
	}
	for rows.Next() {
		var (
			level, source             string
			n, correct, heuristicOnly int
		)
		if err := rows.Scan(&level, &source, &n, &correct, &heuristicOnly); err != nil {
			return nil, fmt.Errorf("scan decision stats: %w", err)
		}
		stats.Total += n
		stats.Correct += correct
		stats.HeuristicOnly += heuristicOnly
		stats.ByLevel[difficulty.Level(level)] += n
		stats.BySource[source] += n
	}
	return stats, rows.Err()
}
