package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var episodeColumns = []string{"run_id", "kind", "episode", "steps", "total_reward", "history"}

func (r *eventRepo) AppendEpisode(ctx context.Context, data EpisodeEventData) error {
	history := data.History
	if history == "" {
		history = "[]"
	}
	err := r.insert(ctx, tableEpisodes, episodeColumns, []any{
		data.RunID, data.Kind, data.Episode, data.Steps, data.TotalReward, history,
	})
	if err != nil {
		return fmt.Errorf("save episode event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryEpisodes(ctx context.Context, opts QueryOpts) ([]EpisodeRecord, error) {
	var extra []*entsql.Predicate
	if opts.RunID != "" {
		extra = append(extra, entsql.EQ("run_id", opts.RunID))
	}
	query, args := selectEvents(tableEpisodes, episodeColumns, opts, extra...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episode events: %w", err)
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var (
			rec       EpisodeRecord
			createdAt int64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &createdAt,
			&rec.RunID, &rec.Kind, &rec.Episode, &rec.Steps, &rec.TotalReward, &rec.History)
		if err != nil {
			return nil, fmt.Errorf("scan episode event: %w", err)
		}
		rec.Timestamp = fromMillis(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
