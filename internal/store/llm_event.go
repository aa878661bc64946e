package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var llmColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
	"success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, tableLLM, llmColumns, []any{
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s rowScanner) (LLMEventRecord, error) {
	var (
		rec       LLMEventRecord
		createdAt int64
	)
	err := s.Scan(&rec.ID, &rec.Sequence, &createdAt,
		&rec.Provider, &rec.Model, &rec.Purpose, &rec.InputTokens, &rec.OutputTokens,
		&rec.LatencyMs, &rec.Success, &rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody)
	rec.Timestamp = fromMillis(createdAt)
	return rec, err
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	var extra []*entsql.Predicate
	if opts.Purpose != "" {
		extra = append(extra, entsql.EQ("purpose", opts.Purpose))
	}
	query, args := selectEvents(tableLLM, llmColumns, opts, extra...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error) {
	query, args := builder().
		Select(append([]string{"id", "sequence", "created_at"}, llmColumns...)...).
		From(entsql.Table(tableLLM)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return &rec, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "model")
}

func (r *eventRepo) llmUsage(ctx context.Context, groupBy string) ([]LLMUsage, error) {
	query, args := builder().
		Select(
			groupBy,
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As("COALESCE(SUM(input_tokens), 0)", "input_tokens"),
			entsql.As("COALESCE(SUM(output_tokens), 0)", "output_tokens"),
			entsql.As("CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)", "avg_latency_ms"),
		).
		From(entsql.Table(tableLLM)).
		GroupBy(groupBy).
		OrderBy(groupBy).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u   LLMUsage
			key string
		)
		if err := rows.Scan(&key, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		if groupBy == "model" {
			u.Model = key
		} else {
			u.Purpose = key
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
