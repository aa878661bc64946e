package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Data.Version == 0 {
		snap.Data.Version = SnapshotVersion
	}
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	if snap.Sequence == 0 {
		if err := r.db.QueryRowContext(ctx,
			`SELECT next_val - 1 FROM global_sequence WHERE id = 1`).Scan(&snap.Sequence); err != nil {
			return fmt.Errorf("read sequence: %w", err)
		}
	}

	query, args := builder().
		Insert(tableSnapshots).
		Columns("sequence", "created_at", "data").
		Values(snap.Sequence, snap.Timestamp.UnixMilli(), string(data)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = id
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	query, args := builder().
		Select("id", "sequence", "created_at", "data").
		From(entsql.Table(tableSnapshots)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		s         Snapshot
		createdAt int64
		data      string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Sequence, &createdAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	s.Timestamp = fromMillis(createdAt)
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	query, args := builder().
		Select("id").
		From(entsql.Table(tableSnapshots)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(keep).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query snapshots to keep: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query snapshots to keep: %w", err)
	}
	if len(ids) < keep {
		return nil // fewer than keep snapshots exist
	}

	del := builder().Delete(tableSnapshots)
	if len(ids) > 0 {
		del.Where(entsql.NotIn("id", ids...))
	}
	delQuery, delArgs := del.Query()
	if _, err := r.db.ExecContext(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
