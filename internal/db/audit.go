package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vector-admin/backend/internal/model"
)

func insertAuditEntry(ctx context.Context, q Querier, entry *model.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (user_id, action, resource, payload, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query, entry.UserID, entry.Action, entry.Resource, entry.Payload).Scan(
		&entry.ID,
		&entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuditWrite, err)
	}
	return nil
}

func (db *Postgres) InsertAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	return insertAuditEntry(ctx, db.Pool, entry)
}

// ListAuditEntries returns entries newest-first, optionally bounded by
// creation time. Nil bounds leave that side of the range open.
func (db *Postgres) ListAuditEntries(ctx context.Context, from, to *time.Time, limit int) ([]model.AuditEntry, error) {
	query := `
		SELECT id, user_id, action, resource, payload, created_at
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := db.Pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Resource,
			&entry.Payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return entries, rows.Err()
}
