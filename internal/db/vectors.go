package db

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/vector-admin/backend/internal/model"
)

const collectionColumns = `id, name, vector_size, distance, created_at`

func scanCollection(row interface{ Scan(dest ...any) error }) (*model.Collection, error) {
	var col model.Collection
	var distance string
	err := row.Scan(
		&col.ID,
		&col.Name,
		&col.VectorSize,
		&distance,
		&col.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	col.Distance = model.Distance(distance)
	return &col, nil
}

func (db *Postgres) ListCollections(ctx context.Context) ([]model.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections ORDER BY name`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *col)
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return collections, rows.Err()
}

func (db *Postgres) GetCollectionByName(ctx context.Context, name string) (*model.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE name = $1`
	return scanCollection(db.Pool.QueryRow(ctx, query, name))
}

// CreateCollectionAudited creates the collection and its audit entry in one
// transaction.
func (db *Postgres) CreateCollectionAudited(ctx context.Context, name string, vectorSize int, distance model.Distance, entry *model.AuditEntry) (*model.Collection, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO collections (name, vector_size, distance, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + collectionColumns
	col, err := scanCollection(tx.QueryRow(ctx, query, name, vectorSize, string(distance)))
	if err != nil {
		return nil, err
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteCollectionAudited drops the collection (points cascade) and writes
// the audit entry atomically. Returns false when no collection matched.
func (db *Postgres) DeleteCollectionAudited(ctx context.Context, name string, entry *model.AuditEntry) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM collections WHERE name = $1`, name)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// UpsertPointAudited inserts or replaces one point together with its audit
// entry.
func (db *Postgres) UpsertPointAudited(ctx context.Context, collectionID int64, point model.Point, entry *model.AuditEntry) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO points (collection_id, id, embedding, payload, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (collection_id, id)
		DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, query, collectionID, point.ID, pgvector.NewVector(point.Vector), point.Payload); err != nil {
		return err
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeletePointsAudited removes the given points and writes the audit entry
// atomically. The count reports how many points actually existed.
func (db *Postgres) DeletePointsAudited(ctx context.Context, collectionID int64, ids []int64, entry *model.AuditEntry) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM points WHERE collection_id = $1 AND id = ANY($2)`, collectionID, ids)
	if err != nil {
		return 0, err
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), tx.Commit(ctx)
}

func (db *Postgres) ScrollPoints(ctx context.Context, collectionID int64, limit int) ([]model.Point, error) {
	query := `
		SELECT id, embedding, payload
		FROM points
		WHERE collection_id = $1
		ORDER BY id
		LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, collectionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		var point model.Point
		var embedding pgvector.Vector
		if err := rows.Scan(&point.ID, &embedding, &point.Payload); err != nil {
			return nil, err
		}
		point.Vector = embedding.Slice()
		points = append(points, point)
	}
	if points == nil {
		points = []model.Point{}
	}
	return points, rows.Err()
}

// distanceOperator maps a collection's metric to the pgvector operator used
// both in the select list and the ORDER BY.
func distanceOperator(d model.Distance) string {
	switch d {
	case model.DistanceEuclid:
		return "<->"
	case model.DistanceDot:
		return "<#>"
	case model.DistanceManhattan:
		return "<+>"
	default:
		return "<=>"
	}
}

// SearchPoints runs a nearest-neighbor query and returns hits scored with
// the raw operator result; the service layer converts that to the exposed
// score shape.
func (db *Postgres) SearchPoints(ctx context.Context, col *model.Collection, vector []float32, limit int) ([]model.SearchHit, error) {
	op := distanceOperator(col.Distance)
	query := fmt.Sprintf(`
		SELECT id, embedding %s $2 AS distance, payload
		FROM points
		WHERE collection_id = $1
		ORDER BY embedding %s $2
		LIMIT $3
	`, op, op)

	rows, err := db.Pool.Query(ctx, query, col.ID, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []model.SearchHit
	for rows.Next() {
		var hit model.SearchHit
		var distance float64
		if err := rows.Scan(&hit.ID, &distance, &hit.Payload); err != nil {
			return nil, err
		}
		hit.Score = float32(distance)
		hits = append(hits, hit)
	}
	if hits == nil {
		hits = []model.SearchHit{}
	}
	return hits, rows.Err()
}
