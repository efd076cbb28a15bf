package db

import (
	"context"

	"github.com/vector-admin/backend/internal/model"
)

const userColumns = `id, email, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}

func createUser(ctx context.Context, q Querier, email, passwordHash string, role model.Role) (*model.User, error) {
	query := `
		INSERT INTO users (email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(q.QueryRow(ctx, query, email, passwordHash, string(role)))
}

func (db *Postgres) CreateUser(ctx context.Context, email, passwordHash string, role model.Role) (*model.User, error) {
	return createUser(ctx, db.Pool, email, passwordHash, role)
}

// CreateUserAudited inserts the user and its audit entry in one transaction,
// so the account exists iff the audit record does.
func (db *Postgres) CreateUserAudited(ctx context.Context, email, passwordHash string, role model.Role, entry *model.AuditEntry) (*model.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := createUser(ctx, tx, email, passwordHash, role)
	if err != nil {
		return nil, err
	}
	if err := insertAuditEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, id))
}

func (db *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, rows.Err()
}

// DeleteUserAudited removes the user and writes the audit entry in one
// transaction. Returns false without writing anything when no row matched.
func (db *Postgres) DeleteUserAudited(ctx context.Context, id int64, entry *model.AuditEntry) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
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
