// Package authdb holds the user account queries.
package authdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries runs user statements.
type Queries struct {
	db DBTX
}

// New wraps db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// UserRow mirrors the users table.
type UserRow struct {
	ID           string
	Email        pgtype.Text
	Phone        pgtype.Text
	PasswordHash string
	DeviceToken  pgtype.Text
	CreatedAt    pgtype.Timestamptz
}

const userColumns = `id, email, phone, password_hash, device_token, created_at`

// CreateUserParams holds the insert arguments.
type CreateUserParams struct {
	ID           string
	Email        pgtype.Text
	Phone        pgtype.Text
	PasswordHash string
	DeviceToken  pgtype.Text
	CreatedAt    time.Time
}

// CreateUser inserts a user. Duplicate emails or phones fail with a unique
// violation.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		arg.ID, arg.Email, arg.Phone, arg.PasswordHash, arg.DeviceToken, arg.CreatedAt)
	return err
}

// GetUserByLogin finds a user by email or phone.
func (q *Queries) GetUserByLogin(ctx context.Context, email, phone string) (UserRow, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
		WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND phone = $2)
		ORDER BY created_at LIMIT 1`, email, phone)
	return scanUser(row)
}

// GetUser loads a user by ID.
func (q *Queries) GetUser(ctx context.Context, id string) (UserRow, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func scanUser(row pgx.Row) (UserRow, error) {
	var u UserRow
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.DeviceToken, &u.CreatedAt)
	return u, err
}
