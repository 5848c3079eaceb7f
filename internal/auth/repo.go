package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	authdb "github.com/farmledger/farmledger/internal/auth/db"
	"github.com/farmledger/farmledger/internal/platform/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	FindByLogin(ctx context.Context, email, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	queries *authdb.Queries
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn authdb.DBTX) *PGRepository {
	return &PGRepository{queries: authdb.New(conn)}
}

// CreateUser inserts user, mapping unique violations to shared.ErrDuplicate.
func (r *PGRepository) CreateUser(ctx context.Context, user User) error {
	err := r.queries.CreateUser(ctx, authdb.CreateUserParams{
		ID:           user.ID,
		Email:        text(user.Email),
		Phone:        text(user.Phone),
		PasswordHash: user.PasswordHash,
		DeviceToken:  text(user.DeviceToken),
		CreatedAt:    user.CreatedAt.UTC(),
	})
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("email or phone already registered: %w", shared.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByLogin fetches a user by email or phone.
func (r *PGRepository) FindByLogin(ctx context.Context, email, phone string) (*User, error) {
	record, err := r.queries.GetUserByLogin(ctx, email, phone)
	return mapUser(record, err)
}

// FindByID fetches a user by ID.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	record, err := r.queries.GetUser(ctx, id)
	return mapUser(record, err)
}

func mapUser(record authdb.UserRow, err error) (*User, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &User{
		ID:           record.ID,
		Email:        record.Email.String,
		Phone:        record.Phone.String,
		PasswordHash: record.PasswordHash,
		DeviceToken:  record.DeviceToken.String,
		CreatedAt:    record.CreatedAt.Time,
	}, nil
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

var _ Repository = (*PGRepository)(nil)
