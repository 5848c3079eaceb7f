package diagnoses

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	queries *farmdb.Queries
}

// NewRepository constructs a repository.
func NewRepository(db farmdb.DBTX) *Repository {
	return &Repository{queries: farmdb.New(db)}
}

// Create inserts a diagnosis.
func (r *Repository) Create(ctx context.Context, d farm.Diagnosis) error {
	if err := r.queries.InsertDiagnosis(ctx, d); err != nil {
		return fmt.Errorf("insert diagnosis: %w", err)
	}
	return nil
}

// Get loads one diagnosis.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (farm.Diagnosis, error) {
	d, err := r.queries.GetDiagnosis(ctx, ownerID, id)
	if err != nil {
		return farm.Diagnosis{}, mapErr("get diagnosis", err)
	}
	return d, nil
}

// Update persists result, severity and status.
func (r *Repository) Update(ctx context.Context, d farm.Diagnosis) error {
	return mapErr("update diagnosis", r.queries.UpdateDiagnosis(ctx, d))
}

// Delete removes a diagnosis.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	return mapErr("delete diagnosis", r.queries.DeleteDiagnosis(ctx, ownerID, id))
}

// List runs a filtered query.
func (r *Repository) List(ctx context.Context, f farmdb.DiagnosisFilter) ([]farm.Diagnosis, error) {
	diags, err := r.queries.ListDiagnoses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list diagnoses: %w", err)
	}
	return diags, nil
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("diagnosis: %w", shared.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
