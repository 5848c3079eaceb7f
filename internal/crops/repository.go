package crops

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

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(db farmdb.DBTX) *Repository {
	return &Repository{queries: farmdb.New(db)}
}

// Create inserts a crop.
func (r *Repository) Create(ctx context.Context, crop farm.Crop) error {
	if err := r.queries.InsertCrop(ctx, crop); err != nil {
		return fmt.Errorf("insert crop: %w", err)
	}
	return nil
}

// Get loads one crop.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (farm.Crop, error) {
	crop, err := r.queries.GetCrop(ctx, ownerID, id)
	if err != nil {
		return farm.Crop{}, mapErr("get crop", err)
	}
	return crop, nil
}

// Update overwrites a crop.
func (r *Repository) Update(ctx context.Context, crop farm.Crop) error {
	return mapErr("update crop", r.queries.UpdateCrop(ctx, crop))
}

// Delete removes a crop.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	return mapErr("delete crop", r.queries.DeleteCrop(ctx, ownerID, id))
}

// List runs a filtered query.
func (r *Repository) List(ctx context.Context, f farmdb.CropFilter) ([]farm.Crop, error) {
	crops, err := r.queries.ListCrops(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}
	return crops, nil
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("crop: %w", shared.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
