package expenditures

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/platform/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool    *pgxpool.Pool
	queries *farmdb.Queries
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, queries: farmdb.New(pool)}
}

// WithTx runs fn in a repeatable-read transaction so allocation inputs and the
// write see the same crops.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{queries: r.queries.WithTx(tx)})
	})
}

// Get loads one expenditure.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (farm.Expenditure, error) {
	return (&txRepository{queries: r.queries}).Get(ctx, ownerID, id)
}

// Delete removes an expenditure.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	return mapErr("delete expenditure", r.queries.DeleteExpenditure(ctx, ownerID, id))
}

// List runs a filtered query.
func (r *Repository) List(ctx context.Context, f farmdb.ExpenditureFilter) ([]farm.Expenditure, error) {
	exps, err := r.queries.ListExpenditures(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenditures: %w", err)
	}
	return exps, nil
}

// Categories lists the distinct categories of the owner.
func (r *Repository) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := r.queries.ListExpenditureCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

type txRepository struct {
	queries *farmdb.Queries
}

func (t *txRepository) FieldSizes(ctx context.Context, ownerID string, cropIDs []string) (map[string]string, error) {
	if len(cropIDs) == 0 {
		return map[string]string{}, nil
	}
	crops, err := t.queries.ListCrops(ctx, farmdb.CropFilter{Filter: farmdb.Filter{OwnerID: ownerID}, IDs: cropIDs})
	if err != nil {
		return nil, fmt.Errorf("load crops: %w", err)
	}
	sizes := make(map[string]string, len(crops))
	for _, c := range crops {
		sizes[c.ID] = c.FieldSize
	}
	return sizes, nil
}

func (t *txRepository) Get(ctx context.Context, ownerID, id string) (farm.Expenditure, error) {
	exp, err := t.queries.GetExpenditure(ctx, ownerID, id)
	if err != nil {
		return farm.Expenditure{}, mapErr("get expenditure", err)
	}
	return exp, nil
}

func (t *txRepository) Create(ctx context.Context, exp farm.Expenditure) error {
	if err := t.queries.InsertExpenditure(ctx, exp); err != nil {
		return fmt.Errorf("insert expenditure: %w", err)
	}
	return nil
}

func (t *txRepository) Update(ctx context.Context, exp farm.Expenditure) error {
	return mapErr("update expenditure", t.queries.UpdateExpenditure(ctx, exp))
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("expenditure: %w", shared.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
