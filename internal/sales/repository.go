package sales

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

// Create inserts a sale.
func (r *Repository) Create(ctx context.Context, sale farm.Sale) error {
	if err := r.queries.InsertSale(ctx, sale); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// Get loads one sale.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (farm.Sale, error) {
	sale, err := r.queries.GetSale(ctx, ownerID, id)
	if err != nil {
		return farm.Sale{}, mapErr("get sale", err)
	}
	return sale, nil
}

// Update overwrites a sale.
func (r *Repository) Update(ctx context.Context, sale farm.Sale) error {
	return mapErr("update sale", r.queries.UpdateSale(ctx, sale))
}

// Delete removes a sale.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	return mapErr("delete sale", r.queries.DeleteSale(ctx, ownerID, id))
}

// List runs a filtered query.
func (r *Repository) List(ctx context.Context, f farmdb.SaleFilter) ([]farm.Sale, error) {
	sales, err := r.queries.ListSales(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("sale: %w", shared.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
