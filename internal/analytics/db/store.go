// Package analyticsdb implements analytics.Repository on PostgreSQL.
package analyticsdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/analytics"
	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// Store reads owner-scoped record sets for report assembly.
type Store struct {
	queries *farmdb.Queries
}

// NewStore wraps a pool or transaction.
func NewStore(db farmdb.DBTX) *Store {
	return &Store{queries: farmdb.New(db)}
}

var _ analytics.Repository = (*Store)(nil)

func baseFilter(q analytics.Query) farmdb.Filter {
	f := farmdb.Filter{OwnerID: q.OwnerID}
	if q.Range != nil {
		f.CreatedFrom = q.Range.Start
		f.CreatedTo = q.Range.End
	}
	return f
}

// ListCrops returns crops created inside the query range. CropID limits the
// result to that one crop.
func (s *Store) ListCrops(ctx context.Context, q analytics.Query) ([]farm.Crop, error) {
	f := farmdb.CropFilter{Filter: baseFilter(q)}
	if q.CropID != "" {
		f.IDs = []string{q.CropID}
	}
	crops, err := s.queries.ListCrops(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("analyticsdb: list crops: %w", err)
	}
	return crops, nil
}

// ListSales returns sales created inside the query range.
func (s *Store) ListSales(ctx context.Context, q analytics.Query) ([]farm.Sale, error) {
	sales, err := s.queries.ListSales(ctx, farmdb.SaleFilter{Filter: baseFilter(q), CropID: q.CropID})
	if err != nil {
		return nil, fmt.Errorf("analyticsdb: list sales: %w", err)
	}
	return sales, nil
}

// ListExpenditures returns expenditures created inside the query range. With
// CropID set only those allocating to the crop are returned.
func (s *Store) ListExpenditures(ctx context.Context, q analytics.Query) ([]farm.Expenditure, error) {
	exps, err := s.queries.ListExpenditures(ctx, farmdb.ExpenditureFilter{Filter: baseFilter(q), CropID: q.CropID})
	if err != nil {
		return nil, fmt.Errorf("analyticsdb: list expenditures: %w", err)
	}
	return exps, nil
}

// ListDiagnoses returns diagnoses created inside the query range.
func (s *Store) ListDiagnoses(ctx context.Context, q analytics.Query) ([]farm.Diagnosis, error) {
	diags, err := s.queries.ListDiagnoses(ctx, farmdb.DiagnosisFilter{Filter: baseFilter(q)})
	if err != nil {
		return nil, fmt.Errorf("analyticsdb: list diagnoses: %w", err)
	}
	return diags, nil
}

// GetCrop returns shared.ErrNotFound when the owner has no such crop.
func (s *Store) GetCrop(ctx context.Context, ownerID, cropID string) (farm.Crop, error) {
	crop, err := s.queries.GetCrop(ctx, ownerID, cropID)
	if errors.Is(err, pgx.ErrNoRows) {
		return farm.Crop{}, shared.ErrNotFound
	}
	if err != nil {
		return farm.Crop{}, fmt.Errorf("analyticsdb: get crop: %w", err)
	}
	return crop, nil
}
