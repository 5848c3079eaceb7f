package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/shared"
)

// Query scopes a store read. Range filters on created_at and CropID, when
// set, restricts sales to that crop and expenditures to those allocating to it.
type Query struct {
	OwnerID string
	Range   *DateRange
	CropID  string
}

// Repository is the read side of the entity store.
type Repository interface {
	ListCrops(ctx context.Context, q Query) ([]farm.Crop, error)
	ListSales(ctx context.Context, q Query) ([]farm.Sale, error)
	ListExpenditures(ctx context.Context, q Query) ([]farm.Expenditure, error)
	ListDiagnoses(ctx context.Context, q Query) ([]farm.Diagnosis, error)
	GetCrop(ctx context.Context, ownerID, cropID string) (farm.Crop, error)
}

// Filter is the common input of every report.
type Filter struct {
	OwnerID string
	Range   RangeInput
}

// Service assembles reports from fresh store reads on every call.
type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService wires a Repository. Calendar grouping happens in loc.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Location reports the zone used for calendar grouping.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) resolve(f Filter) (*DateRange, error) {
	if f.OwnerID == "" {
		return nil, missingParam("ownerId")
	}
	return ResolveRange(f.Range, s.clock())
}

// loadSpec names the record sets a report needs; nil entries are skipped.
type loadSpec struct {
	crops *Query
	sales *Query
	exps  *Query
	diags *Query
}

type dataset struct {
	crops []farm.Crop
	sales []farm.Sale
	exps  []farm.Expenditure
	diags []farm.Diagnosis
}

func (s *Service) load(ctx context.Context, spec loadSpec) (dataset, error) {
	var ds dataset
	g, gctx := errgroup.WithContext(ctx)
	if spec.crops != nil {
		g.Go(func() error {
			rows, err := s.repo.ListCrops(gctx, *spec.crops)
			if err != nil {
				return aggregationFailure("list crops", err)
			}
			ds.crops = rows
			return nil
		})
	}
	if spec.sales != nil {
		g.Go(func() error {
			rows, err := s.repo.ListSales(gctx, *spec.sales)
			if err != nil {
				return aggregationFailure("list sales", err)
			}
			ds.sales = rows
			return nil
		})
	}
	if spec.exps != nil {
		g.Go(func() error {
			rows, err := s.repo.ListExpenditures(gctx, *spec.exps)
			if err != nil {
				return aggregationFailure("list expenditures", err)
			}
			ds.exps = rows
			return nil
		})
	}
	if spec.diags != nil {
		g.Go(func() error {
			rows, err := s.repo.ListDiagnoses(gctx, *spec.diags)
			if err != nil {
				return aggregationFailure("list diagnoses", err)
			}
			ds.diags = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dataset{}, err
	}
	return ds, nil
}

func (s *Service) getCrop(ctx context.Context, ownerID, cropID string) (farm.Crop, error) {
	crop, err := s.repo.GetCrop(ctx, ownerID, cropID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return farm.Crop{}, &Error{Kind: KindNotFound, Field: "cropId", Message: "crop " + cropID + " not found", Err: err}
		}
		return farm.Crop{}, aggregationFailure("get crop", err)
	}
	return crop, nil
}

func cropIndex(crops []farm.Crop) map[string]farm.Crop {
	out := make(map[string]farm.Crop, len(crops))
	for _, c := range crops {
		out[c.ID] = c
	}
	return out
}

// sortKey extracts either a numeric or a textual sort value from a row.
type sortKey[T any] struct {
	num func(T) float64
	str func(T) string
}

// SortOrder values.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

func sortRows[T any](rows []T, keys map[string]sortKey[T], by, order, fallback string) error {
	if by == "" {
		by = fallback
	}
	key, ok := keys[by]
	if !ok {
		return invalidParam("sortBy", by)
	}
	var desc bool
	switch order {
	case "", SortDesc:
		desc = true
	case SortAsc:
	default:
		return invalidParam("sortOrder", order)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if key.str != nil {
			a, b := key.str(rows[i]), key.str(rows[j])
			if desc {
				return a > b
			}
			return a < b
		}
		a, b := key.num(rows[i]), key.num(rows[j])
		if desc {
			return a > b
		}
		return a < b
	})
	return nil
}
