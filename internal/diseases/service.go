// Package diseases serves the read-only crop disease reference catalog. The
// catalog is shared by every user and is loaded by the seed tool.
package diseases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Store reads the catalog. *farmdb.Queries satisfies it.
type Store interface {
	ListDiseases(ctx context.Context, f farmdb.DiseaseFilter) ([]farm.Disease, error)
	CountDiseases(ctx context.Context, f farmdb.DiseaseFilter) (int, error)
	GetDisease(ctx context.Context, id int) (farm.Disease, error)
	DiseaseFilterOptions(ctx context.Context) (farmdb.DiseaseOptions, error)
}

// ListRequest searches and filters the catalog.
type ListRequest struct {
	Search   string
	Crop     string
	Category string
	Severity string
	State    string
	Season   string
	Page     int
	Limit    int
}

// ListResult is one page of catalog entries.
type ListResult struct {
	Diseases   []farm.Disease    `json:"diseases"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service answers catalog queries.
type Service struct {
	store Store
}

// NewService builds a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns one page of entries matching req, ordered by id.
func (s *Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit || req.Page < 0 {
		return ListResult{}, fmt.Errorf("limit must be 1-%d and page positive: %w", maxListLimit, shared.ErrValidation)
	}
	f := farmdb.DiseaseFilter{
		Search:   strings.TrimSpace(req.Search),
		Crop:     strings.TrimSpace(req.Crop),
		Category: strings.TrimSpace(req.Category),
		Severity: strings.TrimSpace(req.Severity),
		State:    strings.TrimSpace(req.State),
		Season:   strings.TrimSpace(req.Season),
	}
	page := shared.NewPagination(req.Page, limit, 0)
	paged := f
	paged.Limit, paged.Offset = page.PerPage, page.Offset()

	var (
		items []farm.Disease
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.store.ListDiseases(gctx, paged)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.store.CountDiseases(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, fmt.Errorf("list diseases: %w", err)
	}
	if items == nil {
		items = []farm.Disease{}
	}
	return ListResult{Diseases: items, Pagination: shared.NewPagination(page.Page, page.PerPage, total)}, nil
}

// Get loads one entry by its numeric catalog id.
func (s *Service) Get(ctx context.Context, rawID string) (farm.Disease, error) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return farm.Disease{}, fmt.Errorf("disease id %q: %w", rawID, shared.ErrNotFound)
	}
	d, err := s.store.GetDisease(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return farm.Disease{}, fmt.Errorf("disease %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return farm.Disease{}, fmt.Errorf("get disease: %w", err)
	}
	return d, nil
}

// FilterOptions lists the values each catalog filter accepts.
func (s *Service) FilterOptions(ctx context.Context) (farmdb.DiseaseOptions, error) {
	opts, err := s.store.DiseaseFilterOptions(ctx)
	if err != nil {
		return farmdb.DiseaseOptions{}, fmt.Errorf("disease filter options: %w", err)
	}
	return opts, nil
}
