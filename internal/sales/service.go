package sales

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// RepositoryPort defines data access methods for sales.
type RepositoryPort interface {
	Create(ctx context.Context, sale farm.Sale) error
	Get(ctx context.Context, ownerID, id string) (farm.Sale, error)
	Update(ctx context.Context, sale farm.Sale) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, f farmdb.SaleFilter) ([]farm.Sale, error)
}

// Service handles sale business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService builds a Service. Month filters follow loc.
func NewService(repo RepositoryPort, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, logger: logger, loc: loc, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Create records a sale with its total computed from quantity and price. A
// quantity without a leading number is stored as written with a zero total.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateSaleRequest) (farm.Sale, error) {
	status, err := farm.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return farm.Sale{}, err
	}
	now := s.now().UTC()
	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = farm.NewDate(now.In(s.loc))
	}
	sale := farm.Sale{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		CropID:        strings.TrimSpace(req.CropID),
		SaleDate:      saleDate,
		Quantity:      strings.TrimSpace(req.Quantity),
		SellingPrice:  req.SellingPrice,
		TotalAmount:   farm.SaleTotal(req.Quantity, req.SellingPrice),
		BuyerName:     strings.TrimSpace(req.BuyerName),
		PaymentStatus: status,
		Notes:         req.Notes,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return farm.Sale{}, err
	}
	s.logger.Info("created sale", slog.String("sale_id", sale.ID), slog.String("crop_id", sale.CropID))
	return sale, nil
}

// Get returns one sale of the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (farm.Sale, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update applies the supplied fields. The total is recomputed only when both
// quantity and selling price are resupplied; otherwise the stored total stays.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateSaleRequest) (farm.Sale, error) {
	sale, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return farm.Sale{}, err
	}
	if req.CropID != nil {
		sale.CropID = strings.TrimSpace(*req.CropID)
	}
	if req.SaleDate != nil {
		sale.SaleDate = *req.SaleDate
	}
	if req.Quantity != nil {
		sale.Quantity = strings.TrimSpace(*req.Quantity)
	}
	if req.SellingPrice != nil {
		sale.SellingPrice = *req.SellingPrice
	}
	if req.Quantity != nil && req.SellingPrice != nil {
		sale.TotalAmount = farm.SaleTotal(sale.Quantity, sale.SellingPrice)
	}
	if req.BuyerName != nil {
		sale.BuyerName = strings.TrimSpace(*req.BuyerName)
	}
	if req.PaymentStatus != nil {
		if sale.PaymentStatus, err = farm.ParsePaymentStatus(*req.PaymentStatus); err != nil {
			return farm.Sale{}, err
		}
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return farm.Sale{}, err
	}
	return sale, nil
}

// Delete removes a sale.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's sales, newest first, for the requested month and
// crop.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) ([]farm.Sale, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit || req.Skip < 0 {
		return nil, fmt.Errorf("limit must be 1-%d and skip non-negative: %w", maxListLimit, shared.ErrValidation)
	}
	f := farmdb.SaleFilter{Filter: farmdb.Filter{OwnerID: ownerID, Limit: limit, Offset: req.Skip}}
	if crop := strings.TrimSpace(req.CropID); crop != "" && crop != MonthAll {
		f.CropID = crop
	}

	now := s.now().In(s.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	switch strings.TrimSpace(req.Month) {
	case "", MonthAll:
	case MonthCurrent:
		f.CreatedFrom = first
		f.CreatedTo = first.AddDate(0, 1, 0).Add(-time.Millisecond)
	case MonthLast:
		f.CreatedFrom = first.AddDate(0, -1, 0)
		f.CreatedTo = first.Add(-time.Millisecond)
	default:
		return nil, fmt.Errorf("filterMonth %q: %w", req.Month, shared.ErrValidation)
	}
	return s.repo.List(ctx, f)
}

