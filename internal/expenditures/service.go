package expenditures

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmledger/farmledger/internal/analytics"
	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// TxRepository is the transactional subset used while resolving allocations.
type TxRepository interface {
	FieldSizes(ctx context.Context, ownerID string, cropIDs []string) (map[string]string, error)
	Get(ctx context.Context, ownerID, id string) (farm.Expenditure, error)
	Create(ctx context.Context, exp farm.Expenditure) error
	Update(ctx context.Context, exp farm.Expenditure) error
}

// RepositoryPort defines data access methods for expenditures.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	Get(ctx context.Context, ownerID, id string) (farm.Expenditure, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, f farmdb.ExpenditureFilter) ([]farm.Expenditure, error)
	Categories(ctx context.Context, ownerID string) ([]string, error)
}

// Service handles expenditure business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService builds a Service. Default expense dates follow loc.
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

// Create records an expenditure and stores its per-crop allocations.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateExpenditureRequest) (farm.Expenditure, error) {
	frequency, err := farm.ParseFrequency(req.Frequency)
	if err != nil {
		return farm.Expenditure{}, err
	}
	mode, err := farm.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return farm.Expenditure{}, err
	}
	method, err := farm.ParseAllocationMethod(req.AllocationMethod)
	if err != nil {
		return farm.Expenditure{}, err
	}
	now := s.now().UTC()
	expenseDate := req.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = farm.NewDate(now.In(s.loc))
	}
	exp := farm.Expenditure{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Category:         strings.TrimSpace(req.Category),
		SubCategory:      strings.TrimSpace(req.SubCategory),
		Amount:           req.Amount,
		Frequency:        frequency,
		PaymentMode:      mode,
		PaidTo:           strings.TrimSpace(req.PaidTo),
		InvoiceNumber:    strings.TrimSpace(req.InvoiceNumber),
		FarmSection:      strings.TrimSpace(req.FarmSection),
		Notes:            req.Notes,
		ExpenseDate:      expenseDate,
		AllocationMethod: method,
		CropsInvolved:    trimIDs(req.CropsInvolved),
		Allocations:      req.Allocations,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.allocate(ctx, tx, &exp); err != nil {
			return err
		}
		return tx.Create(ctx, exp)
	})
	if err != nil {
		return farm.Expenditure{}, err
	}
	s.logger.Info("created expenditure",
		slog.String("expenditure_id", exp.ID),
		slog.String("method", string(exp.AllocationMethod)),
		slog.Int("allocations", len(exp.Allocations)))
	return exp, nil
}

// Get returns one expenditure of the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (farm.Expenditure, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update applies the supplied fields. Allocations are resolved again when the
// amount, method, involved crops or manual allocations change.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateExpenditureRequest) (farm.Expenditure, error) {
	var out farm.Expenditure
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exp, err := tx.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := applyUpdate(&exp, req); err != nil {
			return err
		}
		if req.Amount != nil || req.AllocationMethod != nil || req.CropsInvolved != nil || req.Allocations != nil {
			if err := s.allocate(ctx, tx, &exp); err != nil {
				return err
			}
		}
		exp.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, exp); err != nil {
			return err
		}
		out = exp
		return nil
	})
	if err != nil {
		return farm.Expenditure{}, err
	}
	return out, nil
}

func applyUpdate(exp *farm.Expenditure, req UpdateExpenditureRequest) error {
	var err error
	if req.Category != nil {
		exp.Category = strings.TrimSpace(*req.Category)
	}
	if req.SubCategory != nil {
		exp.SubCategory = strings.TrimSpace(*req.SubCategory)
	}
	if req.Amount != nil {
		exp.Amount = *req.Amount
	}
	if req.Frequency != nil {
		if exp.Frequency, err = farm.ParseFrequency(*req.Frequency); err != nil {
			return err
		}
	}
	if req.PaymentMode != nil {
		if exp.PaymentMode, err = farm.ParsePaymentMode(*req.PaymentMode); err != nil {
			return err
		}
	}
	if req.PaidTo != nil {
		exp.PaidTo = strings.TrimSpace(*req.PaidTo)
	}
	if req.InvoiceNumber != nil {
		exp.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
	}
	if req.FarmSection != nil {
		exp.FarmSection = strings.TrimSpace(*req.FarmSection)
	}
	if req.Notes != nil {
		exp.Notes = *req.Notes
	}
	if req.ExpenseDate != nil {
		exp.ExpenseDate = *req.ExpenseDate
	}
	if req.AllocationMethod != nil {
		if exp.AllocationMethod, err = farm.ParseAllocationMethod(*req.AllocationMethod); err != nil {
			return err
		}
	}
	if req.CropsInvolved != nil {
		exp.CropsInvolved = trimIDs(req.CropsInvolved)
	}
	if req.Allocations != nil {
		exp.Allocations = *req.Allocations
	}
	return nil
}

// allocate replaces exp.Allocations with the resolved split. Field sizes are
// only loaded for the fieldSize method.
func (s *Service) allocate(ctx context.Context, tx TxRepository, exp *farm.Expenditure) error {
	in := analytics.AllocationInput{
		Method:        exp.AllocationMethod,
		Amount:        exp.Amount,
		CropsInvolved: exp.CropsInvolved,
		Manual:        exp.Allocations,
	}
	if exp.AllocationMethod == farm.AllocationFieldSize {
		sizes, err := tx.FieldSizes(ctx, exp.OwnerID, exp.CropsInvolved)
		if err != nil {
			return err
		}
		in.FieldSizes = sizes
	}
	allocs, err := analytics.ResolveAllocations(in)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}
	exp.Allocations = allocs
	return nil
}

// Delete removes an expenditure.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's expenditures newest first. Enum filters are
// validated before the query runs.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) ([]farm.Expenditure, error) {
	f := farmdb.ExpenditureFilter{
		Filter:      farmdb.Filter{OwnerID: ownerID},
		CropID:      strings.TrimSpace(req.CropID),
		Category:    strings.TrimSpace(req.Category),
		ExpenseDate: req.ExpenseDate,
	}
	if strings.TrimSpace(req.Frequency) != "" {
		frequency, err := farm.ParseFrequency(req.Frequency)
		if err != nil {
			return nil, err
		}
		f.Frequency = frequency
	}
	if strings.TrimSpace(req.PaymentMode) != "" {
		mode, err := farm.ParsePaymentMode(req.PaymentMode)
		if err != nil {
			return nil, err
		}
		f.PaymentMode = mode
	}
	return s.repo.List(ctx, f)
}

// Categories lists the distinct categories the owner has used.
func (s *Service) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := s.repo.Categories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func trimIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
