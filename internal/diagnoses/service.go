package diagnoses

import (
	"context"
	"fmt"
	"log/slog"
	"math"
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

// RepositoryPort defines data access methods for diagnoses.
type RepositoryPort interface {
	Create(ctx context.Context, d farm.Diagnosis) error
	Get(ctx context.Context, ownerID, id string) (farm.Diagnosis, error)
	Update(ctx context.Context, d farm.Diagnosis) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, f farmdb.DiagnosisFilter) ([]farm.Diagnosis, error)
}

// Service handles diagnosis business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Record stores a classifier result with default severity, status and
// language applied.
func (s *Service) Record(ctx context.Context, ownerID string, req RecordRequest) (farm.Diagnosis, error) {
	kind, err := farm.ParseDiagnosisType(req.Type)
	if err != nil {
		return farm.Diagnosis{}, err
	}
	severity, err := farm.ParseSeverity(req.Severity)
	if err != nil {
		return farm.Diagnosis{}, err
	}
	status, err := farm.ParseDiagnosisStatus(req.Status)
	if err != nil {
		return farm.Diagnosis{}, err
	}
	if err := checkResult(req.Diagnosis); err != nil {
		return farm.Diagnosis{}, err
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	d := farm.Diagnosis{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Type:      kind,
		Crop:      strings.TrimSpace(req.Crop),
		Symptoms:  strings.TrimSpace(req.Symptoms),
		Result:    req.Diagnosis,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		SessionID: strings.TrimSpace(req.SessionID),
		Language:  language,
		Severity:  severity,
		Status:    status,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return farm.Diagnosis{}, err
	}
	s.logger.Info("recorded diagnosis",
		slog.String("diagnosis_id", d.ID),
		slog.String("type", string(d.Type)),
		slog.String("disease", d.Result.Disease))
	return d, nil
}

// Get returns one diagnosis of the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (farm.Diagnosis, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update applies the supplied result and treatment fields.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (farm.Diagnosis, error) {
	d, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return farm.Diagnosis{}, err
	}
	if req.Diagnosis != nil {
		if err := checkResult(*req.Diagnosis); err != nil {
			return farm.Diagnosis{}, err
		}
		d.Result = *req.Diagnosis
	}
	if req.Severity != nil {
		if d.Severity, err = farm.ParseSeverity(*req.Severity); err != nil {
			return farm.Diagnosis{}, err
		}
	}
	if req.Status != nil {
		if d.Status, err = farm.ParseDiagnosisStatus(*req.Status); err != nil {
			return farm.Diagnosis{}, err
		}
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return farm.Diagnosis{}, err
	}
	return d, nil
}

// Delete removes a diagnosis.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// List returns the owner's diagnoses newest first.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) ([]farm.Diagnosis, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit || req.Skip < 0 {
		return nil, fmt.Errorf("limit must be 1-%d and skip non-negative: %w", maxListLimit, shared.ErrValidation)
	}
	f := farmdb.DiagnosisFilter{
		Filter:    farmdb.Filter{OwnerID: ownerID, Limit: limit, Offset: req.Skip},
		SessionID: strings.TrimSpace(req.SessionID),
		Crop:      strings.TrimSpace(req.Crop),
	}
	if strings.TrimSpace(req.Type) != "" {
		kind, err := farm.ParseDiagnosisType(req.Type)
		if err != nil {
			return nil, err
		}
		f.Type = kind
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := farm.ParseDiagnosisStatus(req.Status)
		if err != nil {
			return nil, err
		}
		f.Status = status
	}
	return s.repo.List(ctx, f)
}

// Session returns every diagnosis recorded in one chat session, newest first.
func (s *Service) Session(ctx context.Context, ownerID, sessionID string) ([]farm.Diagnosis, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("sessionId is required: %w", shared.ErrValidation)
	}
	return s.repo.List(ctx, farmdb.DiagnosisFilter{
		Filter:    farmdb.Filter{OwnerID: ownerID},
		SessionID: sessionID,
	})
}

func checkResult(r farm.DiagnosisResult) error {
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v must be within 0-1: %w", r.Confidence, shared.ErrValidation)
	}
	return nil
}
