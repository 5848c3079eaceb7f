package crops

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
	defaultListLimit  = 10
	maxListLimit      = 100
	defaultDaysAhead  = 7
	maxDaysAhead      = 365
	immediateReminder = 3
)

// RepositoryPort defines data access methods for crops.
type RepositoryPort interface {
	Create(ctx context.Context, crop farm.Crop) error
	Get(ctx context.Context, ownerID, id string) (farm.Crop, error)
	Update(ctx context.Context, crop farm.Crop) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, f farmdb.CropFilter) ([]farm.Crop, error)
}

// ReminderScheduler queues a harvest reminder for one crop.
type ReminderScheduler interface {
	EnqueueHarvestReminder(ctx context.Context, ownerID, cropID string) error
}

// Service handles crop business logic.
type Service struct {
	repo      RepositoryPort
	reminders ReminderScheduler
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewService builds a Service. reminders may be nil.
func NewService(repo RepositoryPort, reminders ReminderScheduler, logger *slog.Logger, loc *time.Location) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, reminders: reminders, logger: logger, loc: loc, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *Service) today() farm.Date {
	return farm.NewDate(s.now().In(s.loc))
}

// Create registers a crop. A missing stage defaults to Sowing.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateCropRequest) (farm.Crop, error) {
	cropType, err := farm.ParseCropType(req.Type)
	if err != nil {
		return farm.Crop{}, err
	}
	stage := farm.StageSowing
	if strings.TrimSpace(req.CurrentStage) != "" {
		if stage, err = farm.ParseStage(req.CurrentStage); err != nil {
			return farm.Crop{}, err
		}
	}
	progress, err := stage.Progress()
	if err != nil {
		return farm.Crop{}, err
	}

	now := s.now().UTC()
	crop := farm.Crop{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(req.Name),
		Type:            cropType,
		Variety:         strings.TrimSpace(req.Variety),
		FieldSize:       strings.TrimSpace(req.FieldSize),
		Location:        req.Location,
		Notes:           req.Notes,
		CurrentStage:    stage,
		Progress:        progress,
		StartDate:       req.StartDate,
		ExpectedHarvest: req.ExpectedHarvest,
		WhenToPluck:     req.WhenToPluck,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, crop); err != nil {
		return farm.Crop{}, err
	}
	s.logger.Info("created crop", slog.String("crop_id", crop.ID), slog.String("owner_id", ownerID))
	s.remindIfDue(ctx, crop)
	return crop, nil
}

// Get returns one crop of the owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (farm.Crop, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update applies the supplied fields. Changing the stage recomputes progress.
func (s *Service) Update(ctx context.Context, ownerID, id string, req UpdateCropRequest) (farm.Crop, error) {
	crop, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return farm.Crop{}, err
	}
	if req.Name != nil {
		crop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		if crop.Type, err = farm.ParseCropType(*req.Type); err != nil {
			return farm.Crop{}, err
		}
	}
	if req.Variety != nil {
		crop.Variety = strings.TrimSpace(*req.Variety)
	}
	if req.FieldSize != nil {
		crop.FieldSize = strings.TrimSpace(*req.FieldSize)
	}
	if req.Location != nil {
		crop.Location = *req.Location
	}
	if req.Notes != nil {
		crop.Notes = *req.Notes
	}
	if req.CurrentStage != nil {
		stage, err := farm.ParseStage(*req.CurrentStage)
		if err != nil {
			return farm.Crop{}, err
		}
		if crop.Progress, err = stage.Progress(); err != nil {
			return farm.Crop{}, err
		}
		crop.CurrentStage = stage
	}
	if req.StartDate != nil {
		crop.StartDate = *req.StartDate
	}
	if req.ExpectedHarvest != nil {
		crop.ExpectedHarvest = *req.ExpectedHarvest
	}
	if req.WhenToPluck != nil {
		crop.WhenToPluck = *req.WhenToPluck
	}
	crop.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, crop); err != nil {
		return farm.Crop{}, err
	}
	if req.WhenToPluck != nil {
		s.remindIfDue(ctx, crop)
	}
	return crop, nil
}

// Delete removes a crop. Its sales stay and surface as Unknown in reports.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("deleted crop", slog.String("crop_id", id), slog.String("owner_id", ownerID))
	return nil
}

// List pages through the owner's crops.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) ([]farm.Crop, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit || req.Skip < 0 {
		return nil, fmt.Errorf("limit must be 1-%d and skip non-negative: %w", maxListLimit, shared.ErrValidation)
	}
	return s.repo.List(ctx, farmdb.CropFilter{Filter: farmdb.Filter{OwnerID: ownerID, Limit: limit, Offset: req.Skip}})
}

// DueForHarvest lists unharvested crops whose pluck date falls between today
// and daysAhead days from now. daysAhead 0 means the default week.
func (s *Service) DueForHarvest(ctx context.Context, ownerID string, daysAhead int) ([]farm.Crop, error) {
	if daysAhead == 0 {
		daysAhead = defaultDaysAhead
	}
	if daysAhead < 0 || daysAhead > maxDaysAhead {
		return nil, fmt.Errorf("days must be 1-%d: %w", maxDaysAhead, shared.ErrValidation)
	}
	today := s.today()
	return s.repo.List(ctx, farmdb.CropFilter{
		Filter:       farmdb.Filter{OwnerID: ownerID},
		ExcludeStage: farm.StageHarvested,
		PluckFrom:    today.Time,
		PluckTo:      today.AddDate(0, 0, daysAhead),
	})
}

// Calendar lays out planting and harvest events of one month by day.
func (s *Service) Calendar(ctx context.Context, ownerID string, month, year int) (HarvestCalendar, error) {
	if month < 1 || month > 12 || year < 1 {
		return HarvestCalendar{}, fmt.Errorf("month must be 1-12 and year positive: %w", shared.ErrValidation)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	crops, err := s.repo.List(ctx, farmdb.CropFilter{
		Filter:     farmdb.Filter{OwnerID: ownerID},
		ActiveFrom: first,
		ActiveTo:   last,
	})
	if err != nil {
		return HarvestCalendar{}, err
	}

	cal := HarvestCalendar{Month: month, Year: year, Days: make(map[string][]CalendarEvent)}
	within := func(d farm.Date) bool {
		return !d.IsZero() && !d.Before(first) && !d.After(last)
	}
	for _, crop := range crops {
		if within(crop.StartDate) {
			day := crop.StartDate.String()
			cal.Days[day] = append(cal.Days[day], CalendarEvent{
				EventType:   EventPlanted,
				Description: fmt.Sprintf("Planted %s (%s)", crop.Name, crop.Variety),
				Crop:        crop,
			})
		}
		if within(crop.WhenToPluck) {
			day := crop.WhenToPluck.String()
			cal.Days[day] = append(cal.Days[day], CalendarEvent{
				EventType:   EventHarvest,
				Description: fmt.Sprintf("Harvest %s (%s)", crop.Name, crop.Variety),
				Crop:        crop,
			})
		}
	}
	return cal, nil
}

// remindIfDue queues an immediate reminder when the pluck date is at most
// three days away. Failures are logged only.
func (s *Service) remindIfDue(ctx context.Context, crop farm.Crop) {
	if s.reminders == nil || crop.WhenToPluck.IsZero() || crop.CurrentStage == farm.StageHarvested {
		return
	}
	days := int(farm.DaysBetween(s.today().Time, crop.WhenToPluck.Time))
	if days < 0 || days > immediateReminder {
		return
	}
	if err := s.reminders.EnqueueHarvestReminder(ctx, crop.OwnerID, crop.ID); err != nil {
		s.logger.Warn("enqueue harvest reminder", slog.String("crop_id", crop.ID), slog.Any("error", err))
	}
}
