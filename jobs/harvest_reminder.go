package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	jobmetrics "github.com/farmledger/farmledger/internal/jobs"
	"github.com/farmledger/farmledger/internal/shared"
)

// DefaultReminderDays is the sweep horizon when none is configured.
const DefaultReminderDays = 3

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CropSource reads crops across owners. *farmdb.Queries satisfies it.
type CropSource interface {
	ListCrops(ctx context.Context, f farmdb.CropFilter) ([]farm.Crop, error)
	GetCrop(ctx context.Context, ownerID, id string) (farm.Crop, error)
}

// HarvestReminderJob notifies owners about crops due for plucking.
type HarvestReminderJob struct {
	Crops     CropSource
	Notifier  Notifier
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	DaysAhead int
	Location  *time.Location
	clock     func() time.Time
}

// NewHarvestReminderJob wires dependencies for the reminder handlers.
func NewHarvestReminderJob(crops CropSource, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics, daysAhead int, loc *time.Location) *HarvestReminderJob {
	if daysAhead <= 0 {
		daysAhead = DefaultReminderDays
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HarvestReminderJob{
		Crops:     crops,
		Notifier:  notifier,
		Logger:    logger,
		Metrics:   metrics,
		DaysAhead: daysAhead,
		Location:  loc,
		clock:     time.Now,
	}
}

// WithClock overrides the job clock for testing.
func (j *HarvestReminderJob) WithClock(fn func() time.Time) {
	if fn != nil {
		j.clock = fn
	}
}

// HandleSweep processes TaskHarvestReminderSweep. Crops already harvested are
// skipped; a failed notification does not stop the sweep.
func (j *HarvestReminderJob) HandleSweep(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Crops == nil {
		return errors.New("harvest reminders: handler not configured")
	}
	var payload HarvestSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	days := payload.DaysAhead
	if days <= 0 {
		days = j.DaysAhead
	}

	tracker := j.metrics().Track(TaskHarvestReminderSweep)
	today := j.today()
	crops, err := j.Crops.ListCrops(ctx, farmdb.CropFilter{
		ExcludeStage: farm.StageHarvested,
		PluckFrom:    today,
		PluckTo:      today.AddDate(0, 0, days),
	})
	if err != nil {
		j.logger().Error("load due crops", slog.Any("error", err))
		return tracker.End(fmt.Errorf("harvest reminders: %w", err))
	}

	sent, failed := 0, 0
	for _, crop := range crops {
		if err := j.notify(ctx, crop, today); err != nil {
			failed++
			j.logger().Warn("notify harvest", slog.String("crop_id", crop.ID), slog.Any("error", err))
			continue
		}
		sent++
	}
	j.metrics().AddReminders("sent", sent)
	j.metrics().AddReminders("failed", failed)
	j.logger().Info("harvest reminder sweep complete",
		slog.Int("due", len(crops)), slog.Int("sent", sent), slog.Int("failed", failed))
	return tracker.End(nil)
}

// HandleReminder processes TaskHarvestReminder for one crop. Missing or
// harvested crops are dropped without retry.
func (j *HarvestReminderJob) HandleReminder(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Crops == nil {
		return errors.New("harvest reminder: handler not configured")
	}
	var payload HarvestReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.CropID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskHarvestReminder)
	crop, err := j.Crops.GetCrop(ctx, payload.OwnerID, payload.CropID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return tracker.End(nil)
		}
		return tracker.End(fmt.Errorf("harvest reminder: %w", err))
	}
	if crop.CurrentStage == farm.StageHarvested || crop.WhenToPluck.IsZero() {
		return tracker.End(nil)
	}
	if err := j.notify(ctx, crop, j.today()); err != nil {
		j.metrics().AddReminders("failed", 1)
		return tracker.End(fmt.Errorf("harvest reminder: %w", err))
	}
	j.metrics().AddReminders("sent", 1)
	return tracker.End(nil)
}

func (j *HarvestReminderJob) notify(ctx context.Context, crop farm.Crop, today time.Time) error {
	if j.Notifier == nil {
		return errors.New("notifier not configured")
	}
	return j.Notifier.Notify(ctx, Reminder{
		OwnerID:     crop.OwnerID,
		CropID:      crop.ID,
		CropName:    crop.Name,
		WhenToPluck: crop.WhenToPluck.Time,
		DaysLeft:    int(math.Round(crop.WhenToPluck.Sub(today).Hours() / 24)),
	})
}

// today is the current calendar day in the job's location, as a UTC midnight
// comparable with stored dates.
func (j *HarvestReminderJob) today() time.Time {
	return farm.NewDate(j.now().In(j.Location)).Time
}

func (j *HarvestReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *HarvestReminderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *HarvestReminderJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
