package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// RepositoryPort defines data access methods for the inbox.
type RepositoryPort interface {
	Create(ctx context.Context, n farm.Notification) error
	List(ctx context.Context, f farmdb.NotificationFilter) ([]farm.Notification, error)
	Count(ctx context.Context, f farmdb.NotificationFilter) (int, error)
	CountUnread(ctx context.Context, ownerID string) (int, error)
	CategoryStats(ctx context.Context, ownerID string) ([]farmdb.NotificationCategoryCount, error)
	MarkRead(ctx context.Context, ownerID, id string, at time.Time) (farm.Notification, error)
	MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteRead(ctx context.Context, ownerID string) (int64, error)
	Preferences(ctx context.Context, ownerID string) (farm.NotificationPreferences, error)
	SavePreferences(ctx context.Context, ownerID string, p farm.NotificationPreferences, at time.Time) error
}

// ReminderScheduler queues a harvest reminder for one crop.
type ReminderScheduler interface {
	EnqueueHarvestReminder(ctx context.Context, ownerID, cropID string) error
}

// Service handles inbox business logic.
type Service struct {
	repo      RepositoryPort
	reminders ReminderScheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a Service. reminders may be nil when no queue is
// available; RequestHarvestReminder then fails.
func NewService(repo RepositoryPort, reminders ReminderScheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, reminders: reminders, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// List returns one page of the inbox newest first, with totals for the page
// filter and unread counts for the whole inbox.
func (s *Service) List(ctx context.Context, ownerID string, req ListRequest) (ListResult, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit || req.Page < 0 {
		return ListResult{}, fmt.Errorf("limit must be 1-%d and page positive: %w", maxListLimit, shared.ErrValidation)
	}
	f := farmdb.NotificationFilter{Filter: farmdb.Filter{OwnerID: ownerID}, IsRead: req.IsRead}
	var err error
	if strings.TrimSpace(req.Type) != "" {
		if f.Type, err = farm.ParseNotificationType(req.Type); err != nil {
			return ListResult{}, err
		}
	}
	if strings.TrimSpace(req.Category) != "" {
		if f.Category, err = farm.ParseNotificationCategory(req.Category); err != nil {
			return ListResult{}, err
		}
	}
	if strings.TrimSpace(req.Priority) != "" {
		if f.Priority, err = farm.ParseNotificationPriority(req.Priority); err != nil {
			return ListResult{}, err
		}
	}

	page := shared.NewPagination(req.Page, limit, 0)
	paged := f
	paged.Limit, paged.Offset = page.PerPage, page.Offset()

	var (
		items  []farm.Notification
		total  int
		unread int
		counts []farmdb.NotificationCategoryCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.repo.List(gctx, paged)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		unread, err = s.repo.CountUnread(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.repo.CategoryStats(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}

	if items == nil {
		items = []farm.Notification{}
	}
	page = shared.NewPagination(page.Page, page.PerPage, total)
	byCategory := make(map[string]CategoryCount, len(counts))
	for _, c := range counts {
		byCategory[string(c.Category)] = CategoryCount{Total: c.Total, Unread: c.Unread}
	}
	return ListResult{
		Notifications: items,
		Stats: Stats{
			Pagination:    page,
			Unread:        unread,
			HasNext:       page.Page < page.TotalPages,
			HasPrev:       page.Page > 1,
			CategoryStats: byCategory,
		},
	}, nil
}

// UnreadCount returns how many notifications the owner has not read.
func (s *Service) UnreadCount(ctx context.Context, ownerID string) (int, error) {
	return s.repo.CountUnread(ctx, ownerID)
}

// Create stores a manual notification in the owner's inbox.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (farm.Notification, error) {
	kind, err := farm.ParseNotificationType(req.Type)
	if err != nil {
		return farm.Notification{}, err
	}
	priority, err := farm.ParseNotificationPriority(req.Priority)
	if err != nil {
		return farm.Notification{}, err
	}
	category, err := farm.ParseNotificationCategory(req.Category)
	if err != nil {
		return farm.Notification{}, err
	}
	title, message := strings.TrimSpace(req.Title), strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return farm.Notification{}, fmt.Errorf("title and message are required: %w", shared.ErrValidation)
	}
	n := farm.Notification{
		OwnerID:   ownerID,
		Type:      kind,
		Priority:  priority,
		Category:  category,
		Title:     title,
		Message:   message,
		CropID:    strings.TrimSpace(req.CropID),
		ActionURL: strings.TrimSpace(req.ActionURL),
	}
	return s.store(ctx, n)
}

// SendTest stores a test notification so a client can check its inbox wiring.
func (s *Service) SendTest(ctx context.Context, ownerID string) (farm.Notification, error) {
	return s.store(ctx, farm.Notification{
		OwnerID:  ownerID,
		Type:     farm.NotificationTest,
		Priority: farm.PriorityLow,
		Category: farm.CategorySystem,
		Title:    "Test notification",
		Message:  "Notifications are working.",
	})
}

// Deliver stores n unless the owner switched its type off. It reports whether
// the notification was stored.
func (s *Service) Deliver(ctx context.Context, n farm.Notification) (bool, error) {
	prefs, err := s.repo.Preferences(ctx, n.OwnerID)
	if err != nil {
		return false, err
	}
	if !allows(prefs, n.Type) {
		s.logger.Debug("notification muted",
			slog.String("owner_id", n.OwnerID),
			slog.String("type", string(n.Type)))
		return false, nil
	}
	if _, err := s.store(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// RequestHarvestReminder queues an immediate reminder for one crop. The
// worker drops crops the owner does not have.
func (s *Service) RequestHarvestReminder(ctx context.Context, ownerID, cropID string) error {
	cropID = strings.TrimSpace(cropID)
	if cropID == "" {
		return fmt.Errorf("cropId is required: %w", shared.ErrValidation)
	}
	if s.reminders == nil {
		return fmt.Errorf("harvest reminders are not configured")
	}
	if err := s.reminders.EnqueueHarvestReminder(ctx, ownerID, cropID); err != nil {
		return fmt.Errorf("queue harvest reminder: %w", err)
	}
	return nil
}

// MarkRead flags one notification read.
func (s *Service) MarkRead(ctx context.Context, ownerID, id string) (farm.Notification, error) {
	return s.repo.MarkRead(ctx, ownerID, id, s.now().UTC())
}

// MarkAllRead flags the whole inbox read and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, ownerID, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.logger.Info("marked notifications read", slog.String("owner_id", ownerID), slog.Int64("count", n))
	return n, nil
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// DeleteRead removes every read notification and returns how many went.
func (s *Service) DeleteRead(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.repo.DeleteRead(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("deleted read notifications", slog.String("owner_id", ownerID), slog.Int64("count", n))
	return n, nil
}

// Preferences returns the owner's delivery switches.
func (s *Service) Preferences(ctx context.Context, ownerID string) (farm.NotificationPreferences, error) {
	return s.repo.Preferences(ctx, ownerID)
}

// UpdatePreferences applies the supplied switches over the current ones.
func (s *Service) UpdatePreferences(ctx context.Context, ownerID string, req PreferencesUpdate) (farm.NotificationPreferences, error) {
	prefs, err := s.repo.Preferences(ctx, ownerID)
	if err != nil {
		return farm.NotificationPreferences{}, err
	}
	if req.HarvestReminders != nil {
		prefs.HarvestReminders = *req.HarvestReminders
	}
	if req.DailyUpdates != nil {
		prefs.DailyUpdates = *req.DailyUpdates
	}
	if req.WeeklyReports != nil {
		prefs.WeeklyReports = *req.WeeklyReports
	}
	if err := s.repo.SavePreferences(ctx, ownerID, prefs, s.now().UTC()); err != nil {
		return farm.NotificationPreferences{}, err
	}
	return prefs, nil
}

func (s *Service) store(ctx context.Context, n farm.Notification) (farm.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if n.Type == "" {
		n.Type = farm.NotificationSystem
	}
	if n.Priority == "" {
		n.Priority = farm.PriorityMedium
	}
	if n.Category == "" {
		n.Category = farm.CategorySystem
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return farm.Notification{}, err
	}
	s.logger.Info("stored notification",
		slog.String("notification_id", n.ID),
		slog.String("owner_id", n.OwnerID),
		slog.String("type", string(n.Type)))
	return n, nil
}

// allows maps a notification type to the preference that mutes it. Types
// without a switch are always stored.
func allows(p farm.NotificationPreferences, t farm.NotificationType) bool {
	switch t {
	case farm.NotificationHarvestReminder:
		return p.HarvestReminders
	case farm.NotificationDailyUpdate:
		return p.DailyUpdates
	case farm.NotificationWeeklyReport:
		return p.WeeklyReports
	default:
		return true
	}
}
