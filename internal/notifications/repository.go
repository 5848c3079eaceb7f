package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	queries *farmdb.Queries
}

// NewRepository constructs a repository.
func NewRepository(db farmdb.DBTX) *Repository {
	return &Repository{queries: farmdb.New(db)}
}

// Create inserts a notification.
func (r *Repository) Create(ctx context.Context, n farm.Notification) error {
	if err := r.queries.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List runs a filtered query.
func (r *Repository) List(ctx context.Context, f farmdb.NotificationFilter) ([]farm.Notification, error) {
	items, err := r.queries.ListNotifications(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// Count counts the rows matching f, ignoring paging.
func (r *Repository) Count(ctx context.Context, f farmdb.NotificationFilter) (int, error) {
	n, err := r.queries.CountNotifications(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// CountUnread counts the owner's unread notifications.
func (r *Repository) CountUnread(ctx context.Context, ownerID string) (int, error) {
	n, err := r.queries.CountUnreadNotifications(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// CategoryStats counts notifications per category.
func (r *Repository) CategoryStats(ctx context.Context, ownerID string) ([]farmdb.NotificationCategoryCount, error) {
	stats, err := r.queries.NotificationCategoryStats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("notification category stats: %w", err)
	}
	return stats, nil
}

// MarkRead flags one notification read.
func (r *Repository) MarkRead(ctx context.Context, ownerID, id string, at time.Time) (farm.Notification, error) {
	n, err := r.queries.MarkNotificationRead(ctx, ownerID, id, at)
	if err != nil {
		return farm.Notification{}, mapErr("mark notification read", err)
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the owner.
func (r *Repository) MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	n, err := r.queries.MarkAllNotificationsRead(ctx, ownerID, at)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

// Delete removes one notification.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	return mapErr("delete notification", r.queries.DeleteNotification(ctx, ownerID, id))
}

// DeleteRead removes the owner's read notifications.
func (r *Repository) DeleteRead(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.queries.DeleteReadNotifications(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	return n, nil
}

// Preferences returns the stored switches, or the defaults when none were saved.
func (r *Repository) Preferences(ctx context.Context, ownerID string) (farm.NotificationPreferences, error) {
	p, err := r.queries.GetNotificationPreferences(ctx, ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return farm.DefaultNotificationPreferences, nil
	}
	if err != nil {
		return farm.NotificationPreferences{}, fmt.Errorf("get notification preferences: %w", err)
	}
	return p, nil
}

// SavePreferences stores the owner's switches.
func (r *Repository) SavePreferences(ctx context.Context, ownerID string, p farm.NotificationPreferences, at time.Time) error {
	if err := r.queries.UpsertNotificationPreferences(ctx, ownerID, p, at); err != nil {
		return fmt.Errorf("save notification preferences: %w", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("notification: %w", shared.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
