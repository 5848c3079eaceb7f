package farmdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/farmledger/farmledger/internal/farm"
)

const notificationColumns = `id, owner_id, type, priority, category, title, message, crop_id, crop_name, action_url,
	is_read, read_at, created_at`

// NotificationFilter narrows ListNotifications and CountNotifications.
type NotificationFilter struct {
	Filter
	Type     farm.NotificationType
	Category farm.NotificationCategory
	Priority farm.NotificationPriority
	IsRead   *bool
}

// NotificationCategoryCount is the inbox size of one category.
type NotificationCategoryCount struct {
	Category farm.NotificationCategory
	Total    int
	Unread   int
}

func (f NotificationFilter) where() *where {
	w := &where{}
	w.common(f.Filter)
	if f.Type != "" {
		w.add("type = ?", string(f.Type))
	}
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.Priority != "" {
		w.add("priority = ?", string(f.Priority))
	}
	if f.IsRead != nil {
		w.add("is_read = ?", *f.IsRead)
	}
	return w
}

func scanNotification(row pgx.Row) (farm.Notification, error) {
	var n farm.Notification
	err := row.Scan(&n.ID, &n.OwnerID, &n.Type, &n.Priority, &n.Category, &n.Title, &n.Message, &n.CropID,
		&n.CropName, &n.ActionURL, &n.IsRead, &n.ReadAt, &n.CreatedAt)
	return n, err
}

// ListNotifications returns notifications newest first.
func (q *Queries) ListNotifications(ctx context.Context, f NotificationFilter) ([]farm.Notification, error) {
	w := f.where()
	query := `SELECT ` + notificationColumns + ` FROM notifications ` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Filter)
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

// CountNotifications counts the rows ListNotifications would page through.
func (q *Queries) CountNotifications(ctx context.Context, f NotificationFilter) (int, error) {
	w := f.where()
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+w.String(), w.args...).Scan(&n)
	return n, err
}

// CountUnreadNotifications counts the owner's unread notifications.
func (q *Queries) CountUnreadNotifications(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND NOT is_read`, ownerID).Scan(&n)
	return n, err
}

// NotificationCategoryStats counts all and unread notifications per category.
func (q *Queries) NotificationCategoryStats(ctx context.Context, ownerID string) ([]NotificationCategoryCount, error) {
	rows, err := q.db.Query(ctx, `
		SELECT category, COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications WHERE owner_id = $1
		GROUP BY category ORDER BY category`, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (NotificationCategoryCount, error) {
		var c NotificationCategoryCount
		err := row.Scan(&c.Category, &c.Total, &c.Unread)
		return c, err
	})
}

// InsertNotification stores n as given.
func (q *Queries) InsertNotification(ctx context.Context, n farm.Notification) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		n.ID, n.OwnerID, string(n.Type), string(n.Priority), string(n.Category), n.Title, n.Message, n.CropID,
		n.CropName, n.ActionURL, n.IsRead, n.ReadAt, n.CreatedAt)
	return err
}

// MarkNotificationRead flags one notification read. A notification already
// read keeps its original read time.
func (q *Queries) MarkNotificationRead(ctx context.Context, ownerID, id string, at time.Time) (farm.Notification, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+notificationColumns, id, ownerID, at)
	return scanNotification(row)
}

// MarkAllNotificationsRead flags every unread notification of the owner and
// returns how many changed.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE owner_id = $1 AND NOT is_read`, ownerID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteNotification removes one notification.
func (q *Queries) DeleteNotification(ctx context.Context, ownerID, id string) error {
	return affected(q.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

// DeleteReadNotifications removes the owner's read notifications and returns
// how many were deleted.
func (q *Queries) DeleteReadNotifications(ctx context.Context, ownerID string) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM notifications WHERE owner_id = $1 AND is_read`, ownerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetNotificationPreferences returns pgx.ErrNoRows when the owner never saved any.
func (q *Queries) GetNotificationPreferences(ctx context.Context, ownerID string) (farm.NotificationPreferences, error) {
	var p farm.NotificationPreferences
	err := q.db.QueryRow(ctx, `
		SELECT harvest_reminders, daily_updates, weekly_reports
		FROM notification_preferences WHERE owner_id = $1`, ownerID).
		Scan(&p.HarvestReminders, &p.DailyUpdates, &p.WeeklyReports)
	return p, err
}

// UpsertNotificationPreferences stores p for the owner.
func (q *Queries) UpsertNotificationPreferences(ctx context.Context, ownerID string, p farm.NotificationPreferences, at time.Time) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO notification_preferences (owner_id, harvest_reminders, daily_updates, weekly_reports, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE SET
			harvest_reminders = EXCLUDED.harvest_reminders,
			daily_updates = EXCLUDED.daily_updates,
			weekly_reports = EXCLUDED.weekly_reports,
			updated_at = EXCLUDED.updated_at`,
		ownerID, p.HarvestReminders, p.DailyUpdates, p.WeeklyReports, at)
	return err
}
