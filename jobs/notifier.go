package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/farmledger/farmledger/internal/farm"
)

// Reminder tells an owner that a crop is close to its pluck date.
type Reminder struct {
	OwnerID     string
	CropID      string
	CropName    string
	WhenToPluck time.Time
	DaysLeft    int
}

// Notifier delivers reminders. Push delivery lives outside this service;
// InboxNotifier stores them for the owner.
type Notifier interface {
	Notify(ctx context.Context, reminder Reminder) error
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, reminder Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "harvest reminder",
		slog.String("owner_id", reminder.OwnerID),
		slog.String("crop_id", reminder.CropID),
		slog.String("crop", reminder.CropName),
		slog.String("when_to_pluck", reminder.WhenToPluck.Format("2006-01-02")),
		slog.Int("days_left", reminder.DaysLeft))
	return nil
}

// Inbox stores notifications subject to the owner's preferences.
// *notifications.Service satisfies it.
type Inbox interface {
	Deliver(ctx context.Context, n farm.Notification) (bool, error)
}

// InboxNotifier writes reminders into the owner's notification inbox.
type InboxNotifier struct {
	Inbox  Inbox
	Logger *slog.Logger
}

// Notify implements Notifier. A reminder muted by the owner's preferences is
// not an error.
func (n InboxNotifier) Notify(ctx context.Context, reminder Reminder) error {
	if n.Inbox == nil {
		return errors.New("inbox not configured")
	}
	stored, err := n.Inbox.Deliver(ctx, ReminderNotification(reminder))
	if err != nil {
		return err
	}
	if !stored && n.Logger != nil {
		n.Logger.DebugContext(ctx, "harvest reminder muted",
			slog.String("owner_id", reminder.OwnerID),
			slog.String("crop_id", reminder.CropID))
	}
	return nil
}

// ReminderNotification renders a reminder as an inbox entry. Crops due within
// a day are high priority.
func ReminderNotification(r Reminder) farm.Notification {
	when := r.WhenToPluck.Format("2006-01-02")
	var message string
	switch {
	case r.DaysLeft <= 0:
		message = fmt.Sprintf("%s is ready to pluck today (%s).", r.CropName, when)
	case r.DaysLeft == 1:
		message = fmt.Sprintf("%s is ready to pluck tomorrow (%s).", r.CropName, when)
	default:
		message = fmt.Sprintf("%s is ready to pluck in %d days (%s).", r.CropName, r.DaysLeft, when)
	}
	priority := farm.PriorityMedium
	if r.DaysLeft <= 1 {
		priority = farm.PriorityHigh
	}
	return farm.Notification{
		OwnerID:   r.OwnerID,
		Type:      farm.NotificationHarvestReminder,
		Priority:  priority,
		Category:  farm.CategoryHarvest,
		Title:     "Harvest reminder: " + r.CropName,
		Message:   message,
		CropID:    r.CropID,
		CropName:  r.CropName,
		ActionURL: "/crops/" + r.CropID,
	}
}

// MultiNotifier hands each reminder to every notifier in turn and joins their
// errors.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, reminder Reminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, reminder); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
