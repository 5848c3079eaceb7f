package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmledger/farmledger/internal/farm"
)

type fakeInbox struct {
	delivered []farm.Notification
	muted     bool
	err       error
}

func (f *fakeInbox) Deliver(ctx context.Context, n farm.Notification) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.muted {
		return false, nil
	}
	f.delivered = append(f.delivered, n)
	return true, nil
}

func reminder(daysLeft int) Reminder {
	return Reminder{
		OwnerID:     "u1",
		CropID:      "c1",
		CropName:    "Tomato",
		WhenToPluck: time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		DaysLeft:    daysLeft,
	}
}

func TestInboxNotifierStoresReminder(t *testing.T) {
	inbox := &fakeInbox{}
	require.NoError(t, InboxNotifier{Inbox: inbox}.Notify(context.Background(), reminder(2)))

	require.Len(t, inbox.delivered, 1)
	n := inbox.delivered[0]
	assert.Equal(t, "u1", n.OwnerID)
	assert.Equal(t, farm.NotificationHarvestReminder, n.Type)
	assert.Equal(t, farm.CategoryHarvest, n.Category)
	assert.Equal(t, farm.PriorityMedium, n.Priority)
	assert.Equal(t, "Harvest reminder: Tomato", n.Title)
	assert.Equal(t, "Tomato is ready to pluck in 2 days (2024-03-17).", n.Message)
	assert.Equal(t, "c1", n.CropID)
}

func TestInboxNotifierMutedIsNotAnError(t *testing.T) {
	inbox := &fakeInbox{muted: true}
	assert.NoError(t, InboxNotifier{Inbox: inbox}.Notify(context.Background(), reminder(1)))
	assert.Empty(t, inbox.delivered)
}

func TestInboxNotifierPropagatesStoreError(t *testing.T) {
	err := InboxNotifier{Inbox: &fakeInbox{err: errors.New("db down")}}.Notify(context.Background(), reminder(1))
	assert.EqualError(t, err, "db down")
	assert.Error(t, InboxNotifier{}.Notify(context.Background(), reminder(1)))
}

func TestReminderNotificationWording(t *testing.T) {
	today := ReminderNotification(reminder(0))
	assert.Equal(t, "Tomato is ready to pluck today (2024-03-17).", today.Message)
	assert.Equal(t, farm.PriorityHigh, today.Priority)

	tomorrow := ReminderNotification(reminder(1))
	assert.Equal(t, "Tomato is ready to pluck tomorrow (2024-03-17).", tomorrow.Message)
	assert.Equal(t, farm.PriorityHigh, tomorrow.Priority)
}

func TestMultiNotifierReachesEveryNotifier(t *testing.T) {
	first := &recordingNotifier{failFor: "c1"}
	second := &recordingNotifier{}
	err := MultiNotifier{first, second}.Notify(context.Background(), reminder(2))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "push rejected")
	assert.Empty(t, first.reminders)
	assert.Len(t, second.reminders, 1)
}
