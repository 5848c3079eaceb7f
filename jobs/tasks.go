package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskHarvestReminderSweep scans every owner's crops for upcoming harvests.
	TaskHarvestReminderSweep = "crops:harvest_reminders"
	// TaskHarvestReminder notifies the owner of a single crop.
	TaskHarvestReminder = "crops:harvest_reminder"
)

// HarvestSweepPayload configures a sweep. DaysAhead 0 uses the job default.
type HarvestSweepPayload struct {
	DaysAhead int `json:"days_ahead"`
}

// HarvestReminderPayload names the crop to remind about.
type HarvestReminderPayload struct {
	OwnerID string `json:"owner_id"`
	CropID  string `json:"crop_id"`
}

// NewHarvestSweepTask constructs the scheduled sweep task.
func NewHarvestSweepTask(payload HarvestSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHarvestReminderSweep, data), nil
}

// NewHarvestReminderTask constructs a single reminder task.
func NewHarvestReminderTask(payload HarvestReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHarvestReminder, data), nil
}
