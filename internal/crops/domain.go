// Package crops manages the crop lifecycle: registration, stage updates,
// harvest lookahead and the monthly harvest calendar.
package crops

import (
	"github.com/farmledger/farmledger/internal/farm"
)

// CreateCropRequest is the payload for registering a crop. Progress is
// derived from CurrentStage and cannot be supplied.
type CreateCropRequest struct {
	Name            string    `json:"name" validate:"required,max=120"`
	Type            string    `json:"type" validate:"required"`
	Variety         string    `json:"variety" validate:"max=120"`
	FieldSize       string    `json:"fieldSize" validate:"max=60"`
	Location        string    `json:"location" validate:"max=200"`
	Notes           string    `json:"notes" validate:"max=2000"`
	CurrentStage    string    `json:"currentStage"`
	StartDate       farm.Date `json:"startDate"`
	ExpectedHarvest farm.Date `json:"expectedHarvest"`
	WhenToPluck     farm.Date `json:"whenToPluck"`
}

// UpdateCropRequest carries the fields to change; nil fields are kept.
type UpdateCropRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Type            *string    `json:"type,omitempty"`
	Variety         *string    `json:"variety,omitempty" validate:"omitempty,max=120"`
	FieldSize       *string    `json:"fieldSize,omitempty" validate:"omitempty,max=60"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CurrentStage    *string    `json:"currentStage,omitempty"`
	StartDate       *farm.Date `json:"startDate,omitempty"`
	ExpectedHarvest *farm.Date `json:"expectedHarvest,omitempty"`
	WhenToPluck     *farm.Date `json:"whenToPluck,omitempty"`
}

// ListRequest pages through an owner's crops, newest first.
type ListRequest struct {
	Limit int
	Skip  int
}

// Calendar event kinds.
const (
	EventPlanted = "planted"
	EventHarvest = "harvest"
)

// CalendarEvent places a crop on a calendar day.
type CalendarEvent struct {
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	Crop        farm.Crop `json:"crop"`
}

// HarvestCalendar maps YYYY-MM-DD to the events of that day.
type HarvestCalendar struct {
	Month int                        `json:"month"`
	Year  int                        `json:"year"`
	Days  map[string][]CalendarEvent `json:"days"`
}
