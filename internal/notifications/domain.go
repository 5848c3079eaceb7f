// Package notifications keeps each owner's notification inbox and delivery
// preferences. Push delivery happens outside this service; reminders and
// manual messages land here first.
package notifications

import (
	"github.com/farmledger/farmledger/internal/farm"
	"github.com/farmledger/farmledger/internal/shared"
)

// CreateRequest is the payload for a manual notification.
type CreateRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,max=2000"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	CropID    string `json:"cropId" validate:"max=100"`
	ActionURL string `json:"actionUrl" validate:"max=500"`
}

// ListRequest filters and pages an inbox. A nil IsRead matches both states.
type ListRequest struct {
	Page     int
	Limit    int
	Type     string
	Category string
	Priority string
	IsRead   *bool
}

// PreferencesUpdate carries the switches to change; nil fields are kept.
type PreferencesUpdate struct {
	HarvestReminders *bool `json:"harvestReminders"`
	DailyUpdates     *bool `json:"dailyUpdates"`
	WeeklyReports    *bool `json:"weeklyReports"`
}

// CategoryCount is the inbox size of one category.
type CategoryCount struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// Stats describes the listed page and the inbox as a whole.
type Stats struct {
	shared.Pagination
	Unread        int                      `json:"unread"`
	HasNext       bool                     `json:"hasNext"`
	HasPrev       bool                     `json:"hasPrev"`
	CategoryStats map[string]CategoryCount `json:"categoryStats"`
}

// ListResult is one page of an inbox.
type ListResult struct {
	Notifications []farm.Notification `json:"notifications"`
	Stats         Stats               `json:"stats"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)
