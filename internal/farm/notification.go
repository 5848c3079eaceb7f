package farm

import (
	"strings"
	"time"
)

// ============================================================================
// NOTIFICATION
// ============================================================================

// Notification is one entry of an owner's inbox.
type Notification struct {
	ID        string               `json:"id"`
	OwnerID   string               `json:"userId"`
	Type      NotificationType     `json:"type"`
	Priority  NotificationPriority `json:"priority"`
	Category  NotificationCategory `json:"category"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	CropID    string               `json:"cropId,omitempty"`
	CropName  string               `json:"cropName,omitempty"`
	ActionURL string               `json:"actionUrl,omitempty"`
	IsRead    bool                 `json:"isRead"`
	ReadAt    *time.Time           `json:"readAt"`
	CreatedAt time.Time            `json:"createdAt"`
}

// NotificationPreferences are the per-owner delivery switches.
type NotificationPreferences struct {
	HarvestReminders bool `json:"harvestReminders"`
	DailyUpdates     bool `json:"dailyUpdates"`
	WeeklyReports    bool `json:"weeklyReports"`
}

// DefaultNotificationPreferences apply to owners who never saved any.
var DefaultNotificationPreferences = NotificationPreferences{HarvestReminders: true, DailyUpdates: true, WeeklyReports: true}

// NotificationType is the source of a notification.
type NotificationType string

const (
	NotificationHarvestReminder NotificationType = "harvest_reminder"
	NotificationDailyUpdate     NotificationType = "daily_update"
	NotificationWeeklyReport    NotificationType = "weekly_report"
	NotificationTest            NotificationType = "test"
	NotificationSystem          NotificationType = "system"
	NotificationWeather         NotificationType = "weather"
	NotificationPestAlert       NotificationType = "pest_alert"
)

// ParseNotificationType validates a notification type. Empty input defaults to system.
func ParseNotificationType(raw string) (NotificationType, error) {
	if strings.TrimSpace(raw) == "" {
		return NotificationSystem, nil
	}
	return parseEnum("type", raw, []NotificationType{
		NotificationHarvestReminder, NotificationDailyUpdate, NotificationWeeklyReport,
		NotificationTest, NotificationSystem, NotificationWeather, NotificationPestAlert,
	})
}

// NotificationPriority orders notifications by urgency.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// ParseNotificationPriority validates a priority. Empty input defaults to medium.
func ParseNotificationPriority(raw string) (NotificationPriority, error) {
	if strings.TrimSpace(raw) == "" {
		return PriorityMedium, nil
	}
	return parseEnum("priority", raw, []NotificationPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent})
}

// NotificationCategory groups notifications for inbox statistics.
type NotificationCategory string

const (
	CategoryCropManagement NotificationCategory = "crop_management"
	CategoryHarvest        NotificationCategory = "harvest"
	CategoryWeather        NotificationCategory = "weather"
	CategorySystem         NotificationCategory = "system"
	CategoryMarketing      NotificationCategory = "marketing"
	CategoryFinance        NotificationCategory = "finance"
)

// ParseNotificationCategory validates a category. Empty input defaults to system.
func ParseNotificationCategory(raw string) (NotificationCategory, error) {
	if strings.TrimSpace(raw) == "" {
		return CategorySystem, nil
	}
	return parseEnum("category", raw, []NotificationCategory{
		CategoryCropManagement, CategoryHarvest, CategoryWeather, CategorySystem, CategoryMarketing, CategoryFinance,
	})
}

// ============================================================================
// DISEASE CATALOG
// ============================================================================

// Disease is a read-only reference entry of the disease catalog.
type Disease struct {
	ID                   int      `json:"id"`
	Crop                 string   `json:"crop"`
	CropCategory         string   `json:"cropCategory"`
	Name                 string   `json:"diseaseName"`
	PathogenType         string   `json:"pathogenType"`
	PathogenName         string   `json:"pathogenName"`
	Category             string   `json:"diseaseCategory"`
	Symptoms             string   `json:"symptoms"`
	Severity             string   `json:"severity"`
	MajorStates          []string `json:"majorStates"`
	Season               string   `json:"season"`
	YieldLoss            string   `json:"yieldLoss"`
	ChemicalTreatments   []string `json:"chemicalTreatments"`
	BiologicalTreatments []string `json:"biologicalTreatments"`
	OrganicTreatments    []string `json:"organicTreatments"`
	CulturalPractices    []string `json:"culturalPractices"`
	PreventionMethods    []string `json:"preventionMethods"`
	AffectedPlantParts   []string `json:"affectedPlantParts"`
	EconomicImpact       string   `json:"economicImpact"`
}
