package analytics

import (
	"encoding/json"
	"strings"
	"time"
)

// Preset names accepted by ResolveRange.
const (
	PresetToday       = "today"
	PresetYesterday   = "yesterday"
	PresetThisWeek    = "thisWeek"
	PresetLastWeek    = "lastWeek"
	PresetThisMonth   = "thisMonth"
	PresetLastMonth   = "lastMonth"
	PresetThisQuarter = "thisQuarter"
	PresetThisYear    = "thisYear"
	PresetLastYear    = "lastYear"
)

const endOfDay = 24*time.Hour - time.Millisecond

var explicitLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// RangeInput is the raw date filter taken from a request.
type RangeInput struct {
	Preset    string
	StartDate string
	EndDate   string
}

// IsZero reports whether no filter was supplied.
func (in RangeInput) IsZero() bool {
	return strings.TrimSpace(in.Preset) == "" && strings.TrimSpace(in.StartDate) == "" && strings.TrimSpace(in.EndDate) == ""
}

// DateRange is an inclusive [Start, End] interval. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

type dateRangeJSON struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// MarshalJSON leaves open bounds out of the document.
func (r DateRange) MarshalJSON() ([]byte, error) {
	var out dateRangeJSON
	if !r.Start.IsZero() {
		out.Start = &r.Start
	}
	if !r.End.IsZero() {
		out.End = &r.End
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the form written by MarshalJSON.
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var in dateRangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = DateRange{}
	if in.Start != nil {
		r.Start = *in.Start
	}
	if in.End != nil {
		r.End = *in.End
	}
	return nil
}

// Contains reports whether t lies inside the range. A nil range contains
// everything.
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// ResolveRange turns a preset or explicit dates into a concrete range relative
// to now. A preset takes precedence over explicit dates. It returns nil when no
// filter was supplied.
func ResolveRange(in RangeInput, now time.Time) (*DateRange, error) {
	if preset := strings.TrimSpace(in.Preset); preset != "" {
		return resolvePreset(preset, now)
	}
	if in.IsZero() {
		return nil, nil
	}
	var r DateRange
	if raw := strings.TrimSpace(in.StartDate); raw != "" {
		t, ok := parseExplicit(raw, now.Location())
		if !ok {
			return nil, invalidDate("startDate", raw)
		}
		r.Start = startOfDay(t)
	}
	if raw := strings.TrimSpace(in.EndDate); raw != "" {
		t, ok := parseExplicit(raw, now.Location())
		if !ok {
			return nil, invalidDate("endDate", raw)
		}
		r.End = startOfDay(t).Add(endOfDay)
	}
	return &r, nil
}

func resolvePreset(preset string, now time.Time) (*DateRange, error) {
	today := startOfDay(now)
	switch preset {
	case PresetToday:
		return dayRange(today, today), nil
	case PresetYesterday:
		y := today.AddDate(0, 0, -1)
		return dayRange(y, y), nil
	case PresetThisWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return dayRange(start, start.AddDate(0, 0, 6)), nil
	case PresetLastWeek:
		start := today.AddDate(0, 0, -int(today.Weekday())-7)
		return dayRange(start, start.AddDate(0, 0, 6)), nil
	case PresetThisMonth:
		start := monthStart(today.Year(), today.Month(), today.Location())
		return dayRange(start, start.AddDate(0, 1, -1)), nil
	case PresetLastMonth:
		start := monthStart(today.Year(), today.Month(), today.Location()).AddDate(0, -1, 0)
		return dayRange(start, start.AddDate(0, 1, -1)), nil
	case PresetThisQuarter:
		first := time.Month((int(today.Month())-1)/3*3 + 1)
		start := monthStart(today.Year(), first, today.Location())
		return dayRange(start, start.AddDate(0, 3, -1)), nil
	case PresetThisYear:
		start := monthStart(today.Year(), time.January, today.Location())
		return dayRange(start, start.AddDate(1, 0, -1)), nil
	case PresetLastYear:
		start := monthStart(today.Year()-1, time.January, today.Location())
		return dayRange(start, start.AddDate(1, 0, -1)), nil
	default:
		return nil, &Error{Kind: KindInvalidDateFormat, Field: "preset", Message: "unknown preset " + preset}
	}
}

// parseExplicit keeps the calendar day as written. An offset carried by an
// RFC 3339 value does not shift the day into loc.
func parseExplicit(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range explicitLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
		}
	}
	return time.Time{}, false
}

func dayRange(first, last time.Time) *DateRange {
	return &DateRange{Start: first, End: last.Add(endOfDay)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthStart(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}
