package analytics

import "time"

// Season is an agricultural season.
type Season string

const (
	Kharif Season = "Kharif"
	Rabi   Season = "Rabi"
	Zaid   Season = "Zaid"
)

// Seasons lists seasons in reporting order.
var Seasons = []Season{Kharif, Rabi, Zaid}

// SeasonOf maps t to its season and season-year. Rabi runs Nov 1 to Apr 30,
// so January to April belong to the previous season-year.
func SeasonOf(t time.Time) (Season, int) {
	switch m := t.Month(); {
	case m >= time.June && m <= time.October:
		return Kharif, t.Year()
	case m >= time.November:
		return Rabi, t.Year()
	case m <= time.April:
		return Rabi, t.Year() - 1
	default:
		return Zaid, t.Year()
	}
}

// SeasonBounds returns the inclusive span of season in seasonYear, in loc.
func SeasonBounds(season Season, seasonYear int, loc *time.Location) (time.Time, time.Time) {
	var start, next time.Time
	switch season {
	case Kharif:
		start = time.Date(seasonYear, time.June, 1, 0, 0, 0, 0, loc)
		next = time.Date(seasonYear, time.November, 1, 0, 0, 0, 0, loc)
	case Rabi:
		start = time.Date(seasonYear, time.November, 1, 0, 0, 0, 0, loc)
		next = time.Date(seasonYear+1, time.May, 1, 0, 0, 0, 0, loc)
	default:
		start = time.Date(seasonYear, time.May, 1, 0, 0, 0, 0, loc)
		next = time.Date(seasonYear, time.June, 1, 0, 0, 0, 0, loc)
	}
	return start, next.Add(-time.Millisecond)
}
