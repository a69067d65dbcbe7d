package schedule

import (
	"time"

	"clinic-booking/internal/models"
)

// IsBlocked reports whether any day off covers date. A match blocks the whole
// day, even when the partner works split shifts.
func IsBlocked(dayOffs []*models.DayOff, date time.Time) bool {
	for _, d := range dayOffs {
		if Matches(d, date) {
			return true
		}
	}

	return false
}

func Matches(d *models.DayOff, date time.Time) bool {
	switch d.Recurrence {
	case models.DayOffWeekly:
		return d.DayOfWeek != nil && *d.DayOfWeek == int(date.Weekday())
	case models.DayOffAnnual:
		return d.Month != nil && d.Day != nil &&
			*d.Month == int(date.Month()) && *d.Day == date.Day()
	default:
		if d.Date == nil {
			return false
		}
		y1, m1, d1 := d.Date.Date()
		y2, m2, d2 := date.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
}
