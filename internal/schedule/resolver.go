package schedule

import (
	"sort"
	"time"

	"clinic-booking/internal/models"
)

// ForDate keeps the templates that apply to the weekday of date
// (0 = Sunday .. 6 = Saturday), ordered by start time. An empty result means
// the partner is closed that day.
func ForDate(templates []*models.AvailabilityTemplate, date time.Time) []*models.AvailabilityTemplate {
	wd := int(date.Weekday())

	out := make([]*models.AvailabilityTemplate, 0, len(templates))
	for _, t := range templates {
		if t.DayOfWeek == wd {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})

	return out
}
