// Package schedule turns weekly availability templates, days off and existing
// bookings into the bookable slots of a single calendar date.
package schedule

import (
	"fmt"
	"strconv"

	"clinic-booking/pkg/response"
)

const MinutesPerDay = 24 * 60

// ToMinutes parses an "HH:MM" time of day into minutes since midnight.
func ToMinutes(s string) (int, error) {
	const op = "schedule.ToMinutes"

	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%s: %w: %q", op, response.ErrFormat, s)
	}

	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%s: %w: %q", op, response.ErrFormat, s)
	}

	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%s: %w: %q", op, response.ErrFormat, s)
	}

	return h*60 + m, nil
}

// ToTimeString formats minutes since midnight as "HH:MM". Values outside
// [0, 1440) wrap around the clock, so 1440 is "00:00" and -30 is "23:30".
func ToTimeString(minutes int) string {
	m := minutes % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}

	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
