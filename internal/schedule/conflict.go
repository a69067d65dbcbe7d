package schedule

import (
	"fmt"

	"clinic-booking/internal/models"
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

// Intervals converts the non-cancelled bookings into intervals.
func Intervals(bookings []*models.Booking) ([]Interval, error) {
	const op = "schedule.Intervals"

	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		start, err := ToMinutes(b.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%s: booking %s: %w", op, b.ID, err)
		}
		end, err := ToMinutes(b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s: booking %s: %w", op, b.ID, err)
		}
		out = append(out, Interval{Start: start, End: end})
	}

	return out, nil
}

// HasOverlap is the full-interval sub-check: true when a booking that does
// not start at candidate.Start overlaps candidate. Bookings sharing the start
// belong to the bucket and are counted by BucketCount. Adjacent intervals do
// not overlap.
func HasOverlap(candidate Interval, booked []Interval) bool {
	for _, b := range booked {
		if b.Start != candidate.Start && candidate.Overlaps(b) {
			return true
		}
	}

	return false
}

// BucketCount is the capacity sub-check: the number of bookings that start
// exactly at start. A longer booking that began earlier is not counted here
// even though HasOverlap sees it.
func BucketCount(start int, booked []Interval) int {
	n := 0
	for _, b := range booked {
		if b.Start == start {
			n++
		}
	}

	return n
}

// Fits reports whether one more booking of candidate can be accepted.
func Fits(candidate Interval, capacity int, booked []Interval) bool {
	return !HasOverlap(candidate, booked) && BucketCount(candidate.Start, booked) < capacity
}

// Detect fills BookedCount and Available on each slot.
func Detect(slots []Slot, bookings []*models.Booking) ([]Slot, error) {
	const op = "schedule.Detect"

	booked, err := Intervals(bookings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range slots {
		start, err := ToMinutes(slots[i].Time)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		candidate := Interval{Start: start, End: start + slots[i].Duration}

		slots[i].BookedCount = BucketCount(start, booked)
		slots[i].Available = Fits(candidate, slots[i].Capacity, booked)
	}

	return slots, nil
}
