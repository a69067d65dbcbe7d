package schedule

import (
	"fmt"
	"time"

	"clinic-booking/internal/models"
	"clinic-booking/pkg/response"
)

// Slot is a derived, never persisted appointment window.
type Slot struct {
	Time        string
	Duration    int
	Capacity    int
	BookedCount int
	Available   bool
}

// Generate expands templates into whole slots. A trailing partial slot is
// dropped. Overlapping templates each emit their own slots; nothing is merged.
func Generate(templates []*models.AvailabilityTemplate) ([]Slot, error) {
	const op = "schedule.Generate"

	var slots []Slot
	for _, t := range templates {
		start, err := ToMinutes(t.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%s: template %s: %w", op, t.ID, err)
		}
		end, err := ToMinutes(t.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s: template %s: %w", op, t.ID, err)
		}
		if t.SlotDuration <= 0 {
			return nil, fmt.Errorf("%s: template %s: %w: slot duration must be positive", op, t.ID, response.ErrValidation)
		}

		for cur := start; cur+t.SlotDuration <= end; cur += t.SlotDuration {
			slots = append(slots, Slot{
				Time:     ToTimeString(cur),
				Duration: t.SlotDuration,
				Capacity: t.MaxBookingsPerSlot,
			})
		}
	}

	return slots, nil
}

// Day computes the slot view for one date. A matching day off returns no
// slots regardless of the templates.
func Day(date time.Time, templates []*models.AvailabilityTemplate, dayOffs []*models.DayOff, bookings []*models.Booking) ([]Slot, error) {
	const op = "schedule.Day"

	if IsBlocked(dayOffs, date) {
		return []Slot{}, nil
	}

	slots, err := Generate(ForDate(templates, date))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err = Detect(slots, bookings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if slots == nil {
		slots = []Slot{}
	}

	return slots, nil
}
