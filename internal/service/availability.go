package service

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/api"
	"clinic-booking/internal/models"
	"clinic-booking/internal/schedule"
	"clinic-booking/pkg/response"
)

// Slots returns the day view for one partner and date. A closed, blocked or
// fully booked day is an empty or all-unavailable list, never an error.
func (s *Service) Slots(ctx context.Context, partnerID, date string) ([]api.SlotResponse, error) {
	const op = "service.Slots"

	day, err := s.parseDate(op, "date", date)
	if err != nil {
		return nil, err
	}

	if _, err := s.activePartner(ctx, op, partnerID); err != nil {
		return nil, err
	}

	slots, err := s.daySlots(ctx, partnerID, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, toSlotResponse(slot))
	}

	return result, nil
}

func (s *Service) daySlots(ctx context.Context, partnerID string, day time.Time) ([]schedule.Slot, error) {
	templates, err := s.store.ListAvailabilityTemplates(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	dayOffs, err := s.store.ListDayOffs(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list day offs: %w", err)
	}

	if schedule.IsBlocked(dayOffs, day) {
		return []schedule.Slot{}, nil
	}

	bookings, err := s.store.ListActiveBookings(ctx, partnerID, day, day)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return schedule.Day(day, templates, dayOffs, bookings)
}

// Calendar summarizes every day of yearMonth ("2006-01"). Templates, days off
// and bookings are loaded once for the whole month.
func (s *Service) Calendar(ctx context.Context, partnerID, yearMonth string) ([]api.CalendarDay, error) {
	const op = "service.Calendar"

	first, err := time.ParseInLocation("2006-01", yearMonth, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: invalid month", op, response.ErrValidation)
	}
	last := first.AddDate(0, 1, -1)

	if _, err := s.activePartner(ctx, op, partnerID); err != nil {
		return nil, err
	}

	templates, err := s.store.ListAvailabilityTemplates(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: list templates: %w", op, err)
	}

	dayOffs, err := s.store.ListDayOffs(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: list day offs: %w", op, err)
	}

	bookings, err := s.store.ListActiveBookings(ctx, partnerID, first, last)
	if err != nil {
		return nil, fmt.Errorf("%s: list bookings: %w", op, err)
	}

	byDate := make(map[string][]*models.Booking)
	for _, b := range bookings {
		key := b.BookingDate.Format(dateLayout)
		byDate[key] = append(byDate[key], b)
	}

	today := s.today()

	days := make([]api.CalendarDay, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		day := api.CalendarDay{Date: key}

		if schedule.IsBlocked(dayOffs, d) {
			day.IsDayOff = true
			days = append(days, day)
			continue
		}

		slots, err := schedule.Day(d, templates, dayOffs, byDate[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, key, err)
		}

		day.TotalSlotCount = len(slots)
		for _, slot := range slots {
			if slot.Available {
				day.AvailableSlotCount++
			}
		}
		day.IsAvailable = d.After(today) && day.AvailableSlotCount > 0

		days = append(days, day)
	}

	return days, nil
}

func toSlotResponse(slot schedule.Slot) api.SlotResponse {
	return api.SlotResponse{
		Time:            slot.Time,
		Duration:        slot.Duration,
		Available:       slot.Available,
		MaxBookings:     slot.Capacity,
		CurrentBookings: slot.BookedCount,
	}
}
