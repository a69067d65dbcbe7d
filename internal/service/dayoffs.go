package service

import (
	"context"
	"fmt"

	"clinic-booking/api"
	"clinic-booking/internal/models"
	"clinic-booking/pkg/response"
)

// Days off

func (s *Service) CreateDayOff(ctx context.Context, actor Actor, req *api.DayOffRequest) (*api.DayOffResponse, error) {
	const op = "service.CreateDayOff"

	if !actor.manages(req.PartnerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	dayOff := &models.DayOff{
		PartnerID:  req.PartnerID,
		Recurrence: models.DayOffRecurrence(req.Recurrence),
		Reason:     req.Reason,
	}

	switch dayOff.Recurrence {
	case models.DayOffOnce:
		if req.Date == "" {
			return nil, fmt.Errorf("%s: %w: date is required", op, response.ErrValidation)
		}
		d, err := s.parseDate(op, "date", req.Date)
		if err != nil {
			return nil, err
		}
		dayOff.Date = &d
	case models.DayOffWeekly:
		if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return nil, fmt.Errorf("%s: %w: day_of_week must be 0..6", op, response.ErrValidation)
		}
		dayOff.DayOfWeek = req.DayOfWeek
	case models.DayOffAnnual:
		if req.Month == nil || req.Day == nil || !validMonthDay(*req.Month, *req.Day) {
			return nil, fmt.Errorf("%s: %w: invalid month/day", op, response.ErrValidation)
		}
		dayOff.Month = req.Month
		dayOff.Day = req.Day
	default:
		return nil, fmt.Errorf("%s: %w: invalid recurrence", op, response.ErrValidation)
	}

	if _, err := s.activePartner(ctx, op, req.PartnerID); err != nil {
		return nil, err
	}

	id, err := s.store.CreateDayOff(ctx, dayOff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetDayOff(ctx, id)
}

func (s *Service) GetDayOff(ctx context.Context, id string) (*api.DayOffResponse, error) {
	const op = "service.GetDayOff"

	dayOff, err := s.store.GetDayOff(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toDayOffResponse(dayOff), nil
}

func (s *Service) ListDayOffs(ctx context.Context, partnerID string) ([]*api.DayOffResponse, error) {
	const op = "service.ListDayOffs"

	dayOffs, err := s.store.ListDayOffs(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.DayOffResponse, 0, len(dayOffs))
	for _, d := range dayOffs {
		result = append(result, toDayOffResponse(d))
	}

	return result, nil
}

func (s *Service) DeleteDayOff(ctx context.Context, actor Actor, id string) error {
	const op = "service.DeleteDayOff"

	existing, err := s.store.GetDayOff(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !actor.manages(existing.PartnerID) {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.DeleteDayOff(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// validMonthDay accepts Feb 29 so leap-day closures can be recorded.
func validMonthDay(month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	daysIn := [...]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

	return day <= daysIn[month-1]
}

func toDayOffResponse(d *models.DayOff) *api.DayOffResponse {
	resp := &api.DayOffResponse{
		ID:         d.ID,
		PartnerID:  d.PartnerID,
		Recurrence: string(d.Recurrence),
		DayOfWeek:  d.DayOfWeek,
		Month:      d.Month,
		Day:        d.Day,
		Reason:     d.Reason,
	}
	if d.Date != nil {
		date := d.Date.Format(dateLayout)
		resp.Date = &date
	}

	return resp
}
