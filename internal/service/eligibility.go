package service

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/api"
	"clinic-booking/internal/models"
	"clinic-booking/pkg/response"
)

// Eligibility reports whether userID may book a free checkup today. The
// window is rolling: a free checkup on day D blocks every date before
// D + freeWindowMonths, including checkups booked for the future.
func (s *Service) Eligibility(ctx context.Context, userID string) (*api.EligibilityResponse, error) {
	const op = "service.Eligibility"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w: missing user_id", op, response.ErrValidation)
	}

	checkups, err := s.store.ListFreeCheckups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := s.today()

	var next time.Time
	for _, b := range checkups {
		if !b.Active() {
			continue
		}
		until := asDate(b.BookingDate, s.loc).AddDate(0, s.freeWindowMonths, 0)
		if until.After(today) && until.After(next) {
			next = until
		}
	}

	if next.IsZero() {
		return &api.EligibilityResponse{Eligible: true}, nil
	}

	date := next.Format(dateLayout)
	return &api.EligibilityResponse{Eligible: false, NextEligibleDate: &date}, nil
}

// checkFreeCheckup gates a zero-cost booking on day: the service category
// must allow free checkups and no other active free checkup may fall within
// the window on either side of day.
func (s *Service) checkFreeCheckup(ctx context.Context, userID string, svc *models.Service, day time.Time) error {
	free, err := s.categoryAllowsFree(ctx, svc.CategoryID)
	if err != nil {
		return err
	}
	if !free {
		return fmt.Errorf("%w: service is not a free checkup", response.ErrValidation)
	}

	checkups, err := s.store.ListFreeCheckups(ctx, userID)
	if err != nil {
		return fmt.Errorf("list free checkups: %w", err)
	}

	for _, b := range checkups {
		if !b.Active() {
			continue
		}
		other := asDate(b.BookingDate, s.loc)
		if other.AddDate(0, s.freeWindowMonths, 0).After(day) && day.AddDate(0, s.freeWindowMonths, 0).After(other) {
			return response.ErrNotEligible
		}
	}

	return nil
}

func (s *Service) categoryAllowsFree(ctx context.Context, categoryID string) (bool, error) {
	if categoryID == "" {
		return false, nil
	}

	if s.categories != nil {
		if c, ok := s.categories.Get(categoryID); ok {
			return c.FreeCheckup, nil
		}
	}

	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("category: %w", err)
	}

	if s.categories != nil {
		s.categories.Set(c)
	}

	return c.FreeCheckup, nil
}
