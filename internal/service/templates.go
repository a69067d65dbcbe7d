package service

import (
	"context"
	"fmt"

	"clinic-booking/api"
	"clinic-booking/internal/models"
	"clinic-booking/internal/schedule"
	"clinic-booking/pkg/response"
)

// Availability Templates

func (s *Service) CreateAvailabilityTemplate(ctx context.Context, actor Actor, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.CreateAvailabilityTemplate"

	if !actor.manages(req.PartnerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	template, err := templateFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.activePartner(ctx, op, req.PartnerID); err != nil {
		return nil, err
	}

	id, err := s.store.CreateAvailabilityTemplate(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityTemplate(ctx, id)
}

func (s *Service) GetAvailabilityTemplate(ctx context.Context, id string) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.GetAvailabilityTemplate"

	template, err := s.store.GetAvailabilityTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toTemplateResponse(template), nil
}

func (s *Service) ListAvailabilityTemplates(ctx context.Context, partnerID string) ([]*api.AvailabilityTemplateResponse, error) {
	const op = "service.ListAvailabilityTemplates"

	templates, err := s.store.ListAvailabilityTemplates(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.AvailabilityTemplateResponse, 0, len(templates))
	for _, template := range templates {
		result = append(result, toTemplateResponse(template))
	}

	return result, nil
}

func (s *Service) UpdateAvailabilityTemplate(ctx context.Context, actor Actor, id string, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error) {
	const op = "service.UpdateAvailabilityTemplate"

	existing, err := s.store.GetAvailabilityTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.manages(existing.PartnerID) || existing.PartnerID != req.PartnerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	template, err := templateFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	template.ID = id

	if err := s.store.UpdateAvailabilityTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityTemplate(ctx, id)
}

func (s *Service) DeleteAvailabilityTemplate(ctx context.Context, actor Actor, id string) error {
	const op = "service.DeleteAvailabilityTemplate"

	existing, err := s.store.GetAvailabilityTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !actor.manages(existing.PartnerID) {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.DeleteAvailabilityTemplate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func templateFromRequest(req *api.AvailabilityTemplateRequest) (*models.AvailabilityTemplate, error) {
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week must be 0..6", response.ErrValidation)
	}

	start, err := schedule.ToMinutes(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := schedule.ToMinutes(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start_time must be before end_time", response.ErrValidation)
	}
	if req.SlotDuration <= 0 {
		return nil, fmt.Errorf("%w: slot_duration must be positive", response.ErrValidation)
	}
	if req.MaxBookingsPerSlot < 1 {
		return nil, fmt.Errorf("%w: max_bookings_per_slot must be at least 1", response.ErrValidation)
	}

	return &models.AvailabilityTemplate{
		PartnerID:          req.PartnerID,
		DayOfWeek:          *req.DayOfWeek,
		StartTime:          schedule.ToTimeString(start),
		EndTime:            schedule.ToTimeString(end),
		SlotDuration:       req.SlotDuration,
		MaxBookingsPerSlot: req.MaxBookingsPerSlot,
	}, nil
}

func toTemplateResponse(t *models.AvailabilityTemplate) *api.AvailabilityTemplateResponse {
	return &api.AvailabilityTemplateResponse{
		ID:                 t.ID,
		PartnerID:          t.PartnerID,
		DayOfWeek:          t.DayOfWeek,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		SlotDuration:       t.SlotDuration,
		MaxBookingsPerSlot: t.MaxBookingsPerSlot,
	}
}
