package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-booking/api"
	"clinic-booking/internal/models"
	"clinic-booking/internal/schedule"
	"clinic-booking/pkg/response"
)

const lockPollInterval = 25 * time.Millisecond

// CreateBooking validates and commits a booking for userID. The conflict
// check runs inside the write transaction, after the partner row is locked,
// so it sees every commit that finished before ours.
func (s *Service) CreateBooking(ctx context.Context, userID string, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	if err := requireFields(map[string]string{
		"partner_id": req.PartnerID,
		"user_id":    userID,
		"service_id": req.ServiceID,
		"date":       req.Date,
		"start_time": req.StartTime,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day, err := s.parseDate(op, "date", req.Date)
	if err != nil {
		return nil, err
	}
	if !day.After(s.today()) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrPastDate)
	}

	start, err := schedule.ToMinutes(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	partner, err := s.activePartner(ctx, op, req.PartnerID)
	if err != nil {
		return nil, err
	}

	svc, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: service: %w", op, err)
	}
	if svc.PartnerID != partner.ID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidSvc)
	}
	if !svc.IsActive || svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%s: %w: service is not bookable", op, response.ErrValidation)
	}

	end := start + svc.DurationMinutes
	if end > schedule.MinutesPerDay {
		return nil, fmt.Errorf("%s: %w: service runs past midnight", op, response.ErrValidation)
	}

	if req.IsFreeCheckup {
		if err := s.checkFreeCheckup(ctx, userID, svc, day); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Template slot capacity for the requested start. Days off and closed
	// days have no slots, so they fall out here as unavailable.
	slots, err := s.daySlots(ctx, partner.ID, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	capacity, ok := slotCapacity(slots, req.StartTime)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	lockKey := fmt.Sprintf("booking:%s:%s", partner.ID, day.Format(dateLayout))
	token, err := s.acquire(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = s.locker.Unlock(context.WithoutCancel(ctx), lockKey, token)
	}()

	booking := &models.Booking{
		PartnerID:     partner.ID,
		ServiceID:     svc.ID,
		UserID:        userID,
		BookingDate:   day,
		StartTime:     schedule.ToTimeString(start),
		EndTime:       schedule.ToTimeString(end),
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		TotalAmount:   svc.Price,
		IsFreeCheckup: req.IsFreeCheckup,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if req.IsFreeCheckup {
		booking.TotalAmount = 0
	}

	if err := s.commit(ctx, booking, svc, capacity, schedule.Interval{Start: start, End: end}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponse(booking, svc), nil
}

func (s *Service) commit(ctx context.Context, booking *models.Booking, svc *models.Service, capacity int, candidate schedule.Interval) (err error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.LockPartner(ctx, booking.PartnerID); err != nil {
		return fmt.Errorf("lock partner: %w", err)
	}

	existing, err := tx.ListActiveBookings(ctx, booking.PartnerID, booking.BookingDate)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}

	booked, err := schedule.Intervals(existing)
	if err != nil {
		return err
	}
	if !schedule.Fits(candidate, capacity, booked) {
		return response.ErrSlotNotAvailable
	}

	if svc.MaxBookingsPerDay != nil {
		n := 0
		for _, b := range existing {
			if b.ServiceID == svc.ID {
				n++
			}
		}
		if n >= *svc.MaxBookingsPerDay {
			return fmt.Errorf("%w: daily limit reached for service", response.ErrConflict)
		}
	}

	now := s.now()
	dayStart := truncateToDate(now, s.loc)
	created, err := tx.CountBookingsCreatedBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}

	booking.Reference = Reference(now.In(s.loc), created+1)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	id, err := tx.CreateBooking(ctx, booking)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	booking.ID = id

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Reference builds the human-readable booking number BKyymmddNNNN. seq is a
// best-effort daily counter and is not unique under concurrent commits.
func Reference(t time.Time, seq int) string {
	return fmt.Sprintf("BK%s%04d", t.Format("060102"), seq%10000)
}

// acquire polls the distributed lock until it is granted or lockWait passes.
func (s *Service) acquire(ctx context.Context, key string) (string, error) {
	deadline := time.Now().Add(s.lockWait)

	for {
		token, ok, err := s.locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			return "", fmt.Errorf("lock error: %w", err)
		}
		if ok {
			return token, nil
		}

		if time.Now().After(deadline) {
			return "", response.ErrLocked
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// slotCapacity returns the largest capacity among slots starting at start.
// Overlapping templates may emit the same start more than once; each slot is
// judged on its own capacity, so they are never summed.
func slotCapacity(slots []schedule.Slot, start string) (int, bool) {
	capacity, found := 0, false
	for _, slot := range slots {
		if slot.Time == start {
			capacity = max(capacity, slot.Capacity)
			found = true
		}
	}

	return capacity, found
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"partner_id", "user_id", "service_id", "date", "start_time"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", response.ErrValidation, strings.Join(missing, ", "))
	}

	return nil
}

func (s *Service) GetBooking(ctx context.Context, actor Actor, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if booking.UserID != actor.UserID && !actor.manages(booking.PartnerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return s.bookingResponse(ctx, booking)
}

func (s *Service) ListUserBookings(ctx context.Context, userID string) ([]*api.BookingResponse, error) {
	const op = "service.ListUserBookings"

	bookings, err := s.store.ListUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		result = append(result, toBookingResponse(booking, nil))
	}

	return result, nil
}

// CancelBooking is open to the booking's owner and the partner's staff.
// A cancelled booking frees its slot and any free-checkup eligibility.
func (s *Service) CancelBooking(ctx context.Context, actor Actor, id string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	return s.transition(ctx, op, id, func(b *models.Booking) bool {
		return b.UserID == actor.UserID || actor.manages(b.PartnerID)
	}, []models.BookingStatus{models.BookingPending, models.BookingConfirmed}, models.BookingCancelled)
}

func (s *Service) ConfirmBooking(ctx context.Context, actor Actor, id string) (*api.BookingResponse, error) {
	const op = "service.ConfirmBooking"

	return s.transition(ctx, op, id, func(b *models.Booking) bool {
		return actor.manages(b.PartnerID)
	}, []models.BookingStatus{models.BookingPending}, models.BookingConfirmed)
}

// MarkAttendance closes a confirmed booking as COMPLETED or NO_SHOW.
func (s *Service) MarkAttendance(ctx context.Context, actor Actor, id string, status models.BookingStatus) (*api.BookingResponse, error) {
	const op = "service.MarkAttendance"

	if status != models.BookingCompleted && status != models.BookingNoShow {
		return nil, fmt.Errorf("%s: %w: invalid status", op, response.ErrValidation)
	}

	return s.transition(ctx, op, id, func(b *models.Booking) bool {
		return actor.manages(b.PartnerID)
	}, []models.BookingStatus{models.BookingConfirmed}, status)
}

func (s *Service) transition(ctx context.Context, op, id string, allowed func(*models.Booking) bool, from []models.BookingStatus, to models.BookingStatus) (*api.BookingResponse, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !allowed(booking) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, from, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking, err = s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.bookingResponse(ctx, booking)
}

func (s *Service) bookingResponse(ctx context.Context, booking *models.Booking) (*api.BookingResponse, error) {
	svc, err := s.store.GetService(ctx, booking.ServiceID)
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return nil, err
	}

	return toBookingResponse(booking, svc), nil
}

func toBookingResponse(b *models.Booking, svc *models.Service) *api.BookingResponse {
	resp := &api.BookingResponse{
		ID:            b.ID,
		Reference:     b.Reference,
		PartnerID:     b.PartnerID,
		ServiceID:     b.ServiceID,
		UserID:        b.UserID,
		Date:          b.BookingDate.Format(dateLayout),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalAmount:   b.TotalAmount,
		IsFreeCheckup: b.IsFreeCheckup,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
	if svc != nil {
		resp.RequiresApproval = svc.RequiresApproval
	}

	return resp
}
