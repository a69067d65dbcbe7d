package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/models"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/response"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const dateLayout = "2006-01-02"

const (
	templateColumns = `id, partner_id, day_of_week,
		to_char(start_time, 'HH24:MI') AS start_time,
		to_char(end_time, 'HH24:MI') AS end_time,
		slot_duration, max_bookings_per_slot`

	dayOffColumns = `id, partner_id, recurrence, date, day_of_week, month, day, reason`

	bookingColumns = `id, reference, partner_id, service_id, user_id, booking_date,
		to_char(start_time, 'HH24:MI') AS start_time,
		to_char(end_time, 'HH24:MI') AS end_time,
		status, payment_status, total_amount, is_free_checkup, notes, created_at, updated_at`
)

type Storage struct {
	db *sqlx.DB
}

var _ service.Store = (*Storage)(nil)

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sqlx.Connect("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// mapErr turns driver errors into the service's sentinel errors.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return response.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503", "22P02":
			// foreign key violation, malformed uuid
			return fmt.Errorf("%w: %s", response.ErrNotFound, pqErr.Message)
		case "23505", "23P01":
			return fmt.Errorf("%w: %s", response.ErrSlotNotAvailable, pqErr.Message)
		case "23514":
			return fmt.Errorf("%w: %s", response.ErrValidation, pqErr.Message)
		}
	}

	return err
}

// #### catalog ####

func (s *Storage) GetPartner(ctx context.Context, id string) (*models.Partner, error) {
	const op = "storage.postgres.GetPartner"

	var p models.Partner
	err := s.db.QueryRowxContext(ctx,
		`SELECT id, name, is_active, specializations FROM partners WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.IsActive, pq.Array(&p.Specializations))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &p, nil
}

func (s *Storage) GetService(ctx context.Context, id string) (*models.Service, error) {
	const op = "storage.postgres.GetService"

	var svc models.Service
	err := s.db.GetContext(ctx, &svc, `
		SELECT id, partner_id, COALESCE(category_id::text, '') AS category_id, name,
			duration_minutes, price, is_active, max_bookings_per_day, requires_approval
		FROM services WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &svc, nil
}

func (s *Storage) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	const op = "storage.postgres.GetCategory"

	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT id, name, free_checkup FROM categories WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &c, nil
}

// #### availability templates ####

func (s *Storage) CreateAvailabilityTemplate(ctx context.Context, t *models.AvailabilityTemplate) (string, error) {
	const op = "storage.postgres.CreateAvailabilityTemplate"

	var id string
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO availability_templates
			(partner_id, day_of_week, start_time, end_time, slot_duration, max_bookings_per_slot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		t.PartnerID, t.DayOfWeek, t.StartTime, t.EndTime, t.SlotDuration, t.MaxBookingsPerSlot,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return id, nil
}

func (s *Storage) GetAvailabilityTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error) {
	const op = "storage.postgres.GetAvailabilityTemplate"

	var t models.AvailabilityTemplate
	err := s.db.GetContext(ctx, &t, `SELECT `+templateColumns+` FROM availability_templates WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &t, nil
}

func (s *Storage) ListAvailabilityTemplates(ctx context.Context, partnerID string) ([]*models.AvailabilityTemplate, error) {
	const op = "storage.postgres.ListAvailabilityTemplates"

	templates := []*models.AvailabilityTemplate{}
	err := s.db.SelectContext(ctx, &templates, `
		SELECT `+templateColumns+`
		FROM availability_templates
		WHERE partner_id = $1
		ORDER BY day_of_week, start_time, id`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return templates, nil
}

func (s *Storage) UpdateAvailabilityTemplate(ctx context.Context, t *models.AvailabilityTemplate) error {
	const op = "storage.postgres.UpdateAvailabilityTemplate"

	res, err := s.db.NamedExecContext(ctx, `
		UPDATE availability_templates
		SET day_of_week = :day_of_week,
			start_time = :start_time,
			end_time = :end_time,
			slot_duration = :slot_duration,
			max_bookings_per_slot = :max_bookings_per_slot
		WHERE id = :id`, t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return affected(op, res)
}

func (s *Storage) DeleteAvailabilityTemplate(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAvailabilityTemplate"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return affected(op, res)
}

// #### day offs ####

func (s *Storage) CreateDayOff(ctx context.Context, d *models.DayOff) (string, error) {
	const op = "storage.postgres.CreateDayOff"

	var date *string
	if d.Date != nil {
		v := d.Date.Format(dateLayout)
		date = &v
	}

	var id string
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO day_offs (partner_id, recurrence, date, day_of_week, month, day, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		d.PartnerID, string(d.Recurrence), date, d.DayOfWeek, d.Month, d.Day, d.Reason,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return id, nil
}

func (s *Storage) GetDayOff(ctx context.Context, id string) (*models.DayOff, error) {
	const op = "storage.postgres.GetDayOff"

	var d models.DayOff
	err := s.db.GetContext(ctx, &d, `SELECT `+dayOffColumns+` FROM day_offs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &d, nil
}

func (s *Storage) ListDayOffs(ctx context.Context, partnerID string) ([]*models.DayOff, error) {
	const op = "storage.postgres.ListDayOffs"

	dayOffs := []*models.DayOff{}
	err := s.db.SelectContext(ctx, &dayOffs, `SELECT `+dayOffColumns+` FROM day_offs WHERE partner_id = $1 ORDER BY id`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return dayOffs, nil
}

func (s *Storage) DeleteDayOff(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteDayOff"

	res, err := s.db.ExecContext(ctx, `DELETE FROM day_offs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return affected(op, res)
}

// #### bookings ####

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var b models.Booking
	err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return &b, nil
}

func (s *Storage) ListActiveBookings(ctx context.Context, partnerID string, from, to time.Time) ([]*models.Booking, error) {
	const op = "storage.postgres.ListActiveBookings"

	bookings, err := listActiveBookings(ctx, s.db, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Storage) ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListUserBookings"

	bookings := []*models.Booking{}
	err := s.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date, start_time, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return bookings, nil
}

func (s *Storage) ListFreeCheckups(ctx context.Context, userID string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListFreeCheckups"

	bookings := []*models.Booking{}
	err := s.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1 AND is_free_checkup AND status <> 'CANCELLED'
		ORDER BY booking_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return bookings, nil
}

// UpdateBookingStatus moves a booking to `to` only from one of `from`, in a
// single conditional UPDATE.
func (s *Storage) UpdateBookingStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)`,
		id, string(to), pq.Array(allowed),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, response.ErrInvalidStatus)
}

func listActiveBookings(ctx context.Context, q sqlx.QueryerContext, partnerID string, from, to time.Time) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := sqlx.SelectContext(ctx, q, &bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE partner_id = $1
			AND booking_date BETWEEN $2::date AND $3::date
			AND status <> 'CANCELLED'
		ORDER BY booking_date, start_time, id`,
		partnerID, from.Format(dateLayout), to.Format(dateLayout),
	)
	if err != nil {
		return nil, mapErr(err)
	}

	return bookings, nil
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
