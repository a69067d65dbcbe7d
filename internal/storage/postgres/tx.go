package postgres

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/internal/models"
	"clinic-booking/internal/service"

	"github.com/jmoiron/sqlx"
)

type Tx struct {
	tx *sqlx.Tx
}

var _ service.Tx = (*Tx)(nil)

func (s *Storage) BeginTx(ctx context.Context) (service.Tx, error) {
	const op = "storage.postgres.BeginTx"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Tx{tx: tx}, nil
}

// LockPartner takes a row lock on the partner, so concurrent commits for the
// same partner run their conflict check one after another.
func (t *Tx) LockPartner(ctx context.Context, partnerID string) error {
	const op = "storage.postgres.Tx.LockPartner"

	var id string
	if err := t.tx.GetContext(ctx, &id, `SELECT id FROM partners WHERE id = $1 FOR UPDATE`, partnerID); err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (t *Tx) ListActiveBookings(ctx context.Context, partnerID string, date time.Time) ([]*models.Booking, error) {
	const op = "storage.postgres.Tx.ListActiveBookings"

	bookings, err := listActiveBookings(ctx, t.tx, partnerID, date, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (t *Tx) CountBookingsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	const op = "storage.postgres.Tx.CountBookingsCreatedBetween"

	var n int
	err := t.tx.GetContext(ctx, &n, `SELECT count(*) FROM bookings WHERE created_at >= $1 AND created_at < $2`, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return n, nil
}

func (t *Tx) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	const op = "storage.postgres.Tx.CreateBooking"

	var id string
	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (
			reference, partner_id, service_id, user_id, booking_date, start_time, end_time,
			status, payment_status, total_amount, is_free_checkup, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		b.Reference, b.PartnerID, b.ServiceID, b.UserID, b.BookingDate.Format(dateLayout),
		b.StartTime, b.EndTime, string(b.Status), string(b.PaymentStatus), b.TotalAmount,
		b.IsFreeCheckup, b.Notes, b.CreatedAt, b.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return id, nil
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
