package memory

import (
	"context"
	"errors"
	"time"

	"clinic-booking/internal/models"
	"clinic-booking/internal/service"

	"github.com/google/uuid"
)

var errTxDone = errors.New("storage.memory: transaction already finished")

// Tx holds the store's transaction slot from BeginTx until Commit or
// Rollback, so at most one booking commit is in flight. Writes are staged and
// become visible together on Commit.
type Tx struct {
	s      *Storage
	staged []models.Booking
	done   bool
}

var _ service.Tx = (*Tx)(nil)

func (s *Storage) BeginTx(ctx context.Context) (service.Tx, error) {
	select {
	case s.txSem <- struct{}{}:
		return &Tx{s: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LockPartner is a no-op: BeginTx already serializes every transaction.
func (t *Tx) LockPartner(_ context.Context, _ string) error {
	if t.done {
		return errTxDone
	}
	return nil
}

func (t *Tx) ListActiveBookings(_ context.Context, partnerID string, date time.Time) ([]*models.Booking, error) {
	if t.done {
		return nil, errTxDone
	}

	day := date.Format(dateLayout)

	t.s.mu.RLock()
	out := t.s.activeBookings(partnerID, day, day)
	t.s.mu.RUnlock()

	for _, b := range t.staged {
		if b.PartnerID == partnerID && b.Active() && b.BookingDate.Format(dateLayout) == day {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (t *Tx) CountBookingsCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	if t.done {
		return 0, errTxDone
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	n := 0
	for _, b := range t.s.bookings {
		if !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			n++
		}
	}
	for _, b := range t.staged {
		if !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (t *Tx) CreateBooking(_ context.Context, b *models.Booking) (string, error) {
	if t.done {
		return "", errTxDone
	}

	booking := *b
	booking.ID = uuid.NewString()
	t.staged = append(t.staged, booking)
	return booking.ID, nil
}

func (t *Tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer func() { <-t.s.txSem }()

	t.s.mu.Lock()
	for _, b := range t.staged {
		t.s.bookings[b.ID] = b
	}
	t.s.mu.Unlock()

	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.staged = nil
	<-t.s.txSem

	return nil
}
