package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/cache"
	"clinic-booking/internal/lock"
	"clinic-booking/internal/models"
	"clinic-booking/pkg/response"
)

const dateLayout = "2006-01-02"

type Service struct {
	store      Store
	locker     lock.Locker
	categories *cache.CategoryCache
	loc        *time.Location
	now        func() time.Time

	lockTTL          time.Duration
	lockWait         time.Duration
	freeWindowMonths int
}

type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	// Catalog, owned by administrative onboarding
	GetPartner(ctx context.Context, id string) (*models.Partner, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)

	// Availability Templates
	CreateAvailabilityTemplate(ctx context.Context, template *models.AvailabilityTemplate) (string, error)
	GetAvailabilityTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error)
	ListAvailabilityTemplates(ctx context.Context, partnerID string) ([]*models.AvailabilityTemplate, error)
	UpdateAvailabilityTemplate(ctx context.Context, template *models.AvailabilityTemplate) error
	DeleteAvailabilityTemplate(ctx context.Context, id string) error

	// Days off
	CreateDayOff(ctx context.Context, dayOff *models.DayOff) (string, error)
	GetDayOff(ctx context.Context, id string) (*models.DayOff, error)
	ListDayOffs(ctx context.Context, partnerID string) ([]*models.DayOff, error)
	DeleteDayOff(ctx context.Context, id string) error

	// Bookings
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListActiveBookings(ctx context.Context, partnerID string, from, to time.Time) ([]*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	ListFreeCheckups(ctx context.Context, userID string) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error
}

// Tx is the write side of a booking commit. Everything done through a Tx is
// visible to readers only after Commit.
type Tx interface {
	// LockPartner serializes commits for one partner until the Tx ends.
	LockPartner(ctx context.Context, partnerID string) error
	ListActiveBookings(ctx context.Context, partnerID string, date time.Time) ([]*models.Booking, error)
	CountBookingsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CreateBooking(ctx context.Context, booking *models.Booking) (string, error)
	Commit() error
	Rollback() error
}

type Options struct {
	Location         *time.Location
	LockTTL          time.Duration
	LockWait         time.Duration
	FreeWindowMonths int
	Now              func() time.Time
}

func NewService(store Store, locker lock.Locker, categories *cache.CategoryCache, opts Options) *Service {
	s := &Service{
		store:            store,
		locker:           locker,
		categories:       categories,
		loc:              opts.Location,
		now:              opts.Now,
		lockTTL:          opts.LockTTL,
		lockWait:         opts.LockWait,
		freeWindowMonths: opts.FreeWindowMonths,
	}

	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 10 * time.Second
	}
	if s.lockWait <= 0 {
		s.lockWait = 2 * time.Second
	}
	if s.freeWindowMonths <= 0 {
		s.freeWindowMonths = 12
	}

	return s
}

// Actor is the authenticated caller. PartnerID is set for partner staff.
type Actor struct {
	UserID    string
	PartnerID string
	Admin     bool
}

func (a Actor) manages(partnerID string) bool {
	return a.Admin || (a.PartnerID != "" && a.PartnerID == partnerID)
}

func (s *Service) today() time.Time {
	return truncateToDate(s.now(), s.loc)
}

func (s *Service) parseDate(op, field, value string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: invalid %s", op, response.ErrValidation, field)
	}

	return d, nil
}

func (s *Service) activePartner(ctx context.Context, op, id string) (*models.Partner, error) {
	partner, err := s.store.GetPartner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !partner.IsActive {
		return nil, fmt.Errorf("%s: partner %s inactive: %w", op, id, response.ErrNotFound)
	}

	return partner, nil
}

// truncateToDate returns midnight of t's calendar day in loc.
func truncateToDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// asDate reads t as a calendar date, ignoring its clock and location. DATE
// columns come back as UTC midnight and must not shift when moved to loc.
func asDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func isNotFound(err error) bool {
	return errors.Is(err, response.ErrNotFound)
}
