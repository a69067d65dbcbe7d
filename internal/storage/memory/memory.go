// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"clinic-booking/internal/models"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/response"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Storage struct {
	// txSem admits one booking transaction at a time; mu guards the maps.
	txSem chan struct{}
	mu    sync.RWMutex

	partners   map[string]models.Partner
	services   map[string]models.Service
	categories map[string]models.Category
	templates  map[string]models.AvailabilityTemplate
	dayOffs    map[string]models.DayOff
	bookings   map[string]models.Booking
}

var _ service.Store = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		txSem:      make(chan struct{}, 1),
		partners:   make(map[string]models.Partner),
		services:   make(map[string]models.Service),
		categories: make(map[string]models.Category),
		templates:  make(map[string]models.AvailabilityTemplate),
		dayOffs:    make(map[string]models.DayOff),
		bookings:   make(map[string]models.Booking),
	}
}

func (s *Storage) Close() error {
	return nil
}

// Seeding. Partners, services and categories are onboarded outside the
// booking engine.

func (s *Storage) AddPartner(p models.Partner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners[p.ID] = p
}

func (s *Storage) AddService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Storage) AddCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *Storage) AddBooking(b models.Booking) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.bookings[b.ID] = b
	return b.ID
}

func (s *Storage) GetPartner(_ context.Context, id string) (*models.Partner, error) {
	const op = "storage.memory.GetPartner"

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partners[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &p, nil
}

func (s *Storage) GetService(_ context.Context, id string) (*models.Service, error) {
	const op = "storage.memory.GetService"

	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &svc, nil
}

func (s *Storage) GetCategory(_ context.Context, id string) (*models.Category, error) {
	const op = "storage.memory.GetCategory"

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &c, nil
}

// Availability Templates

func (s *Storage) CreateAvailabilityTemplate(_ context.Context, t *models.AvailabilityTemplate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl := *t
	tpl.ID = uuid.NewString()
	s.templates[tpl.ID] = tpl
	return tpl.ID, nil
}

func (s *Storage) GetAvailabilityTemplate(_ context.Context, id string) (*models.AvailabilityTemplate, error) {
	const op = "storage.memory.GetAvailabilityTemplate"

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &t, nil
}

func (s *Storage) ListAvailabilityTemplates(_ context.Context, partnerID string) ([]*models.AvailabilityTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AvailabilityTemplate, 0)
	for _, t := range s.templates {
		if t.PartnerID == partnerID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Storage) UpdateAvailabilityTemplate(_ context.Context, t *models.AvailabilityTemplate) error {
	const op = "storage.memory.UpdateAvailabilityTemplate"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[t.ID]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	s.templates[t.ID] = *t
	return nil
}

func (s *Storage) DeleteAvailabilityTemplate(_ context.Context, id string) error {
	const op = "storage.memory.DeleteAvailabilityTemplate"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	delete(s.templates, id)
	return nil
}

// Days off

func (s *Storage) CreateDayOff(_ context.Context, d *models.DayOff) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayOff := *d
	dayOff.ID = uuid.NewString()
	s.dayOffs[dayOff.ID] = dayOff
	return dayOff.ID, nil
}

func (s *Storage) GetDayOff(_ context.Context, id string) (*models.DayOff, error) {
	const op = "storage.memory.GetDayOff"

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dayOffs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &d, nil
}

func (s *Storage) ListDayOffs(_ context.Context, partnerID string) ([]*models.DayOff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.DayOff, 0)
	for _, d := range s.dayOffs {
		if d.PartnerID == partnerID {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Storage) DeleteDayOff(_ context.Context, id string) error {
	const op = "storage.memory.DeleteDayOff"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dayOffs[id]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	delete(s.dayOffs, id)
	return nil
}

// Bookings

func (s *Storage) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	const op = "storage.memory.GetBooking"

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &b, nil
}

func (s *Storage) ListActiveBookings(_ context.Context, partnerID string, from, to time.Time) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeBookings(partnerID, from.Format(dateLayout), to.Format(dateLayout)), nil
}

// activeBookings expects mu to be held.
func (s *Storage) activeBookings(partnerID, from, to string) []*models.Booking {
	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		day := b.BookingDate.Format(dateLayout)
		if b.PartnerID != partnerID || !b.Active() || day < from || day > to {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sortBookings(out)
	return out
}

func (s *Storage) ListUserBookings(_ context.Context, userID string) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == userID {
			b := b
			out = append(out, &b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Storage) ListFreeCheckups(_ context.Context, userID string) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == userID && b.IsFreeCheckup && b.Active() {
			b := b
			out = append(out, &b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Storage) UpdateBookingStatus(_ context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error {
	const op = "storage.memory.UpdateBookingStatus"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if !slices.Contains(from, b.Status) {
		return fmt.Errorf("%s: %s -> %s: %w", op, b.Status, to, response.ErrInvalidStatus)
	}

	b.Status = to
	b.UpdatedAt = time.Now()
	s.bookings[id] = b
	return nil
}

func sortBookings(bs []*models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		di, dj := bs[i].BookingDate.Format(dateLayout), bs[j].BookingDate.Format(dateLayout)
		if di != dj {
			return di < dj
		}
		if bs[i].StartTime != bs[j].StartTime {
			return bs[i].StartTime < bs[j].StartTime
		}
		return bs[i].ID < bs[j].ID
	})
}
