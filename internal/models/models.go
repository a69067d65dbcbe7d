package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type DayOffRecurrence string

const (
	DayOffOnce   DayOffRecurrence = "NONE"
	DayOffWeekly DayOffRecurrence = "WEEKLY"
	DayOffAnnual DayOffRecurrence = "ANNUAL"
)

type Partner struct {
	ID              string   `db:"id"`
	Name            string   `db:"name"`
	IsActive        bool     `db:"is_active"`
	Specializations []string `db:"-"`
}

type Category struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	FreeCheckup bool   `db:"free_checkup"`
}

type Service struct {
	ID                string  `db:"id"`
	PartnerID         string  `db:"partner_id"`
	CategoryID        string  `db:"category_id"`
	Name              string  `db:"name"`
	DurationMinutes   int     `db:"duration_minutes"`
	Price             float64 `db:"price"`
	IsActive          bool    `db:"is_active"`
	MaxBookingsPerDay *int    `db:"max_bookings_per_day"`
	RequiresApproval  bool    `db:"requires_approval"`
}

// AvailabilityTemplate is a weekly opening window. StartTime and EndTime are
// "HH:MM" wall-clock values in the partner's timezone.
type AvailabilityTemplate struct {
	ID                 string `db:"id"`
	PartnerID          string `db:"partner_id"`
	DayOfWeek          int    `db:"day_of_week"`
	StartTime          string `db:"start_time"`
	EndTime            string `db:"end_time"`
	SlotDuration       int    `db:"slot_duration"`
	MaxBookingsPerSlot int    `db:"max_bookings_per_slot"`
}

// DayOff blocks a whole day. A one-off record carries Date; a weekly record
// carries DayOfWeek; an annual record carries Month and Day.
type DayOff struct {
	ID         string           `db:"id"`
	PartnerID  string           `db:"partner_id"`
	Recurrence DayOffRecurrence `db:"recurrence"`
	Date       *time.Time       `db:"date"`
	DayOfWeek  *int             `db:"day_of_week"`
	Month      *int             `db:"month"`
	Day        *int             `db:"day"`
	Reason     string           `db:"reason"`
}

type Booking struct {
	ID            string        `db:"id"`
	Reference     string        `db:"reference"`
	PartnerID     string        `db:"partner_id"`
	ServiceID     string        `db:"service_id"`
	UserID        string        `db:"user_id"`
	BookingDate   time.Time     `db:"booking_date"`
	StartTime     string        `db:"start_time"`
	EndTime       string        `db:"end_time"`
	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	TotalAmount   float64       `db:"total_amount"`
	IsFreeCheckup bool          `db:"is_free_checkup"`
	Notes         string        `db:"notes"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// Active reports whether the booking still holds capacity.
func (b *Booking) Active() bool {
	return b.Status != BookingCancelled
}
