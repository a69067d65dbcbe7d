package api

import "time"

// Calendar and slots

type CalendarDay struct {
	Date               string `json:"date"`
	IsAvailable        bool   `json:"isAvailable"`
	IsDayOff           bool   `json:"isDayOff"`
	AvailableSlotCount int    `json:"availableSlotCount"`
	TotalSlotCount     int    `json:"totalSlotCount"`
}

type SlotResponse struct {
	Time            string `json:"time"`
	Duration        int    `json:"duration"`
	Available       bool   `json:"available"`
	MaxBookings     int    `json:"maxBookings"`
	CurrentBookings int    `json:"currentBookings"`
}

// Bookings

type BookingRequest struct {
	PartnerID     string `json:"partner_id" validate:"required"`
	ServiceID     string `json:"service_id" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04"`
	Notes         string `json:"notes,omitempty" validate:"max=1000"`
	IsFreeCheckup bool   `json:"is_free_checkup,omitempty"`
}

type BookingResponse struct {
	ID               string    `json:"id"`
	Reference        string    `json:"reference"`
	PartnerID        string    `json:"partner_id"`
	ServiceID        string    `json:"service_id"`
	UserID           string    `json:"user_id"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	TotalAmount      float64   `json:"total_amount"`
	IsFreeCheckup    bool      `json:"is_free_checkup"`
	RequiresApproval bool      `json:"requires_approval"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type AttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED NO_SHOW"`
}

type EligibilityResponse struct {
	Eligible         bool    `json:"eligible"`
	NextEligibleDate *string `json:"next_eligible_date,omitempty"`
}

// Availability Templates

type AvailabilityTemplateRequest struct {
	PartnerID          string `json:"partner_id" validate:"required"`
	DayOfWeek          *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime          string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime            string `json:"end_time" validate:"required,datetime=15:04"`
	SlotDuration       int    `json:"slot_duration" validate:"required,min=5,max=1440"`
	MaxBookingsPerSlot int    `json:"max_bookings_per_slot" validate:"required,min=1"`
}

type AvailabilityTemplateResponse struct {
	ID                 string `json:"id"`
	PartnerID          string `json:"partner_id"`
	DayOfWeek          int    `json:"day_of_week"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	SlotDuration       int    `json:"slot_duration"`
	MaxBookingsPerSlot int    `json:"max_bookings_per_slot"`
}

// Days off

type DayOffRequest struct {
	PartnerID  string `json:"partner_id" validate:"required"`
	Recurrence string `json:"recurrence" validate:"required,oneof=NONE WEEKLY ANNUAL"`
	Date       string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DayOfWeek  *int   `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	Month      *int   `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Day        *int   `json:"day,omitempty" validate:"omitempty,min=1,max=31"`
	Reason     string `json:"reason,omitempty" validate:"max=255"`
}

type DayOffResponse struct {
	ID         string  `json:"id"`
	PartnerID  string  `json:"partner_id"`
	Recurrence string  `json:"recurrence"`
	Date       *string `json:"date,omitempty"`
	DayOfWeek  *int    `json:"day_of_week,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Day        *int    `json:"day,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}
