package schedule

import (
	"testing"
	"time"

	"clinic-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2030-01-07 is a Monday.
var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func mondayMorning() []*models.AvailabilityTemplate {
	return []*models.AvailabilityTemplate{{
		ID:                 "tpl-1",
		PartnerID:          "p1",
		DayOfWeek:          int(time.Monday),
		StartTime:          "09:00",
		EndTime:            "12:00",
		SlotDuration:       30,
		MaxBookingsPerSlot: 1,
	}}
}

func booking(start, end string, status models.BookingStatus) *models.Booking {
	return &models.Booking{ID: start, PartnerID: "p1", StartTime: start, EndTime: end, Status: status}
}

func times(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func TestDay_OpenMonday(t *testing.T) {
	slots, err := Day(monday, mondayMorning(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, times(slots))
	for _, s := range slots {
		assert.True(t, s.Available, s.Time)
		assert.Equal(t, 0, s.BookedCount, s.Time)
		assert.Equal(t, 1, s.Capacity, s.Time)
		assert.Equal(t, 30, s.Duration, s.Time)
	}
}

func TestDay_ConfirmedBookingTakesItsSlot(t *testing.T) {
	bookings := []*models.Booking{booking("09:30", "10:00", models.BookingConfirmed)}

	slots, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	for _, s := range slots {
		if s.Time == "09:30" {
			assert.Equal(t, 1, s.BookedCount)
			assert.False(t, s.Available)
			continue
		}
		assert.True(t, s.Available, s.Time)
		assert.Equal(t, 0, s.BookedCount, s.Time)
	}
}

func TestDay_CancelledBookingIgnored(t *testing.T) {
	bookings := []*models.Booking{booking("09:30", "10:00", models.BookingCancelled)}

	slots, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)
	for _, s := range slots {
		assert.True(t, s.Available, s.Time)
		assert.Zero(t, s.BookedCount, s.Time)
	}
}

func TestDay_LongBookingOccupiesWithoutBucketCount(t *testing.T) {
	// 60 minute booking from 10:00 blocks the 10:30 slot but only counts in 10:00.
	bookings := []*models.Booking{booking("10:00", "11:00", models.BookingPending)}

	slots, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)

	byTime := map[string]Slot{}
	for _, s := range slots {
		byTime[s.Time] = s
	}

	assert.False(t, byTime["10:00"].Available)
	assert.Equal(t, 1, byTime["10:00"].BookedCount)
	assert.False(t, byTime["10:30"].Available)
	assert.Equal(t, 0, byTime["10:30"].BookedCount)
	assert.True(t, byTime["11:00"].Available)
	assert.True(t, byTime["09:30"].Available)
}

func TestDay_WeeklyDayOffBlocksEveryMonday(t *testing.T) {
	wd := int(time.Monday)
	dayOffs := []*models.DayOff{{ID: "d1", PartnerID: "p1", Recurrence: models.DayOffWeekly, DayOfWeek: &wd}}

	for i := 0; i < 4; i++ {
		slots, err := Day(monday.AddDate(0, 0, 7*i), mondayMorning(), dayOffs, nil)
		require.NoError(t, err)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
	}
}

func TestDay_DayOffBlocksSplitShift(t *testing.T) {
	templates := append(mondayMorning(), &models.AvailabilityTemplate{
		ID: "tpl-2", DayOfWeek: int(time.Monday), StartTime: "14:00", EndTime: "16:00", SlotDuration: 60, MaxBookingsPerSlot: 2,
	})
	date := monday
	dayOffs := []*models.DayOff{{ID: "d1", Recurrence: models.DayOffOnce, Date: &date}}

	slots, err := Day(monday, templates, dayOffs, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = Day(monday.AddDate(0, 0, 7), templates, dayOffs, nil)
	require.NoError(t, err)
	assert.Len(t, slots, 8)
}

func TestDay_OtherWeekdayIsClosed(t *testing.T) {
	slots, err := Day(monday.AddDate(0, 0, 1), mondayMorning(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestDay_IsIdempotent(t *testing.T) {
	bookings := []*models.Booking{booking("09:00", "09:30", models.BookingPending)}

	first, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)
	second, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDay_SlotCountInvariant(t *testing.T) {
	bookings := []*models.Booking{
		booking("09:00", "09:30", models.BookingPending),
		booking("10:00", "11:00", models.BookingConfirmed),
	}

	slots, err := Day(monday, mondayMorning(), nil, bookings)
	require.NoError(t, err)

	available, booked := 0, 0
	for _, s := range slots {
		if s.Available {
			available++
		}
		if s.BookedCount > 0 {
			booked++
		}
	}
	assert.LessOrEqual(t, available+booked, len(slots))
}

func TestGenerate_DropsPartialSlot(t *testing.T) {
	templates := []*models.AvailabilityTemplate{{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "10:10", SlotDuration: 30, MaxBookingsPerSlot: 1,
	}}

	slots, err := Generate(templates)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, times(slots))
}

func TestGenerate_OverlappingTemplatesBothEmit(t *testing.T) {
	templates := []*models.AvailabilityTemplate{
		{ID: "a", StartTime: "09:00", EndTime: "10:00", SlotDuration: 30, MaxBookingsPerSlot: 1},
		{ID: "b", StartTime: "09:30", EndTime: "10:30", SlotDuration: 30, MaxBookingsPerSlot: 1},
	}

	slots, err := Generate(templates)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "09:30", "10:00"}, times(slots))
}

func TestGenerate_RejectsBadTemplate(t *testing.T) {
	_, err := Generate([]*models.AvailabilityTemplate{{ID: "x", StartTime: "9am", EndTime: "10:00", SlotDuration: 30}})
	assert.Error(t, err)

	_, err = Generate([]*models.AvailabilityTemplate{{ID: "y", StartTime: "09:00", EndTime: "10:00", SlotDuration: 0}})
	assert.Error(t, err)
}

func TestForDate_OrdersByStart(t *testing.T) {
	templates := []*models.AvailabilityTemplate{
		{ID: "late", DayOfWeek: 1, StartTime: "14:00"},
		{ID: "tue", DayOfWeek: 2, StartTime: "08:00"},
		{ID: "early", DayOfWeek: 1, StartTime: "08:00"},
	}

	got := ForDate(templates, monday)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)
}
