package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-booking/api"
	"clinic-booking/internal/cache"
	"clinic-booking/internal/lock"
	"clinic-booking/internal/models"
	"clinic-booking/internal/service"
	"clinic-booking/internal/storage/memory"
	"clinic-booking/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday 2030-01-01; the next Monday is 2030-01-07.
var now = time.Date(2030, time.January, 1, 9, 0, 0, 0, time.UTC)

const (
	partnerID = "clinic-1"
	monday    = "2030-01-07"
	tuesday   = "2030-01-08"
)

var (
	staff = service.Actor{UserID: "staff-1", PartnerID: partnerID}
	admin = service.Actor{UserID: "admin", Admin: true}
)

func intPtr(v int) *int { return &v }

type fixture struct {
	svc   *service.Service
	store *memory.Storage
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	store.AddPartner(models.Partner{ID: partnerID, Name: "Clinic One", IsActive: true})
	store.AddPartner(models.Partner{ID: "clinic-2", Name: "Clinic Two", IsActive: true})
	store.AddPartner(models.Partner{ID: "closed", Name: "Closed Clinic", IsActive: false})

	store.AddCategory(models.Category{ID: "checkup", Name: "Checkup", FreeCheckup: true})
	store.AddCategory(models.Category{ID: "dental", Name: "Dental"})

	store.AddService(models.Service{ID: "consult", PartnerID: partnerID, CategoryID: "dental", Name: "Consultation", DurationMinutes: 30, Price: 100, IsActive: true})
	store.AddService(models.Service{ID: "long", PartnerID: partnerID, CategoryID: "dental", Name: "Cleaning", DurationMinutes: 60, Price: 250, IsActive: true})
	store.AddService(models.Service{ID: "free", PartnerID: partnerID, CategoryID: "checkup", Name: "Annual checkup", DurationMinutes: 30, Price: 80, IsActive: true})
	store.AddService(models.Service{ID: "other", PartnerID: "clinic-2", CategoryID: "dental", Name: "Elsewhere", DurationMinutes: 30, Price: 100, IsActive: true})

	svc := service.NewService(store, lock.NewMemoryLock(), cache.NewCategoryCache(time.Minute, time.Minute), service.Options{
		Location: time.UTC,
		LockWait: 2 * time.Second,
		Now:      func() time.Time { return now },
	})

	_, err := svc.CreateAvailabilityTemplate(context.Background(), staff, &api.AvailabilityTemplateRequest{
		PartnerID:          partnerID,
		DayOfWeek:          intPtr(int(time.Monday)),
		StartTime:          "09:00",
		EndTime:            "12:00",
		SlotDuration:       30,
		MaxBookingsPerSlot: 1,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, store: store}
}

func (f *fixture) book(t *testing.T, userID, serviceID, date, start string) (*api.BookingResponse, error) {
	t.Helper()

	return f.svc.CreateBooking(context.Background(), userID, &api.BookingRequest{
		PartnerID: partnerID,
		ServiceID: serviceID,
		Date:      date,
		StartTime: start,
	})
}

func TestSlots_EmptyDay(t *testing.T) {
	f := setup(t)

	slots, err := f.svc.Slots(context.Background(), partnerID, monday)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
		assert.True(t, s.Available)
		assert.Equal(t, 30, s.Duration)
		assert.Equal(t, 1, s.MaxBookings)
		assert.Zero(t, s.CurrentBookings)
	}
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, times)
}

func TestSlots_BookedSlot(t *testing.T) {
	f := setup(t)

	_, err := f.book(t, "user-1", "consult", monday, "09:30")
	require.NoError(t, err)

	slots, err := f.svc.Slots(context.Background(), partnerID, monday)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	for _, s := range slots {
		if s.Time == "09:30" {
			assert.Equal(t, 1, s.CurrentBookings)
			assert.False(t, s.Available)
			continue
		}
		assert.True(t, s.Available, s.Time)
	}
}

func TestSlots_WeeklyDayOff(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateDayOff(context.Background(), staff, &api.DayOffRequest{
		PartnerID:  partnerID,
		Recurrence: string(models.DayOffWeekly),
		DayOfWeek:  intPtr(int(time.Monday)),
	})
	require.NoError(t, err)

	for _, date := range []string{"2030-01-07", "2030-01-14", "2030-03-04"} {
		slots, err := f.svc.Slots(context.Background(), partnerID, date)
		require.NoError(t, err)
		assert.Empty(t, slots, date)
		assert.NotNil(t, slots)
	}

	_, err = f.book(t, "user-1", "consult", monday, "09:00")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
}

func TestSlots_ClosedDayAndBadInput(t *testing.T) {
	f := setup(t)

	slots, err := f.svc.Slots(context.Background(), partnerID, tuesday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.svc.Slots(context.Background(), partnerID, "07/01/2030")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.svc.Slots(context.Background(), "closed", monday)
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.Slots(context.Background(), "missing", monday)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCreateBooking_RejectsTodayAndPast(t *testing.T) {
	f := setup(t)

	for _, date := range []string{"2030-01-01", "2029-12-30"} {
		_, err := f.book(t, "user-1", "consult", date, "09:00")
		assert.ErrorIs(t, err, response.ErrPastDate, date)
		assert.ErrorIs(t, err, response.ErrValidation, date)
	}
}

func TestCreateBooking_ServiceOfAnotherPartner(t *testing.T) {
	f := setup(t)

	_, err := f.book(t, "user-1", "other", monday, "09:00")
	require.ErrorIs(t, err, response.ErrInvalidSvc)
	assert.Equal(t, "invalid service for this partner", response.Message(err))
}

func TestCreateBooking_Validation(t *testing.T) {
	f := setup(t)

	_, err := f.book(t, "", "consult", monday, "09:00")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.book(t, "user-1", "consult", monday, "9am")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.book(t, "user-1", "consult", "2030-02-30", "09:00")
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = f.book(t, "user-1", "missing", monday, "09:00")
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.CreateBooking(context.Background(), "user-1", &api.BookingRequest{
		PartnerID: "closed",
		ServiceID: "consult",
		Date:      monday,
		StartTime: "09:00",
	})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCreateBooking_OffGridStart(t *testing.T) {
	f := setup(t)

	_, err := f.book(t, "user-1", "consult", monday, "09:15")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	_, err = f.book(t, "user-1", "consult", tuesday, "09:00")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
}

func TestCreateBooking_Concurrent(t *testing.T) {
	f := setup(t)

	var (
		wg      sync.WaitGroup
		results = make([]error, 2)
	)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.book(t, "user-"+string(rune('a'+i)), "consult", monday, "10:00")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, response.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	active, err := f.store.ListActiveBookings(context.Background(), partnerID, time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreateBooking_LongServiceBlocksNextSlot(t *testing.T) {
	f := setup(t)

	_, err := f.book(t, "user-1", "long", monday, "10:00")
	require.NoError(t, err)

	_, err = f.book(t, "user-2", "consult", monday, "10:30")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	_, err = f.book(t, "user-2", "consult", monday, "11:00")
	assert.NoError(t, err)

	// 09:30 itself is free, but an hour from there runs into 10:00.
	_, err = f.book(t, "user-3", "long", monday, "09:30")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
}

func TestCreateBooking_CapacityAboveOne(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateAvailabilityTemplate(context.Background(), staff, &api.AvailabilityTemplateRequest{
		PartnerID:          partnerID,
		DayOfWeek:          intPtr(int(time.Tuesday)),
		StartTime:          "14:00",
		EndTime:            "15:00",
		SlotDuration:       30,
		MaxBookingsPerSlot: 2,
	})
	require.NoError(t, err)

	_, err = f.book(t, "user-1", "consult", tuesday, "14:00")
	require.NoError(t, err)
	_, err = f.book(t, "user-2", "consult", tuesday, "14:00")
	require.NoError(t, err)
	_, err = f.book(t, "user-3", "consult", tuesday, "14:00")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	slots, err := f.svc.Slots(context.Background(), partnerID, tuesday)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 2, slots[0].CurrentBookings)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestCreateBooking_OverlappingTemplatesDoNotAddCapacity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateAvailabilityTemplate(ctx, staff, &api.AvailabilityTemplateRequest{
		PartnerID:          partnerID,
		DayOfWeek:          intPtr(int(time.Monday)),
		StartTime:          "09:30",
		EndTime:            "10:30",
		SlotDuration:       30,
		MaxBookingsPerSlot: 1,
	})
	require.NoError(t, err)

	_, err = f.book(t, "user-1", "consult", monday, "09:30")
	require.NoError(t, err)

	slots, err := f.svc.Slots(ctx, partnerID, monday)
	require.NoError(t, err)

	seen := 0
	for _, s := range slots {
		if s.Time == "09:30" {
			seen++
			assert.False(t, s.Available)
			assert.Equal(t, 1, s.CurrentBookings)
		}
	}
	assert.Equal(t, 2, seen)

	_, err = f.book(t, "user-2", "consult", monday, "09:30")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	active, err := f.store.ListActiveBookings(ctx, partnerID, time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreateBooking_DailyLimit(t *testing.T) {
	f := setup(t)
	f.store.AddService(models.Service{ID: "limited", PartnerID: partnerID, CategoryID: "dental", Name: "Whitening", DurationMinutes: 30, Price: 300, IsActive: true, MaxBookingsPerDay: intPtr(1)})

	_, err := f.book(t, "user-1", "limited", monday, "09:00")
	require.NoError(t, err)

	_, err = f.book(t, "user-2", "limited", monday, "10:00")
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = f.book(t, "user-2", "consult", monday, "10:00")
	assert.NoError(t, err)
}

func TestCreateBooking_Reference(t *testing.T) {
	f := setup(t)

	first, err := f.book(t, "user-1", "consult", monday, "09:00")
	require.NoError(t, err)
	second, err := f.book(t, "user-2", "consult", monday, "09:30")
	require.NoError(t, err)

	assert.Equal(t, "BK3001010001", first.Reference)
	assert.Equal(t, "BK3001010002", second.Reference)

	assert.Equal(t, string(models.BookingPending), first.Status)
	assert.Equal(t, string(models.PaymentPending), first.PaymentStatus)
	assert.Equal(t, "09:30", first.EndTime)
	assert.Equal(t, 100.0, first.TotalAmount)
	assert.Equal(t, monday, first.Date)
}

func TestReference(t *testing.T) {
	day := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "BK2403050001", service.Reference(day, 1))
	assert.Equal(t, "BK2403050042", service.Reference(day, 42))
	assert.Equal(t, "BK2403050000", service.Reference(day, 10000))
}

func TestCancelBooking_FreesSlot(t *testing.T) {
	f := setup(t)

	booking, err := f.book(t, "user-1", "consult", monday, "09:00")
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(context.Background(), service.Actor{UserID: "user-2"}, booking.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	cancelled, err := f.svc.CancelBooking(context.Background(), service.Actor{UserID: "user-1"}, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), cancelled.Status)

	_, err = f.svc.CancelBooking(context.Background(), service.Actor{UserID: "user-1"}, booking.ID)
	assert.ErrorIs(t, err, response.ErrInvalidStatus)

	_, err = f.book(t, "user-2", "consult", monday, "09:00")
	assert.NoError(t, err)
}

func TestBookingLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := service.Actor{UserID: "user-1"}

	booking, err := f.book(t, "user-1", "consult", monday, "09:00")
	require.NoError(t, err)

	_, err = f.svc.MarkAttendance(ctx, staff, booking.ID, models.BookingCompleted)
	assert.ErrorIs(t, err, response.ErrInvalidStatus)

	_, err = f.svc.ConfirmBooking(ctx, owner, booking.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	confirmed, err := f.svc.ConfirmBooking(ctx, staff, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingConfirmed), confirmed.Status)

	_, err = f.svc.MarkAttendance(ctx, staff, booking.ID, models.BookingPending)
	assert.ErrorIs(t, err, response.ErrValidation)

	done, err := f.svc.MarkAttendance(ctx, admin, booking.ID, models.BookingNoShow)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingNoShow), done.Status)

	// NO_SHOW still occupies its slot.
	_, err = f.book(t, "user-2", "consult", monday, "09:00")
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)

	_, err = f.svc.CancelBooking(ctx, owner, booking.ID)
	assert.ErrorIs(t, err, response.ErrInvalidStatus)
}

func TestGetBooking_Visibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	booking, err := f.book(t, "user-1", "consult", monday, "09:00")
	require.NoError(t, err)

	got, err := f.svc.GetBooking(ctx, service.Actor{UserID: "user-1"}, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.Reference, got.Reference)

	_, err = f.svc.GetBooking(ctx, staff, booking.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, service.Actor{UserID: "user-2"}, booking.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)

	list, err := f.svc.ListUserBookings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].ID)
}

func TestFreeCheckup(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.Eligibility(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Eligible)
	assert.Nil(t, res.NextEligibleDate)

	_, err = f.svc.CreateBooking(ctx, "user-1", &api.BookingRequest{
		PartnerID:     partnerID,
		ServiceID:     "consult",
		Date:          monday,
		StartTime:     "09:00",
		IsFreeCheckup: true,
	})
	assert.ErrorIs(t, err, response.ErrValidation)

	booking, err := f.svc.CreateBooking(ctx, "user-1", &api.BookingRequest{
		PartnerID:     partnerID,
		ServiceID:     "free",
		Date:          monday,
		StartTime:     "09:00",
		IsFreeCheckup: true,
	})
	require.NoError(t, err)
	assert.True(t, booking.IsFreeCheckup)
	assert.Zero(t, booking.TotalAmount)

	res, err = f.svc.Eligibility(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	require.NotNil(t, res.NextEligibleDate)
	assert.Equal(t, "2031-01-07", *res.NextEligibleDate)

	_, err = f.svc.CreateBooking(ctx, "user-1", &api.BookingRequest{
		PartnerID:     partnerID,
		ServiceID:     "free",
		Date:          "2030-01-14",
		StartTime:     "09:00",
		IsFreeCheckup: true,
	})
	assert.ErrorIs(t, err, response.ErrNotEligible)

	_, err = f.svc.CancelBooking(ctx, service.Actor{UserID: "user-1"}, booking.ID)
	require.NoError(t, err)

	res, err = f.svc.Eligibility(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Eligible)
}

func TestFreeCheckup_WindowIsRolling(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.store.AddBooking(models.Booking{
		PartnerID:     partnerID,
		ServiceID:     "free",
		UserID:        "user-1",
		BookingDate:   time.Date(2029, time.March, 5, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:00",
		EndTime:       "09:30",
		Status:        models.BookingCompleted,
		IsFreeCheckup: true,
	})

	res, err := f.svc.Eligibility(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	require.NotNil(t, res.NextEligibleDate)
	assert.Equal(t, "2030-03-05", *res.NextEligibleDate)

	// 2030-03-04 is a Monday inside the window, 2030-03-11 is past it.
	_, err = f.svc.CreateBooking(ctx, "user-1", &api.BookingRequest{PartnerID: partnerID, ServiceID: "free", Date: "2030-03-04", StartTime: "09:00", IsFreeCheckup: true})
	assert.ErrorIs(t, err, response.ErrNotEligible)

	_, err = f.svc.CreateBooking(ctx, "user-1", &api.BookingRequest{PartnerID: partnerID, ServiceID: "free", Date: "2030-03-11", StartTime: "09:00", IsFreeCheckup: true})
	assert.NoError(t, err)
}

func TestCalendar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateDayOff(ctx, staff, &api.DayOffRequest{
		PartnerID:  partnerID,
		Recurrence: string(models.DayOffOnce),
		Date:       "2030-01-14",
		Reason:     "Training",
	})
	require.NoError(t, err)

	for _, start := range []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"} {
		_, err := f.book(t, "user-1", "consult", "2030-01-21", start)
		require.NoError(t, err)
	}

	days, err := f.svc.Calendar(ctx, partnerID, "2030-01")
	require.NoError(t, err)
	require.Len(t, days, 31)

	byDate := make(map[string]api.CalendarDay, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	assert.Equal(t, api.CalendarDay{Date: "2030-01-07", IsAvailable: true, AvailableSlotCount: 6, TotalSlotCount: 6}, byDate["2030-01-07"])
	assert.Equal(t, api.CalendarDay{Date: "2030-01-14", IsDayOff: true}, byDate["2030-01-14"])
	assert.Equal(t, api.CalendarDay{Date: "2030-01-21", TotalSlotCount: 6}, byDate["2030-01-21"])
	assert.Equal(t, api.CalendarDay{Date: "2030-01-08"}, byDate["2030-01-08"])

	_, err = f.svc.Calendar(ctx, partnerID, "2030-13")
	assert.ErrorIs(t, err, response.ErrValidation)
}

func TestTemplatesAndDayOffs_RequireStaff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	outsider := service.Actor{UserID: "user-1", PartnerID: "clinic-2"}

	req := &api.AvailabilityTemplateRequest{
		PartnerID:          partnerID,
		DayOfWeek:          intPtr(3),
		StartTime:          "13:00",
		EndTime:            "17:00",
		SlotDuration:       60,
		MaxBookingsPerSlot: 1,
	}

	_, err := f.svc.CreateAvailabilityTemplate(ctx, outsider, req)
	assert.ErrorIs(t, err, response.ErrForbidden)

	created, err := f.svc.CreateAvailabilityTemplate(ctx, staff, req)
	require.NoError(t, err)
	assert.Equal(t, "13:00", created.StartTime)

	req.EndTime = "12:00"
	_, err = f.svc.UpdateAvailabilityTemplate(ctx, staff, created.ID, req)
	assert.ErrorIs(t, err, response.ErrValidation)

	req.EndTime = "18:00"
	updated, err := f.svc.UpdateAvailabilityTemplate(ctx, staff, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "18:00", updated.EndTime)

	templates, err := f.svc.ListAvailabilityTemplates(ctx, partnerID)
	require.NoError(t, err)
	assert.Len(t, templates, 2)

	assert.ErrorIs(t, f.svc.DeleteAvailabilityTemplate(ctx, outsider, created.ID), response.ErrForbidden)
	require.NoError(t, f.svc.DeleteAvailabilityTemplate(ctx, staff, created.ID))

	_, err = f.svc.GetAvailabilityTemplate(ctx, created.ID)
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.CreateDayOff(ctx, staff, &api.DayOffRequest{PartnerID: partnerID, Recurrence: string(models.DayOffAnnual), Month: intPtr(2), Day: intPtr(30)})
	assert.ErrorIs(t, err, response.ErrValidation)

	dayOff, err := f.svc.CreateDayOff(ctx, staff, &api.DayOffRequest{PartnerID: partnerID, Recurrence: string(models.DayOffAnnual), Month: intPtr(2), Day: intPtr(29)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteDayOff(ctx, outsider, dayOff.ID), response.ErrForbidden)
	require.NoError(t, f.svc.DeleteDayOff(ctx, admin, dayOff.ID))

	dayOffs, err := f.svc.ListDayOffs(ctx, partnerID)
	require.NoError(t, err)
	assert.Empty(t, dayOffs)
}
