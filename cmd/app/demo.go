package main

import (
	"context"

	"clinic-booking/internal/models"
	"clinic-booking/internal/storage/memory"
)

// seedDemo gives a local in-memory run one partner with a weekday schedule.
func seedDemo(s *memory.Storage) {
	s.AddPartner(models.Partner{ID: "demo-clinic", Name: "Demo Clinic", IsActive: true, Specializations: []string{"general"}})
	s.AddCategory(models.Category{ID: "checkup", Name: "Checkup", FreeCheckup: true})
	s.AddService(models.Service{
		ID:              "demo-checkup",
		PartnerID:       "demo-clinic",
		CategoryID:      "checkup",
		Name:            "General checkup",
		DurationMinutes: 30,
		Price:           150000,
		IsActive:        true,
	})

	for day := 1; day <= 5; day++ {
		_, _ = s.CreateAvailabilityTemplate(context.Background(), &models.AvailabilityTemplate{
			PartnerID:          "demo-clinic",
			DayOfWeek:          day,
			StartTime:          "09:00",
			EndTime:            "17:00",
			SlotDuration:       30,
			MaxBookingsPerSlot: 1,
		})
	}
}
