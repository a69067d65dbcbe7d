package main

import (
	"log/slog"
	"net/http"

	"clinic-booking/internal/auth"
	attendanceCreate "clinic-booking/internal/http-server/handlers/attendance/create"
	availCreate "clinic-booking/internal/http-server/handlers/availability_templates/create"
	availDelete "clinic-booking/internal/http-server/handlers/availability_templates/delete"
	availGet "clinic-booking/internal/http-server/handlers/availability_templates/get"
	availUpdate "clinic-booking/internal/http-server/handlers/availability_templates/update"
	bookingCancel "clinic-booking/internal/http-server/handlers/bookings/cancel"
	bookingConfirm "clinic-booking/internal/http-server/handlers/bookings/confirm"
	bookingCreate "clinic-booking/internal/http-server/handlers/bookings/create"
	bookingGet "clinic-booking/internal/http-server/handlers/bookings/get"
	calendarGet "clinic-booking/internal/http-server/handlers/calendar/get"
	dayOffCreate "clinic-booking/internal/http-server/handlers/day_offs/create"
	dayOffDelete "clinic-booking/internal/http-server/handlers/day_offs/delete"
	dayOffGet "clinic-booking/internal/http-server/handlers/day_offs/get"
	eligibilityGet "clinic-booking/internal/http-server/handlers/eligibility/get"
	slotGet "clinic-booking/internal/http-server/handlers/slots/get"
	"clinic-booking/internal/http-server/middleware/ratelimit"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/notify"
	svc "clinic-booking/internal/service"
	"clinic-booking/pkg/middleware/mwLogger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type deps struct {
	service  *svc.Service
	resolver *auth.Resolver
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	notifier notify.Notifier
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func newRouter(log *slog.Logger, d deps) http.Handler {
	service := d.service

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(d.metrics.Middleware)
	router.Use(CORS)

	router.Method(http.MethodGet, "/metrics", d.metrics.Handler())

	// Availability
	router.Get("/partners/{partnerID}/calendar", calendarGet.New(log, service))
	router.Get("/partners/{partnerID}/slots", slotGet.New(log, service))
	router.Get("/partners/{partnerID}/availability_templates", availGet.New(log, service))
	router.Get("/partners/{partnerID}/day_offs", dayOffGet.New(log, service))
	router.Get("/availability_templates/{id}", availGet.New(log, service))
	router.Get("/day_offs/{id}", dayOffGet.New(log, service))

	router.Group(func(r chi.Router) {
		r.Use(d.resolver.Middleware(log))
		r.Use(d.limiter.Middleware)

		// Bookings
		r.Post("/bookings", bookingCreate.New(log, service, d.notifier, d.metrics))
		r.Get("/bookings", bookingGet.New(log, service))
		r.Get("/bookings/{id}", bookingGet.New(log, service))
		r.Put("/bookings/{id}/cancel", bookingCancel.New(log, service))
		r.Post("/bookings/{id}/confirm", bookingConfirm.New(log, service))
		r.Post("/bookings/{id}/attendance", attendanceCreate.New(log, service))

		r.Get("/eligibility/free_checkup", eligibilityGet.New(log, service))

		// Partner schedule management
		r.Post("/availability_templates", availCreate.New(log, service))
		r.Put("/availability_templates/{id}", availUpdate.New(log, service))
		r.Delete("/availability_templates/{id}", availDelete.New(log, service))

		r.Post("/day_offs", dayOffCreate.New(log, service))
		r.Delete("/day_offs/{id}", dayOffDelete.New(log, service))
	})

	return router
}
