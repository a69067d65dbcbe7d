package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-booking/api"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/models"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type AttendanceMarker interface {
	MarkAttendance(ctx context.Context, actor service.Actor, id string, status models.BookingStatus) (*api.BookingResponse, error)
}

type Request struct {
	api.AttendanceRequest
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

// New records whether the patient of a confirmed booking showed up.
func New(log *slog.Logger, marker AttendanceMarker) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := auth.UserFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "authentication required"))
			return
		}

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		booking, err := marker.MarkAttendance(r.Context(), user.Actor(), id, models.BookingStatus(req.Status))
		if err != nil {
			log.Error("Failed to mark attendance", sl.Err(err))
			response.Fail(w, r, err, "failed to mark attendance")
			return
		}

		log.Info("Attendance marked", slog.String("id", id), slog.String("status", req.Status))
		render.JSON(w, r, Response{
			Booking: booking,
		})
	}
}
