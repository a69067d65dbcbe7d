package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"clinic-booking/api"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/metrics"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const notifyTimeout = 30 * time.Second

type BookingCreator interface {
	CreateBooking(ctx context.Context, userID string, req *api.BookingRequest) (*api.BookingResponse, error)
}

type Notifier interface {
	BookingCreated(ctx context.Context, to string, booking *api.BookingResponse) error
}

type Recorder interface {
	Booking(outcome string)
	NotifyFailed()
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, creator BookingCreator, notifier Notifier, rec Recorder) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

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

		if err := user.CanBook(); err != nil {
			log.Warn("User may not book", slog.String("user_id", user.ID), sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), err.Error()))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if err := validate.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("Invalid request", sl.Err(err))
			rec.Booking(metrics.OutcomeInvalid)
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		booking, err := creator.CreateBooking(r.Context(), user.ID, &req.BookingRequest)
		if err != nil {
			rec.Booking(outcome(err))
			log.Error("Failed to create booking", sl.Err(err))
			response.Fail(w, r, err, "failed to create booking")
			return
		}

		rec.Booking(metrics.OutcomeCreated)
		log.Info("Booking created", slog.String("id", booking.ID), slog.String("reference", booking.Reference))

		go notify(context.WithoutCancel(r.Context()), log, notifier, rec, user.Email, booking)

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, booking)
	}
}

// notify runs after the response is written; the booking stands either way.
func notify(ctx context.Context, log *slog.Logger, notifier Notifier, rec Recorder, to string, booking *api.BookingResponse) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := notifier.BookingCreated(ctx, to, booking); err != nil {
		rec.NotifyFailed()
		log.Warn("Failed to send booking confirmation", slog.String("reference", booking.Reference), sl.Err(err))
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, response.ErrLocked):
		return metrics.OutcomeLocked
	case errors.Is(err, response.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, response.ErrValidation), errors.Is(err, response.ErrNotFound), errors.Is(err, response.ErrForbidden):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeFailed
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: booking,
	})
}
