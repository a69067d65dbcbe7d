package get

import (
	"context"
	"log/slog"
	"net/http"

	"clinic-booking/api"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, actor service.Actor, id string) (*api.BookingResponse, error)
	ListUserBookings(ctx context.Context, userID string) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings,omitempty"`
	Booking  *api.BookingResponse   `json:"booking,omitempty"`
}

// New serves GET /bookings/{id} and, without an id, the caller's own bookings.
func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

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

		if id != "" {
			booking, err := getter.GetBooking(r.Context(), user.Actor(), id)
			if err != nil {
				log.Error("Failed to get booking", sl.Err(err))
				response.Fail(w, r, err, "failed to get booking")
				return
			}

			log.Info("Booking retrieved", slog.String("id", id))
			responseOK(w, r, booking)
			return
		}

		bookings, err := getter.ListUserBookings(r.Context(), user.ID)
		if err != nil {
			log.Error("Failed to list bookings", sl.Err(err))
			response.Fail(w, r, err, "failed to list bookings")
			return
		}

		log.Info("Bookings retrieved", slog.Int("count", len(bookings)))
		render.JSON(w, r, Response{
			Bookings: bookings,
		})
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: booking,
	})
}
