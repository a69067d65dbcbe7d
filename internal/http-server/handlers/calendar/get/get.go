package get

import (
	"context"
	"log/slog"
	"net/http"

	"clinic-booking/api"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type CalendarGetter interface {
	Calendar(ctx context.Context, partnerID, yearMonth string) ([]api.CalendarDay, error)
}

type Response struct {
	response.Response
	Month string            `json:"month,omitempty"`
	Days  []api.CalendarDay `json:"days"`
}

func New(log *slog.Logger, getter CalendarGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		partnerID := chi.URLParam(r, "partnerID")
		month := r.URL.Query().Get("month")

		if month == "" {
			log.Error("month is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "month is required"))
			return
		}

		days, err := getter.Calendar(r.Context(), partnerID, month)
		if err != nil {
			log.Error("Failed to build calendar", sl.Err(err))
			response.Fail(w, r, err, "failed to get calendar")
			return
		}

		log.Info("Calendar built", slog.String("partner_id", partnerID), slog.String("month", month))
		render.JSON(w, r, Response{
			Month: month,
			Days:  days,
		})
	}
}
