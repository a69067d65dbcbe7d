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

type SlotGetter interface {
	Slots(ctx context.Context, partnerID, date string) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	Date  string             `json:"date,omitempty"`
	Slots []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, getter SlotGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		partnerID := chi.URLParam(r, "partnerID")
		date := r.URL.Query().Get("date")

		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required"))
			return
		}

		slots, err := getter.Slots(r.Context(), partnerID, date)
		if err != nil {
			log.Error("Failed to get slots", sl.Err(err))
			response.Fail(w, r, err, "failed to get slots")
			return
		}

		log.Info("Slots retrieved", slog.String("partner_id", partnerID), slog.Int("count", len(slots)))
		responseOK(w, r, date, slots)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, date string, slots []api.SlotResponse) {
	render.JSON(w, r, Response{
		Date:  date,
		Slots: slots,
	})
}
