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

type DayOffGetter interface {
	GetDayOff(ctx context.Context, id string) (*api.DayOffResponse, error)
	ListDayOffs(ctx context.Context, partnerID string) ([]*api.DayOffResponse, error)
}

type Response struct {
	response.Response
	DayOffs []*api.DayOffResponse `json:"day_offs,omitempty"`
	DayOff  *api.DayOffResponse   `json:"day_off,omitempty"`
}

func New(log *slog.Logger, getter DayOffGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day_offs.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			dayOff, err := getter.GetDayOff(r.Context(), id)
			if err != nil {
				log.Error("Failed to get day off", sl.Err(err))
				response.Fail(w, r, err, "failed to get day off")
				return
			}

			log.Info("Day off retrieved", slog.String("id", id))
			render.JSON(w, r, Response{DayOff: dayOff})
			return
		}

		partnerID := chi.URLParam(r, "partnerID")

		dayOffs, err := getter.ListDayOffs(r.Context(), partnerID)
		if err != nil {
			log.Error("Failed to list days off", sl.Err(err))
			response.Fail(w, r, err, "failed to list days off")
			return
		}

		log.Info("Days off retrieved", slog.String("partner_id", partnerID), slog.Int("count", len(dayOffs)))
		render.JSON(w, r, Response{DayOffs: dayOffs})
	}
}
