package delete

import (
	"context"
	"log/slog"
	"net/http"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type DayOffDeleter interface {
	DeleteDayOff(ctx context.Context, actor service.Actor, id string) error
}

func New(log *slog.Logger, deleter DayOffDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day_offs.delete.New"

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
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		if err := deleter.DeleteDayOff(r.Context(), user.Actor(), id); err != nil {
			log.Error("Failed to delete day off", sl.Err(err))
			response.Fail(w, r, err, "failed to delete day off")
			return
		}

		log.Info("Day off deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
