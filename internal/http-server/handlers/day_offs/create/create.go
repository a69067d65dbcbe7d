package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-booking/api"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type DayOffCreator interface {
	CreateDayOff(ctx context.Context, actor service.Actor, req *api.DayOffRequest) (*api.DayOffResponse, error)
}

type Request struct {
	api.DayOffRequest
}

type Response struct {
	response.Response
	DayOff *api.DayOffResponse `json:"day_off,omitempty"`
}

func New(log *slog.Logger, creator DayOffCreator) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.day_offs.create.New"

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
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		dayOff, err := creator.CreateDayOff(r.Context(), user.Actor(), &req.DayOffRequest)
		if err != nil {
			log.Error("Failed to create day off", sl.Err(err))
			response.Fail(w, r, err, "failed to create day off")
			return
		}

		log.Info("Day off created", slog.String("id", dayOff.ID))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, dayOff)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, dayOff *api.DayOffResponse) {
	render.JSON(w, r, Response{
		DayOff: dayOff,
	})
}
