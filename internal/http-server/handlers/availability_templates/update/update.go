package update

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
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type AvailabilityTemplateUpdater interface {
	UpdateAvailabilityTemplate(ctx context.Context, actor service.Actor, id string, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error)
}

type Request struct {
	api.AvailabilityTemplateRequest
}

type Response struct {
	response.Response
	Template *api.AvailabilityTemplateResponse `json:"template,omitempty"`
}

func New(log *slog.Logger, updater AvailabilityTemplateUpdater) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_templates.update.New"

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

		template, err := updater.UpdateAvailabilityTemplate(r.Context(), user.Actor(), id, &req.AvailabilityTemplateRequest)
		if err != nil {
			log.Error("Failed to update availability template", sl.Err(err))
			response.Fail(w, r, err, "failed to update availability template")
			return
		}

		log.Info("Availability template updated", slog.String("id", id))
		render.JSON(w, r, Response{
			Template: template,
		})
	}
}
