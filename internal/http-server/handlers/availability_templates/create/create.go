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

type AvailabilityTemplateCreator interface {
	CreateAvailabilityTemplate(ctx context.Context, actor service.Actor, req *api.AvailabilityTemplateRequest) (*api.AvailabilityTemplateResponse, error)
}

type Request struct {
	api.AvailabilityTemplateRequest
}

type Response struct {
	response.Response
	Template *api.AvailabilityTemplateResponse `json:"template,omitempty"`
}

func New(log *slog.Logger, creator AvailabilityTemplateCreator) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_templates.create.New"

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

		template, err := creator.CreateAvailabilityTemplate(r.Context(), user.Actor(), &req.AvailabilityTemplateRequest)
		if err != nil {
			log.Error("Failed to create availability template", sl.Err(err))
			response.Fail(w, r, err, "failed to create availability template")
			return
		}

		log.Info("Availability template created", slog.String("id", template.ID))

		w.WriteHeader(http.StatusCreated)
		responseOK(w, r, template)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, template *api.AvailabilityTemplateResponse) {
	render.JSON(w, r, Response{
		Template: template,
	})
}
