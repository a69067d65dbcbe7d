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

type AvailabilityTemplateGetter interface {
	GetAvailabilityTemplate(ctx context.Context, id string) (*api.AvailabilityTemplateResponse, error)
	ListAvailabilityTemplates(ctx context.Context, partnerID string) ([]*api.AvailabilityTemplateResponse, error)
}

type Response struct {
	response.Response
	Templates []*api.AvailabilityTemplateResponse `json:"templates,omitempty"`
	Template  *api.AvailabilityTemplateResponse   `json:"template,omitempty"`
}

func New(log *slog.Logger, getter AvailabilityTemplateGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_templates.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			template, err := getter.GetAvailabilityTemplate(r.Context(), id)
			if err != nil {
				log.Error("Failed to get availability template", sl.Err(err))
				response.Fail(w, r, err, "failed to get availability template")
				return
			}

			log.Info("Availability template retrieved", slog.String("id", id))
			render.JSON(w, r, Response{Template: template})
			return
		}

		partnerID := chi.URLParam(r, "partnerID")

		templates, err := getter.ListAvailabilityTemplates(r.Context(), partnerID)
		if err != nil {
			log.Error("Failed to list availability templates", sl.Err(err))
			response.Fail(w, r, err, "failed to list availability templates")
			return
		}

		log.Info("Availability templates retrieved", slog.String("partner_id", partnerID), slog.Int("count", len(templates)))
		render.JSON(w, r, Response{Templates: templates})
	}
}
