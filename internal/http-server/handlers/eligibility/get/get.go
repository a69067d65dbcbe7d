package get

import (
	"context"
	"log/slog"
	"net/http"

	"clinic-booking/api"
	"clinic-booking/internal/auth"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type EligibilityChecker interface {
	Eligibility(ctx context.Context, userID string) (*api.EligibilityResponse, error)
}

type Response struct {
	response.Response
	*api.EligibilityResponse
}

func New(log *slog.Logger, checker EligibilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.eligibility.get.New"

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

		res, err := checker.Eligibility(r.Context(), user.ID)
		if err != nil {
			log.Error("Failed to check eligibility", sl.Err(err))
			response.Fail(w, r, err, "failed to check eligibility")
			return
		}

		log.Info("Eligibility checked", slog.String("user_id", user.ID), slog.Bool("eligible", res.Eligible))
		render.JSON(w, r, Response{
			EligibilityResponse: res,
		})
	}
}
