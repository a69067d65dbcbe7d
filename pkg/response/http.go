package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// Classify maps a service error to its HTTP status and error code.
func Classify(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, ErrNotEligible):
		return http.StatusBadRequest, NOT_ELIGIBLE
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, VALIDATION_FAILED
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, NOT_FOUND
	case errors.Is(err, ErrSlotNotAvailable):
		return http.StatusConflict, SLOT_NOT_AVAILABLE
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CONFLICT
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, LOCKED
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, UNAUTHORIZED
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, FORBIDDEN
	default:
		return http.StatusInternalServerError, FAILED_REQUEST
	}
}

// Fail writes err as a JSON error. Client errors carry the error's own
// message; internal errors are replaced by fallback.
func Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, code := Classify(err)

	msg := fallback
	if status < http.StatusInternalServerError {
		msg = Message(err)
	}

	w.WriteHeader(status)
	render.JSON(w, r, Error(string(code), msg))
}
