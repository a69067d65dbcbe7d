package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   ErrCode
	}{
		{err: fmt.Errorf("service.CreateBooking: %w", ErrPastDate), status: http.StatusBadRequest, code: VALIDATION_FAILED},
		{err: fmt.Errorf("op: %w", ErrInvalidSvc), status: http.StatusBadRequest, code: VALIDATION_FAILED},
		{err: fmt.Errorf("op: %w", ErrFormat), status: http.StatusBadRequest, code: VALIDATION_FAILED},
		{err: fmt.Errorf("op: %w", ErrNotEligible), status: http.StatusBadRequest, code: NOT_ELIGIBLE},
		{err: fmt.Errorf("op: %w", ErrNotFound), status: http.StatusNotFound, code: NOT_FOUND},
		{err: fmt.Errorf("op: %w", ErrSlotNotAvailable), status: http.StatusConflict, code: SLOT_NOT_AVAILABLE},
		{err: fmt.Errorf("op: %w", ErrInvalidStatus), status: http.StatusConflict, code: CONFLICT},
		{err: ErrLocked, status: http.StatusLocked, code: LOCKED},
		{err: ErrForbidden, status: http.StatusForbidden, code: FORBIDDEN},
		{err: errors.New("connection refused"), status: http.StatusInternalServerError, code: FAILED_REQUEST},
	}

	for _, c := range cases {
		status, code := Classify(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.code, code, c.err.Error())
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("dial tcp: refused"), "failed to get slots")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "failed to get slots", body.Message)
}

func TestFail_ClientMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("service.CreateBooking: %w", ErrInvalidSvc), "failed")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid service for this partner", body.Message)
	assert.Equal(t, string(VALIDATION_FAILED), body.Code)
}
