package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-booking/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_PerCaller(t *testing.T) {
	l := New(Config{Rate: 0, Burst: 2})
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		if user != "" {
			req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: user}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1"))

	assert.Equal(t, http.StatusOK, call("u2"))
	assert.Equal(t, http.StatusOK, call(""))
}
