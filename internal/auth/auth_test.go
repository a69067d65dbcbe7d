package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_SignParse(t *testing.T) {
	r := NewResolver("secret")

	token, err := r.Sign(User{ID: "u1", Email: "u1@example.com", PartnerID: "p1", Confirmed: true}, time.Minute)
	require.NoError(t, err)

	u, err := r.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "u1@example.com", u.Email)
	assert.Equal(t, "p1", u.PartnerID)
	assert.True(t, u.Confirmed)
	assert.False(t, u.Admin)
	assert.NoError(t, u.CanBook())
}

func TestResolver_RejectsForeignAndExpired(t *testing.T) {
	other, err := NewResolver("other").Sign(User{ID: "u1"}, time.Minute)
	require.NoError(t, err)
	_, err = NewResolver("secret").Parse(other)
	assert.Error(t, err)

	expired, err := NewResolver("secret").Sign(User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = NewResolver("secret").Parse(expired)
	assert.Error(t, err)
}

func TestUser_CanBook(t *testing.T) {
	assert.Error(t, (&User{Confirmed: true, Blocked: true}).CanBook())
	assert.Error(t, (&User{}).CanBook())
}

func TestMiddleware(t *testing.T) {
	r := NewResolver("secret")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen *User
	h := r.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen, _ = UserFromContext(req.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := r.Sign(User{ID: "u2", Confirmed: true}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u2", seen.ID)
}
