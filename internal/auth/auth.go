// Package auth resolves the bearer token issued by the account service into
// the calling user. Token issuance lives elsewhere.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clinic-booking/internal/service"
	"clinic-booking/pkg/logger/sl"
	"clinic-booking/pkg/response"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

type User struct {
	ID        string
	Email     string
	PartnerID string
	Admin     bool
	Confirmed bool
	Blocked   bool
}

type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	PartnerID string `json:"partner_id,omitempty"`
	Confirmed bool   `json:"confirmed"`
	Blocked   bool   `json:"blocked"`
	jwt.RegisteredClaims
}

const RoleAdmin = "admin"

type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

func (r *Resolver) Parse(token string) (*User, error) {
	const op = "auth.Resolver.Parse"

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, response.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: missing subject", op, response.ErrUnauthorized)
	}

	return &User{
		ID:        claims.Subject,
		Email:     claims.Email,
		PartnerID: claims.PartnerID,
		Admin:     claims.Role == RoleAdmin,
		Confirmed: claims.Confirmed,
		Blocked:   claims.Blocked,
	}, nil
}

// Sign issues a token for u. Used by tests and local tooling.
func (r *Resolver) Sign(u User, ttl time.Duration) (string, error) {
	role := "user"
	if u.Admin {
		role = RoleAdmin
	}

	claims := Claims{
		Email:     u.Email,
		Role:      role,
		PartnerID: u.PartnerID,
		Confirmed: u.Confirmed,
		Blocked:   u.Blocked,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Middleware rejects requests without a valid bearer token.
func (r *Resolver) Middleware(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, req, response.Error(string(response.UNAUTHORIZED), "missing bearer token"))
				return
			}

			user, err := r.Parse(token)
			if err != nil {
				log.Warn("Rejected token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, req, response.Error(string(response.UNAUTHORIZED), "invalid token"))
				return
			}

			next.ServeHTTP(w, req.WithContext(WithUser(req.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFromContext(ctx context.Context) (*User, error) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	if !ok || u == nil {
		return nil, response.ErrUnauthorized
	}

	return u, nil
}

// CanBook reports why u may not place bookings, or nil.
func (u *User) CanBook() error {
	if u.Blocked {
		return errors.New("account is blocked")
	}
	if !u.Confirmed {
		return errors.New("account is not confirmed")
	}

	return nil
}

func (u *User) Actor() service.Actor {
	return service.Actor{
		UserID:    u.ID,
		PartnerID: u.PartnerID,
		Admin:     u.Admin,
	}
}
