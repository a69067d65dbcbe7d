package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"clinic-booking/internal/auth"
	"clinic-booking/pkg/response"

	"github.com/go-chi/render"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type Config struct {
	Rate  rate.Limit
	Burst int
}

// Limiter keeps one token bucket per caller: the authenticated user when
// there is one, the remote IP otherwise. Idle buckets expire.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	buckets *gocache.Cache
}

func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		buckets: gocache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.buckets.Get(key); ok {
		return v.(*rate.Limiter)
	}

	b := rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)
	l.buckets.SetDefault(key, b)
	return b
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket(callerKey(r)).Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error(string(response.TOO_MANY_REQUESTS), "rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if u, err := auth.UserFromContext(r.Context()); err == nil {
		return "user:" + u.ID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "ip:" + host
}
