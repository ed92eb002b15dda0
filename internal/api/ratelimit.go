package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bookblog/bookblog-server/internal/http/response"
	"github.com/bookblog/bookblog-server/internal/ratelimit"
)

const authPathPrefix = "/api/v1/auth/"

// RateLimiter is the per-key limiter used by the API.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing ratePerInterval requests per
// interval with the given burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// RateLimitMiddleware limits requests under pathPrefix by client IP and
// answers 429 once the bucket is empty. Other paths pass through.
func RateLimitMiddleware(limiter *RateLimiter, pathPrefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !strings.HasPrefix(r.URL.Path, pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP keys on RemoteAddr only. Forwarding headers are client
// controlled; when the server runs behind a proxy, middleware.RealIP has
// already rewritten RemoteAddr.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
