package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yurfit/steam-scout/internal/ratelimit"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// KeyFunc maps a request to its rate-limit key.
type KeyFunc func(r *http.Request) string

// UserOrIPKey keys on the authenticated user id when present, else the source
// IP. Mount this middleware after chi's RealIP so RemoteAddr holds the real
// client address.
func UserOrIPKey(r *http.Request) string {
	if user, ok := UserFromContext(r.Context()); ok {
		return "user:" + user.Sub
	}
	// RemoteAddr is ip:port on a direct connection; the port changes per
	// connection and must not split one client across keys. RealIP leaves a
	// bare IP, which SplitHostPort rejects, so fall back to the raw string.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimit creates a middleware enforcing the given limiter. Rejections get
// a 429 with Retry-After; allowed requests carry X-RateLimit-Remaining. When
// the limiter is configured to skip an outcome class, the request's own
// reservation is retracted once the status is known.
func RateLimit(limiter *ratelimit.Limiter, keyFn KeyFunc, logger *logger.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = UserOrIPKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			res := limiter.Check(key, time.Now())

			if !res.Allowed {
				retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
				logger.WithFields(map[string]interface{}{
					"key":         key,
					"retry_after": retryAfter,
					"path":        r.URL.Path,
				}).Warn("Rate limit exceeded")

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeErrorResponse(w, r, errors.NewRateLimitError("Too many requests", retryAfter), logger)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !limiter.SkipSuccessful() && !limiter.SkipFailed() {
				next.ServeHTTP(w, r)
				return
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			succeeded := ww.Status() < http.StatusBadRequest
			if (succeeded && limiter.SkipSuccessful()) || (!succeeded && limiter.SkipFailed()) {
				limiter.Retract(key, res.Reservation)
			}
		})
	}
}
