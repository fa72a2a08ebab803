package core

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"maizecast/internal/types"
)

// rateLimitWindow is the fixed window over which per-client request counts
// are accumulated. The per-window limit comes from SecurityConfig.RateLimitPerMin.
const rateLimitWindow = time.Minute

// defaultRateLimitMax is the fallback per-window limit when the configuration
// does not specify one.
const defaultRateLimitMax = 120

// rateLimiter is an in-memory fixed-window counter keyed by client IP.
// The service runs as a single instance (or one Lambda container per
// concurrent execution), so an in-process limiter is sufficient; a shared
// store would only be needed for strict global limits across replicas.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*clientWindow
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	if limit <= 0 {
		limit = defaultRateLimitMax
	}
	if window <= 0 {
		window = rateLimitWindow
	}
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		windows: make(map[string]*clientWindow),
	}
}

// allow increments the counter for key and reports whether the request fits
// in the current window. Expired windows are reset lazily on access; a sweep
// evicts stale entries once the map grows past a threshold.
func (rl *rateLimiter) allow(key string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	cw, ok := rl.windows[key]
	if !ok || !now.Before(cw.resetAt) {
		if len(rl.windows) > 10000 {
			rl.sweepLocked(now)
		}
		cw = &clientWindow{resetAt: now.Add(rl.window)}
		rl.windows[key] = cw
	}

	cw.count++

	remaining := rl.limit - cw.count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   cw.count <= rl.limit,
		Remaining: remaining,
		ResetAt:   cw.resetAt,
	}
}

// sweepLocked drops expired windows. Caller must hold mu.
func (rl *rateLimiter) sweepLocked(now time.Time) {
	for k, cw := range rl.windows {
		if !now.Before(cw.resetAt) {
			delete(rl.windows, k)
		}
	}
}

// RateLimit enforces a fixed-window per-client request limit.
//
// The middleware keys windows by client IP, taken from the first entry of
// X-Forwarded-For when present (the service sits behind API Gateway or a
// load balancer in every deployed environment) and falling back to
// RemoteAddr.
//
// On every request (allowed or not), the middleware sets standard rate limit
// response headers:
//   - X-RateLimit-Limit: The maximum number of requests in the window.
//   - X-RateLimit-Remaining: The number of requests remaining.
//   - X-RateLimit-Reset: Unix timestamp when the window resets.
//
// When rate limited, the middleware also sets Retry-After (seconds until the
// window resets) and responds 429 with the standard error envelope.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	limit := defaultRateLimitMax
	if s.Config != nil && s.Config.Security.RateLimitPerMin > 0 {
		limit = s.Config.Security.RateLimitPerMin
	}
	limiter := newRateLimiter(limit, rateLimitWindow, nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := limiter.allow(clientIP(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			Error(w, r, types.NewAppError(
				types.ErrCodeRateLimit,
				"rate limit exceeded, retry later",
				nil,
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the originating client IP. The first X-Forwarded-For
// entry is the client as seen by the outermost proxy; RemoteAddr is the
// fallback for direct connections.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
