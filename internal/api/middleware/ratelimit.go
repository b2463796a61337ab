package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// UserRateLimiter applies a token bucket per authenticated user. It must run
// after AuthMiddleware.Authenticate.
type UserRateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[uuid.UUID]*userLimiter
	lastGC   time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleTTL is how long an unused per-user limiter is kept.
const idleTTL = 30 * time.Minute

// NewUserRateLimiter allows perMinute requests per user with the given
// burst. A non-positive perMinute disables limiting.
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		limit:    limit,
		burst:    burst,
		now:      time.Now,
		limiters: make(map[uuid.UUID]*userLimiter),
	}
}

// Allow reports whether userID may make a request now.
func (l *UserRateLimiter) Allow(userID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastGC) > idleTTL {
		for id, ul := range l.limiters {
			if now.Sub(ul.lastSeen) > idleTTL {
				delete(l.limiters, id)
			}
		}
		l.lastGC = now
	}

	ul, ok := l.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.limiter.AllowN(now, 1)
}

// Limit is the middleware form of Allow.
func (l *UserRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserID(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
			return
		}
		if !l.Allow(userID) {
			if l.limit != rate.Inf && l.limit > 0 {
				retry := time.Duration(float64(time.Second) / float64(l.limit))
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds()+0.5)))
			}
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
