package review

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows each user n requests per window. Anonymous requests are
// not limited; they are rejected later by authentication.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewRateLimiter(n int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if n < 1 {
		n = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(n)),
		burst:    n,
		idle:     window,
		now:      time.Now,
		logger:   logger,
	}
}

func (l *RateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[userID] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// prune drops users idle for a whole window; their bucket is full again by
// then. Caller holds mu.
func (l *RateLimiter) prune(now time.Time) {
	for id, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.visitors, id)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if ok && !l.Allow(p.UserID) {
			l.logger.Warn("review rate limit exceeded",
				zap.String("traceId", httpx.TraceID(r.Context())),
				zap.String("userId", p.UserID),
			)
			httpx.WriteError(w, r, l.logger, apperrors.NewRateLimitError("too many reviews, please try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
