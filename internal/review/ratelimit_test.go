package review

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storefront/internal/auth"
)

func TestRateLimiter_Allow(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, 10*time.Minute, zap.NewNop())
	l.now = func() time.Time { return clock }

	for i := range 5 {
		assert.True(t, l.Allow("user-1"), "request %d", i+1)
	}
	assert.False(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-2"), "users have separate buckets")

	clock = clock.Add(2 * time.Minute)
	assert.True(t, l.Allow("user-1"), "one token refills every window/n")
	assert.False(t, l.Allow("user-1"))

	clock = clock.Add(11 * time.Minute)
	assert.True(t, l.Allow("user-1"))
	assert.Len(t, l.visitors, 1, "idle users are pruned")
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, time.Hour, zap.NewNop())
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(p *auth.Principal) int {
		req := httptest.NewRequest(http.MethodPost, "/api/reviews", nil)
		if p != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	user := &auth.Principal{UserID: "user-1", Role: auth.RoleCustomer}
	assert.Equal(t, http.StatusCreated, send(user))
	assert.Equal(t, http.StatusTooManyRequests, send(user))
	assert.Equal(t, http.StatusCreated, send(nil))
	assert.Equal(t, http.StatusCreated, send(nil))
}
