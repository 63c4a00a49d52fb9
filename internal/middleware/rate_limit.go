package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rdd81/smart-budget-app/internal/cache"
	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
)

// idleLimiterTTL is how long a user's bucket survives without requests.
const idleLimiterTTL = 30 * time.Minute

// UserRateLimiter hands out one token bucket per authenticated user.
//
// Buckets are never evicted while they hold state: when the table is full,
// only fully refilled buckets are dropped. Users that still find no room
// share a single overflow bucket, so a throttled user cannot regain a fresh
// burst through churn.
type UserRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	maxUsers int
	limiters *cache.TTLCache[string, *rate.Limiter]
	overflow *rate.Limiter
	now      func() time.Time
}

// NewUserRateLimiter allows perMinute requests per user with the given burst.
// maxUsers bounds the number of tracked buckets; zero means unbounded.
func NewUserRateLimiter(perMinute, burst, maxUsers int) *UserRateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(float64(perMinute) / 60)
	return &UserRateLimiter{
		limit:    limit,
		burst:    burst,
		maxUsers: maxUsers,
		limiters: cache.New[string, *rate.Limiter](idleLimiterTTL, 0),
		overflow: rate.NewLimiter(limit, burst),
		now:      time.Now,
	}
}

func (l *UserRateLimiter) limiterFor(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters.Get(userID)
	if !ok {
		if l.maxUsers > 0 && l.limiters.Len() >= l.maxUsers {
			l.reclaimLocked()
		}
		if l.maxUsers > 0 && l.limiters.Len() >= l.maxUsers {
			return l.overflow
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Re-set on every hit so active users never expire.
	l.limiters.Set(userID, limiter)
	return limiter
}

// reclaimLocked drops expired buckets and buckets that have refilled, since
// a new bucket for those users would behave identically.
func (l *UserRateLimiter) reclaimLocked() {
	l.limiters.Purge()
	now := l.now()
	full := float64(l.burst)
	l.limiters.DeleteFunc(func(_ string, limiter *rate.Limiter) bool {
		return limiter.TokensAt(now) >= full
	})
}

// Middleware rejects requests over the user's budget with 429 and a
// Retry-After header. It must run after AuthMiddleware.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		reservation := l.limiterFor(userID).Reserve()
		if !reservation.OK() {
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			abortWithError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
