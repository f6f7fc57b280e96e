package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lpms-app/lpms/internal/auth"
	"github.com/rs/zerolog/log"
)

// Each manager gets two token buckets: one for reads (dashboard and
// maintenance tables) and one for writes (property edits, new properties and
// maintenance records). A flood of table refreshes never eats into the
// budget for saving a form, and the reverse.

// limitScope names the bucket a request draws from
type limitScope string

const (
	readScope  limitScope = "read"
	writeScope limitScope = "write"
)

func scopeOf(method string) limitScope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return readScope
	default:
		return writeScope
	}
}

// scopePolicy is a bucket size and its refill rate
type scopePolicy struct {
	limit     int
	burst     int
	perSecond float64
}

func newScopePolicy(limit, burst, windowSeconds int) scopePolicy {
	return scopePolicy{
		limit:     limit,
		burst:     burst,
		perSecond: float64(limit) / float64(windowSeconds),
	}
}

type bucketKey struct {
	managerID string
	scope     limitScope
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// decision is the outcome of one take
type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	resetIn    time.Duration
}

// limiter holds the buckets of every active manager. Buckets idle for
// longer than idleAfter are pruned while taking tokens.
type limiter struct {
	policies  map[limitScope]scopePolicy
	now       func() time.Time
	idleAfter time.Duration

	mu        sync.Mutex
	buckets   map[bucketKey]*bucket
	lastPrune time.Time
}

func newLimiter(cfg RateLimitInfo, now func() time.Time) *limiter {
	writes := cfg.writePolicy()
	return &limiter{
		policies: map[limitScope]scopePolicy{
			readScope:  newScopePolicy(cfg.MaxRequests, cfg.Burst, cfg.WindowSeconds),
			writeScope: newScopePolicy(writes.MaxRequests, writes.Burst, cfg.WindowSeconds),
		},
		now:       now,
		idleAfter: time.Hour,
		buckets:   map[bucketKey]*bucket{},
		lastPrune: now(),
	}
}

// take consumes one token from the manager's bucket for scope
func (l *limiter) take(managerID string, scope limitScope) decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	p := l.policies[scope]
	key := bucketKey{managerID: managerID, scope: scope}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(p.burst), seen: now}
		l.buckets[key] = b
	}

	b.tokens = math.Min(float64(p.burst), b.tokens+now.Sub(b.seen).Seconds()*p.perSecond)
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return decision{
			allowed:   true,
			remaining: int(b.tokens),
			resetIn:   p.secondsFor(float64(p.burst) - b.tokens),
		}
	}
	return decision{
		retryAfter: p.secondsFor(1 - b.tokens),
		resetIn:    p.secondsFor(float64(p.burst) - b.tokens),
	}
}

func (p scopePolicy) secondsFor(tokens float64) time.Duration {
	return time.Duration(tokens / p.perSecond * float64(time.Second))
}

func (l *limiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.idleAfter/6 {
		return
	}
	l.lastPrune = now
	for key, b := range l.buckets {
		if now.Sub(b.seen) > l.idleAfter {
			delete(l.buckets, key)
		}
	}
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitMiddleware enforces the read and write budgets per authenticated
// manager. A zero config disables limiting.
func RateLimitMiddleware(config RateLimitInfo) func(http.Handler) http.Handler {
	return rateLimit(config, time.Now)
}

func rateLimit(config RateLimitInfo, now func() time.Time) func(http.Handler) http.Handler {
	if !config.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(config, now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			managerID := auth.UserID(r.Context())
			if managerID == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := scopeOf(r.Method)
			p := l.policies[scope]
			d := l.take(managerID, scope)

			h := w.Header()
			h.Set("X-RateLimit-Scope", string(scope))
			h.Set("X-RateLimit-Limit", strconv.Itoa(p.limit))
			h.Set("X-RateLimit-Burst", strconv.Itoa(p.burst))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(now().Add(d.resetIn).Unix(), 10))

			if !d.allowed {
				retryAfter := int(math.Ceil(d.retryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				log.Ctx(r.Context()).Warn().
					Str("manager_id", managerID).
					Str("scope", string(scope)).
					Int("retry_after", retryAfter).
					Msg("rate limit exceeded")

				writeError(w, r, http.StatusTooManyRequests,
					"Too many "+string(scope)+" requests. Please retry after "+strconv.Itoa(retryAfter)+" seconds.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
