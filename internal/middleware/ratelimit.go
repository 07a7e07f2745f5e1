package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"cotizador/internal/cache"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	}
}

// Limiter decides whether a client may issue one more request
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// RateLimit rejects clients over their allowance with 429. Limiter errors
// let the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				log.Warn().
					Err(err).
					Str("client_ip", clientIP).
					Msg("Rate limiter unavailable, allowing request")
				allowed = true
			}

			if !allowed {
				log.Warn().
					Str("client_ip", clientIP).
					Str("url", r.URL.String()).
					Msg("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				if err := json.NewEncoder(w).Encode(map[string]string{
					"detail": "Rate limit exceeded. Please try again later.",
				}); err != nil {
					http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the real client IP address
func getClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		// first hop is the client
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// every connection has its own port, the client is the host
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// defaultIdleTTL is how long a client may stay silent before its bucket is
// dropped. A dropped bucket comes back full, so the TTL is never shorter than
// the time a bucket needs to refill.
const defaultIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a token bucket per client, local to this instance
type MemoryLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func NewMemoryLimiter(cfg RateLimitConfig) *MemoryLimiter {
	limit := rate.Inf
	idleTTL := defaultIdleTTL
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	if cfg.RequestsPerMinute > 0 {
		interval := time.Minute / time.Duration(cfg.RequestsPerMinute)
		limit = rate.Every(interval)
		if refill := time.Duration(burst) * interval; refill > idleTTL {
			idleTTL = refill
		}
	}

	return &MemoryLimiter{
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.evictIdle(now)
	}

	bucket, ok := l.clients[clientID]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientID] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1), nil
}

// evictIdle must be called with mu held
func (l *MemoryLimiter) evictIdle(now time.Time) {
	for id, bucket := range l.clients {
		if now.Sub(bucket.lastSeen) >= l.idleTTL {
			delete(l.clients, id)
		}
	}
	l.lastSweep = now
}

// WindowCounter counts events per key over a fixed window
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisLimiter is a fixed-window counter shared by every instance behind the
// load balancer.
type RedisLimiter struct {
	counter WindowCounter
	max     int64
	now     func() time.Time
}

func NewRedisLimiter(counter WindowCounter, cfg RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		counter: counter,
		max:     int64(cfg.RequestsPerMinute + cfg.BurstSize),
		now:     time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	count, err := l.counter.IncrWindow(ctx, cache.RateLimitKey(clientID, l.now()), cache.RateLimitWindow)
	if err != nil {
		return false, err
	}
	return count <= l.max, nil
}
