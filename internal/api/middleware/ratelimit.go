package middleware

import (
	"context"
	"credit-api/internal/config"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitWindow = time.Second

// windowCounter counts hits for a key inside a fixed window shared by every replica.
type windowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisWindowCounter struct {
	client redis.Cmdable
}

func (c redisWindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return 0, err
	}
	// -1 means no expiry yet, -2 means the key vanished between the commands.
	if ttl, err := ttlCmd.Result(); err == nil && (ttl == -1 || ttl == -2) {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count, nil
}

type RateLimiterMiddleware struct {
	counter  windowCounter
	limiters sync.Map
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	window   time.Duration
}

// NewRateLimiterMiddleware uses Redis when a client is given and an in-process
// token bucket per IP otherwise.
func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		cfg:    cfg,
		logger: logger.With("component", "RateLimiter"),
		window: rateLimitWindow,
	}

	switch {
	case !cfg.Enabled:
		rl.logger.Info("Rate limiting is disabled via configuration.")
	case redisClient != nil:
		rl.counter = redisWindowCounter{client: redisClient}
		rl.logger.Info("Rate limiter backed by Redis", "rps", cfg.RPS, "window", rl.window)
	default:
		rl.logger.Info("Rate limiter using local token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
	}
	return rl
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	burst := rl.cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(rl.cfg.RPS))
	}
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), burst))
	return limiter.(*rate.Limiter)
}

// Prune drops idle local limiters. It returns when ctx is done.
func (rl *RateLimiterMiddleware) Prune(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.limiters.Range(func(key, value interface{}) bool {
				limiter := value.(*rate.Limiter)
				if limiter.TokensAt(now) >= float64(limiter.Burst()) {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (rl *RateLimiterMiddleware) allow(ctx context.Context, ip string) bool {
	if rl.counter == nil {
		return rl.getLimiter(ip).Allow()
	}

	key := "ratelimit:" + ip
	count, err := rl.counter.Increment(ctx, key, rl.window)
	if err != nil {
		rl.logger.ErrorContext(ctx, "Rate limit check failed, letting request through", "error", err, "key", key)
		return true
	}
	return count <= int64(rl.cfg.RPS)
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		if rl.allow(r.Context(), ip) {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "limit", rl.cfg.RPS)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message":   "Rate limit exceeded",
			"timestamp": time.Now(),
			"exception": "RATE_LIMITED",
		})
	})
}
