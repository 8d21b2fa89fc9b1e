package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/artisanmarket/cart-backend/api/responses"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
	"github.com/artisanmarket/cart-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles cart mutations per client IP in a fixed window.
type RateLimitPolicy struct {
	Window  time.Duration
	PerIP   int
	Surface string
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.PerIP > 0
}

func (p RateLimitPolicy) scope(ip string) string {
	surface := strings.ToLower(strings.TrimSpace(p.Surface))
	if surface == "" {
		surface = "cart"
	}
	return surface + ":ip:" + ip
}

// RateLimit counts every non-GET request; reads are never throttled.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(ip), int64(policy.PerIP), policy.Window)
			if err != nil {
				// Fail open: the cart stays usable when redis is degraded.
				logError(ctx, logg, "rate_limit.check_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.PerIP,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "cart.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
