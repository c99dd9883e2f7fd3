package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coursehive/coursehive-backend/api/responses"
	pkgerrors "github.com/coursehive/coursehive-backend/pkg/errors"
	"github.com/coursehive/coursehive-backend/pkg/logger"
	pkgredis "github.com/coursehive/coursehive-backend/pkg/redis"
)

const (
	defaultRateLimitWindow = time.Minute
	defaultRateLimit       = 120
)

// RateLimit applies a fixed-window per-caller limit. Redis failures let
// requests through rather than blocking traffic.
func RateLimit(client *pkgredis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			scope := rateLimitScope(r)
			allowed, _, err := client.FixedWindowAllow(r.Context(), scope, defaultRateLimit, defaultRateLimitWindow)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate limit check failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitScope(r *http.Request) string {
	if userID := UserIDFromContext(r.Context()); userID != "" {
		return fmt.Sprintf("user:%s", userID)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return fmt.Sprintf("ip:%s", host)
}
