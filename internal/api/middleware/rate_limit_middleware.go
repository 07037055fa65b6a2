package middleware

import (
	"net"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/rs/zerolog"
)

// clientKey 需放在 middleware.RealIP 之後
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware 依 client ip 限流, limiter 出錯時放行
func RateLimitMiddleware(limiter ratelimit.ILimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable")
				allowed = true
			}
			if !allowed {
				response.ErrorJSON(w, http.StatusTooManyRequests, response.ErrorBody{
					Code:    "rate_limited",
					Message: "Too Many Requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
