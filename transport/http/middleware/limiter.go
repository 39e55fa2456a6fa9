package middleware

import (
	"errors"
	"net"
	"net/http"
	"pms/shared"
	"pms/shared/cache"
	"pms/shared/constant"
	"pms/transport/http/response"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
)

// RateLimit counts requests per client in fixed windows. The window index is part
// of the key, so the counter expires with its window instead of sliding on every hit.
// Run it after chi's RealIP so RemoteAddr holds the client address.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := a.config.App.RateLimiter
			if !limiter.Enable || limiter.MaxRequests <= 0 || limiter.WindowSeconds <= 0 {
				next.ServeHTTP(w, r)

				return
			}

			window := a.clock.Now().Unix() / int64(limiter.WindowSeconds)
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, clientIP(r), strconv.FormatInt(window, 10))

			var count int
			if err := a.cache.Get(r.Context(), cacheKey, &count); err != nil && !errors.Is(err, cache.Nil) {
				log.Warn().Err(err).Msg("rate limiter unavailable, request let through")
				next.ServeHTTP(w, r)

				return
			}

			count++

			if count > limiter.MaxRequests {
				response.WithRequestLimitExceeded(w)

				return
			}

			if err := a.cache.Save(r.Context(), cacheKey, count, limiter.WindowSeconds); err != nil {
				log.Warn().Err(err).Msg("failed to store rate limit counter")
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limiter.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limiter.MaxRequests-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limiter.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
