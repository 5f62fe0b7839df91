package api

import (
	"math"
	"net"
	"net/http"
	"slices"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// tagAuth marks operations that share the per-IP authentication limiter.
const tagAuth = "Authentication"

// rateLimitAuth is huma middleware limiting authentication operations by client IP.
// Returns 429 RATE_LIMITED with a Retry-After header when the limit is exceeded.
func (s *Server) rateLimitAuth(ctx huma.Context, next func(huma.Context)) {
	op := ctx.Operation()
	if s.authLimiter == nil || op == nil || !slices.Contains(op.Tags, tagAuth) {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.authLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"operation", op.OperationID,
		)
		retry := int(math.Ceil(s.authLimiter.RetryAfter().Seconds()))
		ctx.SetHeader("Retry-After", strconv.Itoa(max(retry, 1)))
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	next(ctx)
}

// clientIP strips the port from a remote address. chi's RealIP middleware has
// already replaced it with X-Forwarded-For or X-Real-IP when present.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
