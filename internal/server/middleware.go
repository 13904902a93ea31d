package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authn"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/ratelimit"
	"auction-marketplace/services/auction/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader          = "X-Request-ID"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RetryAfterHeader         = "Retry-After"
)

// TokenVerifier turns a bearer token into the calling identity
type TokenVerifier interface {
	Verify(token string) (model.Caller, error)
}

// RequestIDMiddleware keeps the client's request id or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	c.Set(helpers.RequestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(helpers.RequestIDKey),
	}
	if caller, ok := c.Get(helpers.CallerKey); ok {
		fields["caller"] = caller.(model.Caller).ID
	}
	utils.Info("HTTP Request", fields)
}

// ClockMiddleware pins the evaluation time of the request
func ClockMiddleware(now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(helpers.NowKey, now().UTC())
		c.Next()
	}
}

// AuthMiddleware resolves the bearer token into a caller. Requests without an
// Authorization header continue anonymously; a present but invalid token is rejected.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || verifier == nil {
			c.Next()
			return
		}

		token, ok := authn.BearerToken(header)
		if !ok {
			helpers.RespondError(c, "AuthMiddleware", auctionerrors.ErrInvalidToken, map[string]any{"reason": "malformed authorization header"})
			return
		}
		caller, err := verifier.Verify(token)
		if err != nil {
			helpers.RespondError(c, "AuthMiddleware", err, nil)
			return
		}
		helpers.SetCaller(c, caller)
		c.Next()
	}
}

// RateLimitMiddleware throttles a route per caller, falling back to the client address
func RateLimitMiddleware(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		if caller := helpers.RequestContext(c).Caller; caller.Authenticated() {
			key = scope + ":" + string(caller.ID)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		quota, err := limiter.Take(ctx, key)
		if err != nil {
			utils.Error("RateLimitMiddleware: limiter unavailable", map[string]any{
				"key":        key,
				"error":      err.Error(),
				"request_id": c.GetString(helpers.RequestIDKey),
			})
			utils.JSONCodedError(c, http.StatusServiceUnavailable, auctionerrors.CodeStoreUnavailable, "rate limiter unavailable", nil)
			return
		}
		if quota.Remaining >= 0 {
			c.Header(RateLimitRemainingHeader, strconv.Itoa(quota.Remaining))
		}
		if !quota.Allowed {
			c.Header(RetryAfterHeader, strconv.Itoa(retryAfterSeconds(quota.RetryAfter)))
			helpers.RespondError(c, "RateLimitMiddleware", auctionerrors.ErrRateLimited, map[string]any{"key": key})
			return
		}
		c.Next()
	}
}

// retryAfterSeconds rounds up so clients never retry inside the same window
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int((d + time.Second - 1) / time.Second)
}
