package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/authn"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/ratelimit"
	"auction-marketplace/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	quota ratelimit.Quota
	err   error
	keys  []string
}

func (s *stubLimiter) Take(_ context.Context, key string) (ratelimit.Quota, error) {
	s.keys = append(s.keys, key)
	return s.quota, s.err
}

func newVerifier(t *testing.T) *authn.Verifier {
	t.Helper()
	v, err := authn.NewVerifier(authn.Config{Secret: "test-secret"})
	require.NoError(t, err)
	return v
}

func echoCaller(c *gin.Context) {
	rc := helpers.RequestContext(c)
	c.JSON(http.StatusOK, gin.H{"caller": rc.Caller.ID, "staff": rc.Caller.IsStaff, "now": rc.Now})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier := newVerifier(t)
	staffToken, err := verifier.Sign(model.Caller{ID: "root", IsStaff: true}, time.Minute)
	require.NoError(t, err)
	expired, err := verifier.Sign(model.Caller{ID: "alice"}, -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCaller string
	}{
		{name: "anonymous", expectedStatus: http.StatusOK, expectedCaller: ""},
		{name: "valid_token", header: "Bearer " + staffToken, expectedStatus: http.StatusOK, expectedCaller: "root"},
		{name: "expired_token", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def", expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(AuthMiddleware(verifier))
			router.GET("/whoami", echoCaller)

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if w.Code == http.StatusOK {
				require.Equal(t, tc.expectedCaller, resp["caller"])
			} else {
				require.Equal(t, auctionerrors.CodeUnauthorized, resp["code"])
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name              string
		limiter           *stubLimiter
		expectedStatus    int
		expectedCode      string
		expectedRemaining string
		expectedRetry     string
	}{
		{
			name:              "allowed",
			limiter:           &stubLimiter{quota: ratelimit.Quota{Allowed: true, Remaining: 4}},
			expectedStatus:    http.StatusOK,
			expectedRemaining: "4",
		},
		{
			name:           "unlimited_sets_no_quota_header",
			limiter:        &stubLimiter{quota: ratelimit.Quota{Allowed: true, Remaining: -1}},
			expectedStatus: http.StatusOK,
		},
		{
			name:              "limited",
			limiter:           &stubLimiter{quota: ratelimit.Quota{RetryAfter: 1500 * time.Millisecond}},
			expectedStatus:    http.StatusTooManyRequests,
			expectedCode:      auctionerrors.CodeRateLimited,
			expectedRemaining: "0",
			expectedRetry:     "2",
		},
		{
			name:           "limiter_down",
			limiter:        &stubLimiter{err: errors.New("connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   auctionerrors.CodeStoreUnavailable,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(func(c *gin.Context) {
				helpers.SetCaller(c, model.Caller{ID: "alice"})
				c.Next()
			})
			router.POST("/bid", RateLimitMiddleware(tc.limiter, "bids"), echoCaller)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bid", nil))

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Equal(t, []string{"bids:alice"}, tc.limiter.keys)
			require.Equal(t, tc.expectedRemaining, w.Header().Get(RateLimitRemainingHeader))
			require.Equal(t, tc.expectedRetry, w.Header().Get(RetryAfterHeader))
			if tc.expectedCode != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.Equal(t, tc.expectedCode, resp["code"])
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware)
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(helpers.RequestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	require.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, "client-id-1", w.Header().Get(RequestIDHeader))
}

func TestClockMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	router := gin.New()
	router.Use(ClockMiddleware(func() time.Time { return fixed }))
	router.GET("/", echoCaller)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "2026-03-01T12:00:00Z", resp["now"])
}
