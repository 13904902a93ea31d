package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"auction-marketplace/internal/authn"
	"auction-marketplace/internal/events"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testClock is the request clock shared by every request of one environment
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestEnv is a router over an in-memory store with signed tokens for a few callers
type TestEnv struct {
	Router   *gin.Engine
	Repo     *repository.MemoryRepo
	Clock    *testClock
	Events   *events.Recorder
	verifier *authn.Verifier
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := authn.NewVerifier(authn.Config{Secret: "integration-secret"})
	require.NoError(t, err)

	env := &TestEnv{
		Repo:     repository.NewMemoryRepo(),
		Clock:    &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Events:   &events.Recorder{},
		verifier: verifier,
	}
	env.Router = server.SetupRouter(
		server.NewServices(env.Repo, server.ServiceConfig{Publisher: env.Events}),
		server.Options{Verifier: verifier, Now: env.Clock.Now},
	)
	return env
}

// Token signs a bearer token for caller
func (e *TestEnv) Token(t *testing.T, caller model.Caller) string {
	t.Helper()
	token, err := e.verifier.Sign(caller, time.Hour)
	require.NoError(t, err)
	return token
}

// Date formats an offset from the current test time in the wire format
func (e *TestEnv) Date(offset time.Duration) string {
	return e.Clock.Now().Add(offset).UTC().Format(utils.DateFormat)
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the envelope
func (e *TestEnv) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.Router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}

// Data returns the data object of a success envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

// DataList returns the data array of a success envelope
func DataList(t *testing.T, resp map[string]any) []map[string]any {
	t.Helper()
	raw, ok := resp["data"].([]any)
	require.True(t, ok, "response has no data array: %v", resp)
	out := make([]map[string]any, len(raw))
	for i, v := range raw {
		out[i] = v.(map[string]any)
	}
	return out
}

// Do executes a raw JSON request and returns only the status. Safe to call from goroutines.
func (e *TestEnv) Do(method, url, token, body string) int {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w.Code
}
