package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	model "auction-marketplace/internal/models"
	"auction-marketplace/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testRouter injects caller and clock the way the server middleware does
func testRouter(caller model.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(helpers.NowKey, testNow)
		if caller.Authenticated() {
			helpers.SetCaller(c, caller)
		}
		c.Next()
	})
	return router
}

type callerMatcher struct{ id model.UserRef }

func (m callerMatcher) Matches(x any) bool {
	rc, ok := x.(model.RequestContext)
	return ok && rc.Caller.ID == m.id && rc.Now.Equal(testNow)
}

func (m callerMatcher) String() string { return fmt.Sprintf("request context of %q", m.id) }

// rcOf matches a RequestContext carrying the given caller id and the test clock
func rcOf(id model.UserRef) gomock.Matcher { return callerMatcher{id: id} }

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
