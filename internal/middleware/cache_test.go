package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		TTL:         time.Minute,
		Prefix:      "respcache",
		MaxBody:     64,
		VaryOnQuery: true,
	}
}

func TestTeeWriterAbandonsOversizedCopy(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &teeWriter{ResponseWriter: rec, status: http.StatusOK, max: 8}

	_, err := w.Write([]byte("12345"))
	require.NoError(t, err)
	_, err = w.Write([]byte("67890"))
	require.NoError(t, err)

	// the client saw everything, the cache copy was dropped whole
	assert.Equal(t, "1234567890", rec.Body.String())
	assert.True(t, w.truncated)
	assert.Zero(t, w.body.Len())
}

func TestCacheKeyVariesByPathAndQuery(t *testing.T) {
	cfg := cacheTestConfig()
	e := echo.New()

	key := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		return cacheKey(cfg, e.NewContext(req, httptest.NewRecorder()))
	}

	// concrete ids in the path must produce distinct keys
	assert.NotEqual(t, key("/v1/schedule-online/1"), key("/v1/schedule-online/2"))
	assert.NotEqual(t, key("/v1/schedule-online/1?name=x"), key("/v1/schedule-online/1"))
	assert.Equal(t, key("/v1/schedule-online/1?name=x"), key("/v1/schedule-online/1?name=x"))

	cfg.VaryOnQuery = false
	req := httptest.NewRequest(http.MethodGet, "/v1/schedule-online/1?name=x", nil)
	a := cacheKey(cfg, e.NewContext(req, httptest.NewRecorder()))
	req = httptest.NewRequest(http.MethodGet, "/v1/schedule-online/1", nil)
	b := cacheKey(cfg, e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, a, b)
}

func TestReplayRestoresStoredResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedule-online/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sr := storedResponse{
		Status: http.StatusOK,
		Header: map[string][]string{
			"Content-Type":   {"application/json"},
			"Content-Length": {"999"},
		},
		Body: []byte(`{"result":[],"errors":[]}`),
	}
	require.NoError(t, replay(c, sr))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEqual(t, "999", rec.Header().Get("Content-Length"))
	assert.JSONEq(t, `{"result":[],"errors":[]}`, rec.Body.String())
}

func TestCachePassThroughWithoutRedis(t *testing.T) {
	mw := NewRedisCache(cacheTestConfig(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/schedule-online/all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	require.NoError(t, mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c))
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
