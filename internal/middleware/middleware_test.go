package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-hold-engine/internal/config"
)

func newContext(method, target, path string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	return c
}

func TestBuildRateKey(t *testing.T) {
	c := newContext(http.MethodPost, "/v1/reserve", "/v1/reserve")

	cases := map[string]string{
		"ip":       "rl:ip:203.0.113.7",
		"route":    "rl:route:POST /v1/reserve",
		"ip_route": "rl:ip:203.0.113.7:route:POST /v1/reserve",
		"":         "rl:ip:203.0.113.7:route:POST /v1/reserve",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), "strategy %q", strategy)
	}
}

func TestParseBucketResult(t *testing.T) {
	allowed, remaining, retry, ok := parseBucketResult([]any{int64(1), int64(4), int64(0)})
	require.True(t, ok)
	assert.True(t, allowed)
	assert.EqualValues(t, 4, remaining)
	assert.Zero(t, retry)

	allowed, _, retry, ok = parseBucketResult([]any{int64(0), int64(0), "1500"})
	require.True(t, ok)
	assert.False(t, allowed)
	assert.EqualValues(t, 1500, retry)
	assert.Equal(t, 2, retryAfterSeconds(retry))

	_, _, _, ok = parseBucketResult("nope")
	assert.False(t, ok)
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	called := 0
	next := func(c echo.Context) error {
		called++
		return c.NoContent(http.StatusNoContent)
	}
	c := newContext(http.MethodGet, "/v1/shows", "/v1/shows")

	require.NoError(t, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil)(next)(c))
	require.NoError(t, NewRedisCache(config.CacheConfig{Enabled: true}, nil, nil)(next)(c))
	assert.Equal(t, 2, called)
}

func TestCacheKeyIncludesQueryAndParams(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := newContext(http.MethodGet, "/v1/shows?page=1", "/v1/shows")
	b := newContext(http.MethodGet, "/v1/shows?page=2", "/v1/shows")
	assert.NotEqual(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, b))
	assert.Equal(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, newContext(http.MethodGet, "/v1/shows?page=1", "/v1/shows")))

	x := newContext(http.MethodGet, "/v1/shows/x", "/v1/shows/:id")
	x.SetParamNames("id")
	x.SetParamValues("x")
	y := newContext(http.MethodGet, "/v1/shows/y", "/v1/shows/:id")
	y.SetParamNames("id")
	y.SetParamValues("y")
	assert.NotEqual(t, cacheKeyFrom(cfg, x), cacheKeyFrom(cfg, y))
	assert.Contains(t, cacheKeyFrom(cfg, x), "cache:")
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"data":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"data":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.truncated())
	_, _ = cw.Write([]byte("de"))
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcde", rec.Body.String())
}
