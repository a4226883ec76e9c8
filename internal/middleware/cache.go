package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qtc-soft/schedule-api/internal/config"
)

// storedResponse is the cached form of one upstream response.  Body rides
// as base64 through the JSON encoding.
type storedResponse struct {
	Status int                 `json:"status"`
	Header map[string][]string `json:"header"`
	Body   []byte              `json:"body"`
}

// teeWriter forwards everything to the client while keeping a copy for
// the cache.  Once the copy would exceed max it is abandoned: a truncated
// body must never be served back.
type teeWriter struct {
	http.ResponseWriter
	status    int
	body      bytes.Buffer
	max       int
	truncated bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(p []byte) (int, error) {
	if !w.truncated {
		if w.max > 0 && w.body.Len()+len(p) > w.max {
			w.truncated = true
			w.body.Reset()
		} else {
			w.body.Write(p)
		}
	}
	return w.ResponseWriter.Write(p)
}

// cacheKey hashes the concrete request path (not the route template, so
// different id sets never collide) and, optionally, the query string.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	h := sha256.New()
	io.WriteString(h, c.Request().URL.Path)
	if cfg.VaryOnQuery {
		io.WriteString(h, "?")
		io.WriteString(h, c.Request().URL.RawQuery)
	}
	return cfg.Prefix + ":" + hex.EncodeToString(h.Sum(nil)[:20])
}

// NewRedisCache caches whole 200 responses (headers and body) for the
// public schedule catalogue.  GET only, best-effort: without a Redis
// client the middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				var sr storedResponse
				if json.Unmarshal(raw, &sr) == nil {
					return replay(c, sr)
				}
			}

			w := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBody}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if w.status == http.StatusOK && !w.truncated {
				sr := storedResponse{
					Status: w.status,
					Header: headerCopy(c.Response().Header()),
					Body:   w.body.Bytes(),
				}
				if raw, err := json.Marshal(sr); err == nil {
					// the request context may be done by now; the write is
					// detached so a canceled client still fills the cache
					_ = rdb.SetEx(context.Background(), key, raw, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

// replay writes a stored response.  Content-Length is recomputed by the
// server and X-Cache flips to HIT.
func replay(c echo.Context, sr storedResponse) error {
	h := c.Response().Header()
	for k, vals := range sr.Header {
		if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, "X-Cache") {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(sr.Status)
	if len(sr.Body) == 0 {
		return nil
	}
	_, err := c.Response().Write(sr.Body)
	return err
}

func headerCopy(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
