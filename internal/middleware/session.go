// Package middleware provides shared request processing for handlers:
// session authentication, token-bucket rate limiting, response caching and
// request metrics.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/session"
)

// sessionKey is the echo context key the current session is stored under.
const sessionKey = "session"

// LoadSession resolves the access token from the configured header and, when
// it maps to a live session, stores the session in the request context.  It
// never rejects the request; pair it with RequireSession on protected routes
// so public handlers can still observe an optional session.
func LoadSession(store *session.Store, header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(header)
			if token == "" {
				// token may also arrive as a query parameter
				token = c.QueryParam("access_token")
			}
			if token != "" {
				if s := store.GetByToken(token); s != nil {
					c.Set(sessionKey, s)
				}
			}
			return next(c)
		}
	}
}

// RequireSession aborts with 403 when no session was resolved for the
// request.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}

// RequireAdmin aborts with 403 unless the current session carries the admin
// flag.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := CurrentSession(c)
			if s == nil || !s.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}

// CurrentSession returns the session attached to the request, or nil.
func CurrentSession(c echo.Context) *session.Session {
	if v := c.Get(sessionKey); v != nil {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}
