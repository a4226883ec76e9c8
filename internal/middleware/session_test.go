package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/session"
)

const testHeader = "X-AccessToken"

func newSessionStore(t *testing.T) (*session.Store, *session.Session) {
	t.Helper()
	st := session.NewStore(session.NoACL{}, zerolog.Nop())
	s, err := st.Create(context.Background(), entity.Row{"id": int64(1), "login": "anna"})
	require.NoError(t, err)
	return st, s
}

func runChain(t *testing.T, st *session.Store, token string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(testHeader, token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	// guards wrap the handler; LoadSession runs outermost so they can see
	// the session
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, LoadSession(st, testHeader)(h)(c))
	return rec, reached
}

func TestLoadSessionResolvesToken(t *testing.T) {
	st, s := newSessionStore(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(testHeader, s.SID)
	c := e.NewContext(req, httptest.NewRecorder())

	var got *session.Session
	h := LoadSession(st, testHeader)(func(c echo.Context) error {
		got = CurrentSession(c)
		return nil
	})
	require.NoError(t, h(c))
	assert.Same(t, s, got)
}

func TestLoadSessionUnknownTokenIsAnonymous(t *testing.T) {
	st, _ := newSessionStore(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(testHeader, "bogus")
	c := e.NewContext(req, httptest.NewRecorder())

	h := LoadSession(st, testHeader)(func(c echo.Context) error {
		assert.Nil(t, CurrentSession(c))
		return nil
	})
	require.NoError(t, h(c))
}

func TestRequireSessionBlocksAnonymous(t *testing.T) {
	st, _ := newSessionStore(t)
	rec, reached := runChain(t, st, "", RequireSession())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)
}

func TestRequireSessionPassesAuthenticated(t *testing.T) {
	st, s := newSessionStore(t)
	rec, reached := runChain(t, st, s.SID, RequireSession())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}

func TestRequireAdmin(t *testing.T) {
	st, user := newSessionStore(t)
	admin, err := st.Create(context.Background(), entity.Row{"id": int64(2), "flags": int64(-4)})
	require.NoError(t, err)

	rec, reached := runChain(t, st, user.SID, RequireSession(), RequireAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)

	rec, reached = runChain(t, st, admin.SID, RequireSession(), RequireAdmin())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
