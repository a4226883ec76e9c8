package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/session"
)

func userFixture(t *testing.T) (*UserHandler, entity.Store, *session.Store) {
	t.Helper()
	store := entity.NewMemStore(entity.Users, []string{"login"})
	for _, login := range []string{"anna", "boris", "vera"} {
		_, err := store.Insert(context.Background(),
			entity.Row{"login": login, "name": login, "password": "x"}, nil)
		require.NoError(t, err)
	}
	return NewUserHandler(store, 4), store, session.NewStore(session.NoACL{}, zerolog.Nop())
}

func sessionFor(t *testing.T, sessions *session.Store, id int64, admin bool) *session.Session {
	t.Helper()
	principal := entity.Row{"id": id}
	if admin {
		principal["flags"] = int64(-4)
	}
	s, err := sessions.Create(context.Background(), principal)
	require.NoError(t, err)
	return s
}

// decodeDeleteEnvelope handles delete responses, whose result is a bare
// list of deleted ids.
func decodeDeleteEnvelope(t *testing.T, body string) (ids []float64, errs []map[string]any) {
	t.Helper()
	var env struct {
		Result []float64        `json:"result"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env.Result, env.Errors
}

func TestUserDeleteSelfPinned(t *testing.T) {
	h, store, sessions := userFixture(t)
	s := sessionFor(t, sessions, 1, false)

	// a non-admin addressing someone else's id still deletes only itself
	c, rec := newContext(t, http.MethodDelete, "/v1/users/2,3", "")
	c.SetParamNames("ids")
	c.SetParamValues("2,3")
	withSession(c, s)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	result, errs := decodeDeleteEnvelope(t, rec.Body.String())
	require.Empty(t, errs)
	require.Len(t, result, 1)
	assert.Equal(t, float64(1), result[0])

	rows, err := store.SelectWhere(context.Background(), []string{"id"}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "accounts 2 and 3 untouched")
}

func TestUserDeleteAdminAddressesOthers(t *testing.T) {
	h, store, sessions := userFixture(t)
	s := sessionFor(t, sessions, 1, true)

	c, rec := newContext(t, http.MethodDelete, "/v1/users/2,3", "")
	c.SetParamNames("ids")
	c.SetParamValues("2,3")
	withSession(c, s)
	require.NoError(t, h.Delete(c))

	result, errs := decodeDeleteEnvelope(t, rec.Body.String())
	require.Empty(t, errs)
	assert.Len(t, result, 2)

	rows, err := store.SelectWhere(context.Background(), []string{"id"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])
}

func TestUserDeleteRequiresExplicitIDs(t *testing.T) {
	h, _, sessions := userFixture(t)
	s := sessionFor(t, sessions, 1, false)

	c, rec := newContext(t, http.MethodDelete, "/v1/users/all", "")
	c.SetParamNames("ids")
	c.SetParamValues("all")
	withSession(c, s)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserGetStripsSecrets(t *testing.T) {
	h, _, sessions := userFixture(t)
	s := sessionFor(t, sessions, 1, false)

	c, rec := newContext(t, http.MethodGet, "/v1/users/1", "")
	c.SetParamNames("ids")
	c.SetParamValues("1")
	withSession(c, s)
	require.NoError(t, h.Get(c))

	result, errs := decodeEnvelope(t, rec.Body.String())
	require.Empty(t, errs)
	require.Len(t, result, 1)
	assert.NotContains(t, result[0], "password")
	assert.NotContains(t, result[0], "email_confirm_key")
}
