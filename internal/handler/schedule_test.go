package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/model"
	"github.com/qtc-soft/schedule-api/internal/session"
)

func scheduleFixture(t *testing.T) (*ScheduleHandler, *session.Session) {
	t.Helper()
	store := entity.NewMemStore(entity.Schedules, []string{"name"})
	sessions := session.NewStore(model.NewScheduleACL(store), zerolog.Nop())
	s, err := sessions.Create(context.Background(), entity.Row{"id": int64(1), "login": "anna"})
	require.NoError(t, err)
	return NewScheduleHandler(store, sessions), s
}

func withSession(c echo.Context, s *session.Session) {
	c.Set("session", s)
}

func decodeEnvelope(t *testing.T, body string) (result []map[string]any, errs []map[string]any) {
	t.Helper()
	var env struct {
		Result []map[string]any `json:"result"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env.Result, env.Errors
}

func TestScheduleCreateAndGet(t *testing.T) {
	h, s := scheduleFixture(t)

	c, rec := newContext(t, http.MethodPost, "/v1/schedules", `{"name":"main"}`)
	withSession(c, s)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusOK, rec.Code)

	result, errs := decodeEnvelope(t, rec.Body.String())
	require.Empty(t, errs)
	require.Len(t, result, 1)
	assert.Equal(t, float64(1), result[0]["creater_id"])

	// the session ACL picked up the new schedule without a new login
	assert.True(t, s.AllowsSchedule(int64(result[0]["id"].(float64))))

	c, rec = newContext(t, http.MethodGet, "/v1/schedules/all", "")
	c.SetParamNames("ids")
	c.SetParamValues("all")
	withSession(c, s)
	require.NoError(t, h.Get(c))

	result, errs = decodeEnvelope(t, rec.Body.String())
	require.Empty(t, errs)
	assert.Len(t, result, 1)
}

func TestScheduleBatchPartialSuccess(t *testing.T) {
	h, s := scheduleFixture(t)

	body := `[{"name":"one"},{"name":"one"},{"name":"two"}]`
	c, rec := newContext(t, http.MethodPost, "/v1/schedules", body)
	withSession(c, s)
	require.NoError(t, h.Create(c))

	result, errs := decodeEnvelope(t, rec.Body.String())
	assert.Len(t, result, 2, "valid items succeed")
	require.Len(t, errs, 1, "the duplicate fails alone")
	assert.Equal(t, "name", errs[0]["selector"])
	assert.Equal(t, "Record already exists", errs[0]["reason"])
}

func TestScheduleGetBadFields(t *testing.T) {
	h, s := scheduleFixture(t)

	c, rec := newContext(t, http.MethodGet, "/v1/schedules/all?fields=bogus", "")
	c.SetParamNames("ids")
	c.SetParamValues("all")
	withSession(c, s)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleDeleteRequiresExplicitIDs(t *testing.T) {
	h, s := scheduleFixture(t)

	c, rec := newContext(t, http.MethodDelete, "/v1/schedules/all", "")
	c.SetParamNames("ids")
	c.SetParamValues("all")
	withSession(c, s)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
