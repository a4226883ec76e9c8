package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// ScheduleOnlineHandler is the public, read-only catalogue of activated
// schedules.  No session is required; responses are cached by the Redis
// response cache.
type ScheduleOnlineHandler struct {
	store entity.Store
}

func NewScheduleOnlineHandler(store entity.Store) *ScheduleOnlineHandler {
	return &ScheduleOnlineHandler{store: store}
}

func (h *ScheduleOnlineHandler) Get(c echo.Context) error {
	m, err := model.NewScheduleOnlineModel(h.store, parseFields(c))
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	rows, errs := m.GetEntities(c.Request().Context(), ids,
		c.QueryParam("name"), queryIDList(c, "creater_ids"))
	return respond(c, rows, errs)
}
