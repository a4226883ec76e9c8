package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
	"github.com/qtc-soft/schedule-api/internal/session"
)

// ScheduleHandler serves the owner-facing schedule CRUD.  A model instance
// is built per request: the projection comes from the fields query
// parameter and the ownership scope from the session.
type ScheduleHandler struct {
	store    entity.Store
	sessions *session.Store
}

func NewScheduleHandler(store entity.Store, sessions *session.Store) *ScheduleHandler {
	return &ScheduleHandler{store: store, sessions: sessions}
}

func (h *ScheduleHandler) newModel(c echo.Context) (*model.ScheduleModel, error) {
	s := middleware.CurrentSession(c)
	return model.NewScheduleModel(h.store, h.sessions, s.ID, parseFields(c))
}

func (h *ScheduleHandler) Get(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	rows, errs := m.GetEntities(c.Request().Context(), ids, c.QueryParam("name"))
	return respond(c, rows, errs)
}

func (h *ScheduleHandler) Create(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	results, errs := applyBatch(c, items, func(item entity.Row) (entity.Row, []model.ErrorItem) {
		return m.CreateEntity(c.Request().Context(), item)
	})
	return respond(c, results, errs)
}

func (h *ScheduleHandler) Update(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	results, errs := applyBatch(c, items, func(item entity.Row) (entity.Row, []model.ErrorItem) {
		return m.UpdateEntity(c.Request().Context(), item)
	})
	return respond(c, results, errs)
}

func (h *ScheduleHandler) Delete(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok || ids == nil {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	deleted, errs := deleteEach(ids, func(id int64) ([]int64, []model.ErrorItem) {
		return m.DeleteEntity(c.Request().Context(), id)
	})
	return respond(c, deleted, errs)
}
