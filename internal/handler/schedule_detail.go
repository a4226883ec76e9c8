package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// ScheduleDetailHandler serves the time-slot CRUD.  Visibility is the
// session's owned-schedule set; writes into foreign schedules are refused
// before touching storage.
type ScheduleDetailHandler struct {
	store entity.Store
}

func NewScheduleDetailHandler(store entity.Store) *ScheduleDetailHandler {
	return &ScheduleDetailHandler{store: store}
}

func (h *ScheduleDetailHandler) newModel(c echo.Context) (*model.ScheduleDetailModel, error) {
	s := middleware.CurrentSession(c)
	return model.NewScheduleDetailModel(h.store, s.ScheduleIDs(), parseFields(c))
}

func (h *ScheduleDetailHandler) Get(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	rows, errs := m.GetEntities(c.Request().Context(), ids, queryIDList(c, "schedule_ids"))
	return respond(c, rows, errs)
}

func (h *ScheduleDetailHandler) Create(c echo.Context) error {
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

func (h *ScheduleDetailHandler) Update(c echo.Context) error {
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

func (h *ScheduleDetailHandler) Delete(c echo.Context) error {
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
