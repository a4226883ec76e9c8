package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// ReferenceHandler serves a reference table (countries, cities).  Reads are
// open to any session; mutation routes are mounted behind the admin gate.
type ReferenceHandler struct {
	store entity.Store
}

func NewReferenceHandler(store entity.Store) *ReferenceHandler {
	return &ReferenceHandler{store: store}
}

func (h *ReferenceHandler) newModel(c echo.Context) (*model.ReferenceModel, error) {
	return model.NewReferenceModel(h.store, parseFields(c))
}

func (h *ReferenceHandler) Get(c echo.Context) error {
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

func (h *ReferenceHandler) Create(c echo.Context) error {
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

func (h *ReferenceHandler) Update(c echo.Context) error {
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

func (h *ReferenceHandler) Delete(c echo.Context) error {
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
