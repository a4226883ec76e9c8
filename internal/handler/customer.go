package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
)

// CustomerHandler lets schedule owners see and manage the customers who
// placed orders into their schedules.  Creation is not served here:
// customers come in through customer registration.
type CustomerHandler struct {
	store  entity.Store
	orders entity.Store
}

func NewCustomerHandler(store, orders entity.Store) *CustomerHandler {
	return &CustomerHandler{store: store, orders: orders}
}

func (h *CustomerHandler) newModel(c echo.Context) (*model.CustomerModel, error) {
	s := middleware.CurrentSession(c)
	return model.NewCustomerModel(h.store, h.orders, s.ScheduleIDs(), parseFields(c))
}

func (h *CustomerHandler) Get(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	rows, errs := m.GetEntities(c.Request().Context(), ids,
		queryIDList(c, "schedule_ids"), c.QueryParam("name"))
	return respond(c, rows, errs)
}

func (h *CustomerHandler) Update(c echo.Context) error {
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

func (h *CustomerHandler) Delete(c echo.Context) error {
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
