package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/middleware"
	"github.com/qtc-soft/schedule-api/internal/model"
	"github.com/qtc-soft/schedule-api/internal/queue"
)

// OrderHandler serves the owner-facing order CRUD.  Reads come back grouped
// by schedule id; successful creates and status changes are announced on
// the order events queue.
type OrderHandler struct {
	store     entity.Store
	schedules entity.Store
	events    *queue.Publisher
}

func NewOrderHandler(store, schedules entity.Store, events *queue.Publisher) *OrderHandler {
	return &OrderHandler{store: store, schedules: schedules, events: events}
}

func (h *OrderHandler) newModel(c echo.Context) (*model.OrderModel, error) {
	s := middleware.CurrentSession(c)
	return model.NewOrderModel(h.store, h.schedules, s.ScheduleIDs(), s.ID, parseFields(c))
}

func (h *OrderHandler) Get(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	ids, ok := parseIDs(c)
	if !ok {
		return badRequest(c, "ids", model.ReasonNoValidData)
	}
	grouped, errs := m.GetEntities(c.Request().Context(), ids,
		queryIDList(c, "schedule_ids"), queryIDList(c, "customer_ids"), c.QueryParam("status"))
	return respond(c, grouped, errs)
}

func (h *OrderHandler) Create(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	results, errs := applyBatch(c, items, func(item entity.Row) (entity.Row, []model.ErrorItem) {
		row, itemErrs := m.CreateEntity(c.Request().Context(), item)
		if itemErrs == nil {
			h.publish(c, queue.OrderCreated, row, "")
		}
		return row, itemErrs
	})
	return respond(c, results, errs)
}

func (h *OrderHandler) Update(c echo.Context) error {
	m, err := h.newModel(c)
	if err != nil {
		return respondModelErr(c, err)
	}
	items, err := decodeItems(c)
	if err != nil {
		return badRequest(c, "body", model.ReasonNoValidData)
	}
	results, errs := applyBatch(c, items, func(item entity.Row) (entity.Row, []model.ErrorItem) {
		prev := h.currentStatus(c, m, item["id"])
		row, itemErrs := m.UpdateEntity(c.Request().Context(), item)
		if itemErrs == nil {
			if status, ok := row["status"].(string); ok && status != prev {
				h.publish(c, queue.OrderStatusChanged, row, prev)
			}
		}
		return row, itemErrs
	})
	return respond(c, results, errs)
}

func (h *OrderHandler) Delete(c echo.Context) error {
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

// currentStatus snapshots the order's status before an update so status
// changes can be announced with their previous value.
func (h *OrderHandler) currentStatus(c echo.Context, m *model.OrderModel, idVal any) string {
	status, _ := m.CurrentStatus(c.Request().Context(), idVal)
	return status
}

// publish emits an order event; failures are swallowed so the request
// outcome never depends on the broker.
func (h *OrderHandler) publish(c echo.Context, kind string, row entity.Row, prev string) {
	id, _ := entity.AsInt64(row["id"])
	schedID, _ := entity.AsInt64(row["schedule_id"])
	custID, _ := entity.AsInt64(row["customer_id"])
	status, _ := row["status"].(string)
	_ = h.events.Publish(c.Request().Context(), queue.OrderEvent{
		Kind:       kind,
		OrderID:    id,
		ScheduleID: schedID,
		CustomerID: custID,
		Status:     status,
		PrevStatus: prev,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
