package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// OrderModel is the owner-facing view over bookings.  Reads are scoped to
// orders whose schedule_id falls inside the session's allowed set and come
// back grouped by schedule, which is how schedule owners consume
// multi-schedule order data.  Status updates are validated against the
// order state machine.
type OrderModel struct {
	base
	allowedScheduleIDs []int64
	createrID          int64
	schedules          entity.Store
}

// NewOrderModel builds an order model scoped by the session's allowed
// schedules.  The schedule store backs the ownership re-check on update.
func NewOrderModel(store, schedules entity.Store, allowedScheduleIDs []int64, createrID int64, selectFields []string) (*OrderModel, error) {
	b, err := newBase(store, selectFields,
		[]entity.Cond{entity.In("schedule_id", allowedScheduleIDs)},
		validation.OrderCreate, validation.OrderUpdate, "time")
	if err != nil {
		return nil, err
	}
	return &OrderModel{base: b, allowedScheduleIDs: allowedScheduleIDs, createrID: createrID, schedules: schedules}, nil
}

// GetEntities selects orders narrowed by the optional filters and groups
// the result rows by schedule_id.
func (m *OrderModel) GetEntities(ctx context.Context, ids []int64, scheduleIDs, customerIDs []int64, status string) (map[int64][]entity.Row, []ErrorItem) {
	var extra []entity.Cond
	if len(scheduleIDs) > 0 {
		extra = append(extra, entity.In("schedule_id", scheduleIDs))
	}
	if len(customerIDs) > 0 {
		extra = append(extra, entity.In("customer_id", customerIDs))
	}
	if status != "" {
		extra = append(extra, entity.Eq("status", status))
	}

	rows, errs := m.base.GetEntities(ctx, ids, extra...)
	grouped := make(map[int64][]entity.Row)
	for _, row := range rows {
		sid, ok := entity.AsInt64(row["schedule_id"])
		if !ok {
			continue
		}
		grouped[sid] = append(grouped[sid], row)
	}
	return grouped, errs
}

// CreateEntity places an order.  Both the target schedule and the ordering
// customer must be supplied; a schedule outside the caller's allowed set is
// rejected before any insert.  Every order enters in the booking status:
// the later states are reachable only through update transitions.
func (m *OrderModel) CreateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	if !containsID(m.allowedScheduleIDs, data["schedule_id"]) {
		return nil, []ErrorItem{m.errItem("id", ReasonNoSchedule, data["schedule_id"])}
	}
	if _, ok := entity.AsInt64(data["customer_id"]); !ok {
		return nil, []ErrorItem{m.errItem("customer_id", ReasonNoValidData, nil)}
	}
	if st, ok := data["status"].(string); ok && st != entity.OrderStatusBooking {
		return nil, []ErrorItem{m.errItem("status", "Illegal status transition", st)}
	}
	data["status"] = entity.OrderStatusBooking
	return m.base.CreateEntity(ctx, data, true)
}

// UpdateEntity mutates an order.  Ownership of the target schedule is
// re-checked against storage rather than the cached set, and a status
// change must be a legal transition from the order's current status.
func (m *OrderModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	schedID, ok := entity.AsInt64(data["schedule_id"])
	if !ok {
		return nil, []ErrorItem{m.errItem("id", ReasonNoSchedule, data["schedule_id"])}
	}
	owned, err := m.schedules.SelectWhere(ctx, []string{"id"}, []entity.Cond{
		entity.Eq("creater_id", m.createrID),
		entity.Eq("id", schedID),
	})
	if err != nil {
		return nil, []ErrorItem{m.errItem("id", ReasonExecuteError, schedID)}
	}
	if len(owned) == 0 {
		return nil, []ErrorItem{m.errItem("id", ReasonNoSchedule, schedID)}
	}

	if next, ok := data["status"].(string); ok {
		if errs := m.checkTransition(ctx, data["id"], next); len(errs) > 0 {
			return nil, errs
		}
	}
	return m.base.UpdateEntity(ctx, data, true)
}

// CurrentStatus reads the order's status under the caller's scope.  ok is
// false when the order is not visible.
func (m *OrderModel) CurrentStatus(ctx context.Context, idVal any) (string, bool) {
	id, ok := entity.AsInt64(idVal)
	if !ok {
		return "", false
	}
	conds := append(m.conditions(), entity.Eq("id", id))
	rows, err := m.store.SelectWhere(ctx, []string{"status"}, conds)
	if err != nil || len(rows) == 0 {
		return "", false
	}
	status, _ := rows[0]["status"].(string)
	return status, true
}

// checkTransition loads the order's current status under scope and verifies
// the requested transition.
func (m *OrderModel) checkTransition(ctx context.Context, idVal any, next string) []ErrorItem {
	id, ok := entity.AsInt64(idVal)
	if !ok {
		return []ErrorItem{m.errItem("id", ReasonNoValidData, nil)}
	}
	conds := append(m.conditions(), entity.Eq("id", id))
	rows, err := m.store.SelectWhere(ctx, []string{"status"}, conds)
	if err != nil {
		return []ErrorItem{m.errItem("id", ReasonExecuteError, id)}
	}
	if len(rows) == 0 {
		return []ErrorItem{m.errItem("id", ReasonNotFound, id)}
	}
	current, _ := rows[0]["status"].(string)
	if !entity.OrderStatusAllowed(current, next) {
		return []ErrorItem{m.errItem("status", "Illegal status transition", current + " -> " + next)}
	}
	return nil
}

func containsID(ids []int64, v any) bool {
	id, ok := entity.AsInt64(v)
	if !ok {
		return false
	}
	for _, a := range ids {
		if a == id {
			return true
		}
	}
	return false
}
