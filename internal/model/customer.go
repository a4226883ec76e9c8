package model

import (
	"context"

	"github.com/qtc-soft/schedule-api/internal/entity"
	"github.com/qtc-soft/schedule-api/internal/validation"
)

// CustomerModel is the owner-facing view over customers.  A schedule owner
// may only see customers that placed an order against one of their allowed
// schedules; the scope is a two-hop join implemented as two sequential
// scoped queries (orders first, then customers), not a SQL join.
type CustomerModel struct {
	base
	allowedScheduleIDs []int64
	orders             entity.Store
}

// NewCustomerModel builds a customer model scoped by the session's allowed
// schedules.
func NewCustomerModel(store, orders entity.Store, allowedScheduleIDs []int64, selectFields []string) (*CustomerModel, error) {
	b, err := newBase(store, selectFields, nil,
		validation.CustomerCreate, validation.CustomerUpdate, "login")
	if err != nil {
		return nil, err
	}
	return &CustomerModel{base: b, allowedScheduleIDs: allowedScheduleIDs, orders: orders}, nil
}

// GetEntities resolves the customer ids reachable through the caller's
// orders and then selects those customer rows, optionally narrowed by id
// set, schedule subset and a name substring.
func (m *CustomerModel) GetEntities(ctx context.Context, ids []int64, scheduleIDs []int64, filterName string) ([]entity.Row, []ErrorItem) {
	reachable, errs := m.reachableCustomerIDs(ctx, scheduleIDs)
	if errs != nil {
		return nil, errs
	}

	allowed := reachable
	if len(ids) > 0 {
		allowed = intersect(reachable, ids)
	}

	conds := []entity.Cond{entity.In("id", allowed)}
	if filterName != "" {
		conds = append(conds, entity.Contains("name", filterName))
	}
	rows, err := m.store.SelectWhere(ctx, m.selectFields, conds)
	if err != nil {
		return nil, []ErrorItem{m.errItem("ids", ReasonExecuteError, nil)}
	}
	return rows, m.reconcileIDs(ids, rows)
}

// UpdateEntity mutates a customer reachable through the caller's orders.
func (m *CustomerModel) UpdateEntity(ctx context.Context, data entity.Row) (entity.Row, []ErrorItem) {
	id, ok := entity.AsInt64(data["id"])
	if !ok {
		return nil, []ErrorItem{m.errItem("id", ReasonNoValidData, nil)}
	}
	if errs := m.requireReachable(ctx, id); errs != nil {
		return nil, errs
	}
	return m.base.UpdateEntity(ctx, data, true)
}

// DeleteEntity removes a customer reachable through the caller's orders.
func (m *CustomerModel) DeleteEntity(ctx context.Context, id int64) ([]int64, []ErrorItem) {
	if errs := m.requireReachable(ctx, id); errs != nil {
		return nil, errs
	}
	return m.base.DeleteEntity(ctx, id)
}

// reachableCustomerIDs runs the first hop: customer ids of every order
// placed against the allowed schedules, optionally narrowed to a subset.
func (m *CustomerModel) reachableCustomerIDs(ctx context.Context, scheduleIDs []int64) ([]int64, []ErrorItem) {
	allowed := m.allowedScheduleIDs
	if len(scheduleIDs) > 0 {
		allowed = intersect(m.allowedScheduleIDs, scheduleIDs)
	}
	rows, err := m.orders.SelectWhere(ctx, []string{"customer_id"}, []entity.Cond{entity.In("schedule_id", allowed)})
	if err != nil {
		return nil, []ErrorItem{m.errItem("ids", ReasonExecuteError, nil)}
	}
	seen := map[int64]bool{}
	var ids []int64
	for _, r := range rows {
		if id, ok := entity.AsInt64(r["customer_id"]); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// requireReachable reports Not found when the customer has no order inside
// the caller's scope.  Out-of-scope and nonexistent customers produce the
// same item on purpose.
func (m *CustomerModel) requireReachable(ctx context.Context, id int64) []ErrorItem {
	rows, err := m.orders.SelectWhere(ctx, []string{"id"}, []entity.Cond{
		entity.Eq("customer_id", id),
		entity.In("schedule_id", m.allowedScheduleIDs),
	})
	if err != nil {
		return []ErrorItem{m.errItem("id", ReasonExecuteError, id)}
	}
	if len(rows) == 0 {
		return []ErrorItem{m.errItem("id", ReasonNotFound, id)}
	}
	return nil
}

func intersect(a, b []int64) []int64 {
	inB := make(map[int64]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var out []int64
	for _, v := range a {
		if inB[v] {
			out = append(out, v)
		}
	}
	return out
}
