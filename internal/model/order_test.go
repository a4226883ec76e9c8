package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
)

// orderFixture wires an order model with two owned schedules for creator 1.
func orderFixture(t *testing.T) (*OrderModel, *entity.MemStore) {
	t.Helper()
	schedules := entity.NewMemStore(entity.Schedules, []string{"name"})
	ctx := context.Background()
	for _, name := range []string{"first", "second"} {
		_, err := schedules.Insert(ctx, entity.Row{"name": name, "creater_id": int64(1)}, nil)
		require.NoError(t, err)
	}
	orders := entity.NewMemStore(entity.Orders)
	m, err := NewOrderModel(orders, schedules, []int64{1, 2}, 1, nil)
	require.NoError(t, err)
	return m, orders
}

func placeOrder(t *testing.T, m *OrderModel, scheduleID, customerID float64) entity.Row {
	t.Helper()
	row, errs := m.CreateEntity(context.Background(), entity.Row{
		"time":        float64(1700000000),
		"schedule_id": scheduleID,
		"customer_id": customerID,
	})
	require.Empty(t, errs)
	require.NotNil(t, row)
	return row
}

func TestOrderCreateDefaultsToBooking(t *testing.T) {
	m, _ := orderFixture(t)
	row := placeOrder(t, m, 1, 5)
	assert.Equal(t, entity.OrderStatusBooking, row["status"])
}

func TestOrderCreateOutsideAllowedSet(t *testing.T) {
	m, orders := orderFixture(t)

	row, errs := m.CreateEntity(context.Background(), entity.Row{
		"time":        float64(1700000000),
		"schedule_id": float64(9),
		"customer_id": float64(5),
	})
	assert.Nil(t, row)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNoSchedule, errs[0].Reason)

	rows, err := orders.SelectWhere(context.Background(), []string{"id"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOrderCreateRequiresCustomer(t *testing.T) {
	m, _ := orderFixture(t)
	_, errs := m.CreateEntity(context.Background(), entity.Row{
		"time":        float64(1700000000),
		"schedule_id": float64(1),
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "customer_id", errs[0].Selector)
}

func TestOrderGetGroupsBySchedule(t *testing.T) {
	m, _ := orderFixture(t)
	ctx := context.Background()

	placeOrder(t, m, 1, 5)
	placeOrder(t, m, 1, 6)
	placeOrder(t, m, 2, 5)

	grouped, errs := m.GetEntities(ctx, nil, nil, nil, "")
	require.Empty(t, errs)
	assert.Len(t, grouped[1], 2)
	assert.Len(t, grouped[2], 1)

	// filter by customer
	grouped, _ = m.GetEntities(ctx, nil, nil, []int64{6}, "")
	assert.Len(t, grouped[1], 1)
	assert.Empty(t, grouped[2])

	// filter by status
	grouped, _ = m.GetEntities(ctx, nil, nil, nil, entity.OrderStatusPaid)
	assert.Empty(t, grouped)
}

func TestOrderStatusTransitions(t *testing.T) {
	m, _ := orderFixture(t)
	ctx := context.Background()
	row := placeOrder(t, m, 1, 5)
	id := float64(row["id"].(int64))

	// booking -> paid skips confirmation and is illegal
	_, errs := m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "status": entity.OrderStatusPaid})
	require.Len(t, errs, 1)
	assert.Equal(t, "status", errs[0].Selector)
	assert.Equal(t, "Illegal status transition", errs[0].Reason)

	// booking -> confirmed -> paid is the happy path
	got, errs := m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "status": entity.OrderStatusConfirmed})
	require.Empty(t, errs)
	assert.Equal(t, entity.OrderStatusConfirmed, got["status"])

	got, errs = m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "status": entity.OrderStatusPaid})
	require.Empty(t, errs)
	assert.Equal(t, entity.OrderStatusPaid, got["status"])

	// paid is terminal
	_, errs = m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "status": entity.OrderStatusBooking})
	require.Len(t, errs, 1)
	assert.Equal(t, "Illegal status transition", errs[0].Reason)
}

func TestOrderIdempotentStatusUpdate(t *testing.T) {
	m, _ := orderFixture(t)
	ctx := context.Background()
	row := placeOrder(t, m, 1, 5)
	id := float64(row["id"].(int64))

	got, errs := m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "status": entity.OrderStatusBooking})
	require.Empty(t, errs)
	assert.Equal(t, entity.OrderStatusBooking, got["status"])
}

func TestOrderUpdateReChecksOwnershipAgainstStorage(t *testing.T) {
	m, _ := orderFixture(t)
	ctx := context.Background()
	row := placeOrder(t, m, 1, 5)
	id := float64(row["id"].(int64))

	// schedule 3 exists for another creator
	other, err := NewOrderModel(entity.NewMemStore(entity.Orders), entity.NewMemStore(entity.Schedules), []int64{1}, 2, nil)
	require.NoError(t, err)
	_, errs := other.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1)})
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNoSchedule, errs[0].Reason)

	_, errs = m.UpdateEntity(ctx, entity.Row{"id": id, "schedule_id": float64(1), "description": "updated"})
	assert.Empty(t, errs)
}

func TestOrderCurrentStatusScoped(t *testing.T) {
	m, _ := orderFixture(t)
	row := placeOrder(t, m, 1, 5)
	id := row["id"].(int64)

	status, ok := m.CurrentStatus(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, entity.OrderStatusBooking, status)

	_, ok = m.CurrentStatus(context.Background(), id+100)
	assert.False(t, ok)
}

func TestOrderCreateRefusesNonBookingEntry(t *testing.T) {
	m, orders := orderFixture(t)
	ctx := context.Background()

	for _, status := range []string{entity.OrderStatusConfirmed, entity.OrderStatusPaid, entity.OrderStatusRejected} {
		row, errs := m.CreateEntity(ctx, entity.Row{
			"time":        float64(1700000000),
			"schedule_id": float64(1),
			"customer_id": float64(5),
			"status":      status,
		})
		assert.Nil(t, row)
		require.Len(t, errs, 1)
		assert.Equal(t, "status", errs[0].Selector)
		assert.Equal(t, "Illegal status transition", errs[0].Reason)
	}

	rows, err := orders.SelectWhere(ctx, []string{"id"}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "refused entry states never reach storage")

	// an explicit booking status is the one legal entry state
	row, errs := m.CreateEntity(ctx, entity.Row{
		"time":        float64(1700000000),
		"schedule_id": float64(1),
		"customer_id": float64(5),
		"status":      entity.OrderStatusBooking,
	})
	require.Empty(t, errs)
	assert.Equal(t, entity.OrderStatusBooking, row["status"])
}
