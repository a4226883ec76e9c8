package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtc-soft/schedule-api/internal/entity"
)

// customerFixture seeds three customers and orders linking two of them to
// schedule 1; customer 3 has only an order against foreign schedule 9.
func customerFixture(t *testing.T) (*entity.MemStore, *entity.MemStore) {
	t.Helper()
	ctx := context.Background()

	customers := entity.NewMemStore(entity.Customers, []string{"login"})
	for _, acc := range []entity.Row{
		{"login": "anna1", "name": "Anna"},
		{"login": "bert1", "name": "Bert"},
		{"login": "carl1", "name": "Carla"},
	} {
		_, err := customers.Insert(ctx, acc, nil)
		require.NoError(t, err)
	}

	orders := entity.NewMemStore(entity.Orders)
	for _, o := range []entity.Row{
		{"schedule_id": int64(1), "customer_id": int64(1)},
		{"schedule_id": int64(1), "customer_id": int64(2)},
		{"schedule_id": int64(9), "customer_id": int64(3)},
	} {
		_, err := orders.Insert(ctx, o, nil)
		require.NoError(t, err)
	}
	return customers, orders
}

func TestCustomerTwoHopVisibility(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	rows, errs := m.GetEntities(context.Background(), nil, nil, "")
	require.Empty(t, errs)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, int64(2), rows[1]["id"])
}

func TestCustomerForeignIDNotFound(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	rows, errs := m.GetEntities(context.Background(), []int64{3}, nil, "")
	assert.Empty(t, rows)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNotFound, errs[0].Reason)
	assert.Equal(t, int64(3), errs[0].Value)
}

func TestCustomerNameFilter(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	rows, errs := m.GetEntities(context.Background(), nil, nil, "bert")
	require.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bert", rows[0]["name"])
}

func TestCustomerScheduleSubsetFilter(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	// requesting a schedule outside the allowed set intersects to nothing
	rows, errs := m.GetEntities(context.Background(), nil, []int64{9}, "")
	require.Empty(t, errs)
	assert.Empty(t, rows)
}

func TestCustomerUpdateUnreachable(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	row, errs := m.UpdateEntity(context.Background(), entity.Row{"id": float64(3), "name": "Hacked"})
	assert.Nil(t, row)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNotFound, errs[0].Reason)
}

func TestCustomerUpdateReachable(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	row, errs := m.UpdateEntity(context.Background(), entity.Row{"id": float64(1), "name": "Anna B"})
	require.Empty(t, errs)
	assert.Equal(t, "Anna B", row["name"])
}

func TestCustomerDeleteUnreachable(t *testing.T) {
	customers, orders := customerFixture(t)
	m, err := NewCustomerModel(customers, orders, []int64{1}, nil)
	require.NoError(t, err)

	res, errs := m.DeleteEntity(context.Background(), 3)
	assert.Nil(t, res)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonNotFound, errs[0].Reason)

	res, errs = m.DeleteEntity(context.Background(), 2)
	require.Empty(t, errs)
	assert.Equal(t, []int64{2}, res)
}
