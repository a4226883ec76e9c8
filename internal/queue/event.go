// Package queue publishes and consumes order lifecycle events over
// RabbitMQ.  Publishing is best-effort: a broker outage never fails the
// originating request.
package queue

// Queue name for order lifecycle events.
const OrderQueueName = "order.events"

// Event kinds.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is published when an order is created or its status changes.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type OrderEvent struct {
	Kind       string `json:"kind"`
	OrderID    int64  `json:"order_id"`
	ScheduleID int64  `json:"schedule_id"`
	CustomerID int64  `json:"customer_id"`
	Status     string `json:"status"`
	PrevStatus string `json:"prev_status,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
