package event

import "time"

const (
	OrderLifecycleTopic   = "orders.lifecycle"
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderItemAdded   = "order.item.added"
	EventOrderItemUpdated = "order.item.updated"
	EventOrderItemRemoved = "order.item.removed"
	EventOrderDiscarded   = "order.discarded"
	EventOrderDeleted     = "order.deleted"
	EventOrderCancelled   = "order.cancelled"
	EventOrderPaid        = "order.paid"
)

// OrderEvent is published to NATS on every committed order mutation.
// Reporting consumers rebuild their projections from these payloads.
type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TableID     string    `json:"table_id"`
	ActorID     string    `json:"actor_id"`
	Status      string    `json:"status"`
	ItemID      string    `json:"item_id,omitempty"`
	ItemCount   int       `json:"item_count"`
	Total       float64   `json:"total"`

	// Set on order.paid only
	PaymentMethod string `json:"payment_method,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}
