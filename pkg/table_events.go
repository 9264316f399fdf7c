package pkg

import "time"

const (
	// TableStatusTopic delivers authoritative status changes for tables.
	TableStatusTopic = "tables.status"
	// OrderTableTopic groups events emitted by the order core that relate to table operations.
	OrderTableTopic = "orders.tables"

	// EventTableStatusChanged identifies a table status change event payload.
	EventTableStatusChanged = "table.status.changed"
	// EventOrderTableRejected identifies a rejection emitted by the order core.
	EventOrderTableRejected = "order.table.rejected"
)

// TableStatusEvent captures a committed change of a table's status or of its
// current order pointer.
type TableStatusEvent struct {
	EventType      string    `json:"event_type"`
	TableID        string    `json:"table_id"`
	TableNumber    string    `json:"table_number,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CurrentOrderID string    `json:"current_order_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// OrderTableRejectionEvent captures rejections performed by the order core
// whenever a table's state blocks an operation.
type OrderTableRejectionEvent struct {
	EventType  string    `json:"event_type"`
	TableID    string    `json:"table_id"`
	OrderID    string    `json:"order_id,omitempty"`
	Action     string    `json:"action"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
