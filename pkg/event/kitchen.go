package event

import "time"

const (
	KitchenItemsTopic        = "kitchen.items"
	EventKitchenItemSent     = "kitchen.item.sent"
	EventKitchenItemStarted  = "kitchen.item.started"
	EventKitchenItemReady    = "kitchen.item.ready"
	EventKitchenItemDeclined = "kitchen.item.declined"

	// KitchenDisplayTopic carries acknowledgements from kitchen displays.
	// It is persisted in JetStream so no acknowledgement is lost while the
	// order core restarts.
	KitchenDisplayTopic        = "kitchen.display.acks"
	EventKitchenDisplayStarted = "kitchen.display.item_started"
)

type KitchenItemEventMetadata struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ItemID      string    `json:"item_id"`
	TableID     string    `json:"table_id"`

	// Denormalized data for kitchen displays
	MenuItemID string `json:"menu_item_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Category   string `json:"category,omitempty"`
}

// KitchenItemEvent is published whenever a line changes kitchen status.
type KitchenItemEvent struct {
	KitchenItemEventMetadata
	NewStatus      string     `json:"new_status"`
	PreviousStatus string     `json:"previous_status"`
	OrderStatus    string     `json:"order_status"`
	Quantity       float64    `json:"quantity"`
	Note           string     `json:"note,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	ReadyAt        *time.Time `json:"ready_at,omitempty"`
	DeclinedAt     *time.Time `json:"declined_at,omitempty"`
}

// KitchenDisplayEvent is emitted by a kitchen display when a cook picks a
// line up.
type KitchenDisplayEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	ItemID     string    `json:"item_id"`
	Station    string    `json:"station,omitempty"`
}
