package order

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/menu"
	"github.com/appetiteclub/pos/internal/money"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
	"github.com/appetiteclub/pos/pkg/enums/paymentmethod"
)

// MinQuantity is the smallest portion that can be ordered (half a pizza).
const MinQuantity = 0.5

// Order is a table's running bill. Items are owned by the order and never
// persisted on their own.
type Order struct {
	ID            uuid.UUID             `json:"id" bson:"_id"`
	OrderNumber   string                `json:"order_number" bson:"order_number"`
	TableID       uuid.UUID             `json:"table_id" bson:"table_id"`
	ActorID       uuid.UUID             `json:"actor_id" bson:"actor_id"`
	Status        orderstatus.Status    `json:"status" bson:"status"`
	Items         []Item                `json:"items" bson:"items"`
	Subtotal      float64               `json:"subtotal" bson:"subtotal"`
	Total         float64               `json:"total" bson:"total"`
	PaymentMethod *paymentmethod.Method `json:"payment_method" bson:"payment_method"`
	PaidAt        *time.Time            `json:"paid_at" bson:"paid_at"`
	Notes         string                `json:"notes" bson:"notes"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy   *uuid.UUID            `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	Version       int64                 `json:"version" bson:"version"`
	CreatedAt     time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at" bson:"updated_at"`
}

// Item is one menu entry of an order. Name, category and unit price are
// copied from the catalog when the item is added and never refreshed.
type Item struct {
	ID              uuid.UUID            `json:"id" bson:"id"`
	MenuItemID      uuid.UUID            `json:"menu_item_id" bson:"menu_item_id"`
	Name            string               `json:"name" bson:"name"`
	Category        string               `json:"category" bson:"category"`
	UnitPrice       float64              `json:"unit_price" bson:"unit_price"`
	Quantity        float64              `json:"quantity" bson:"quantity"`
	TotalPrice      float64              `json:"total_price" bson:"total_price"`
	Note            string               `json:"note" bson:"note"`
	KitchenStatus   kitchenstatus.Status `json:"kitchen_status" bson:"kitchen_status"`
	SentToKitchenAt *time.Time           `json:"sent_to_kitchen_at,omitempty" bson:"sent_to_kitchen_at,omitempty"`
	StartedAt       *time.Time           `json:"started_at,omitempty" bson:"started_at,omitempty"`
	ReadyAt         *time.Time           `json:"ready_at,omitempty" bson:"ready_at,omitempty"`
	DeclinedAt      *time.Time           `json:"declined_at,omitempty" bson:"declined_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func NewOrder(tableID, actorID uuid.UUID, notes string) *Order {
	return &Order{
		ID:      apt.GenerateNewID(),
		TableID: tableID,
		ActorID: actorID,
		Status:  orderstatus.Statuses.Draft,
		Items:   []Item{},
		Notes:   notes,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]Item, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item.clone()
	}
	c.PaymentMethod = clonePtr(o.PaymentMethod)
	c.PaidAt = clonePtr(o.PaidAt)
	c.CancelledAt = clonePtr(o.CancelledAt)
	c.CancelledBy = clonePtr(o.CancelledBy)
	return &c
}

func (i Item) clone() Item {
	i.SentToKitchenAt = clonePtr(i.SentToKitchenAt)
	i.StartedAt = clonePtr(i.StartedAt)
	i.ReadyAt = clonePtr(i.ReadyAt)
	i.DeclinedAt = clonePtr(i.DeclinedAt)
	return i
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IsActive reports whether the order may still hold its table.
func (o *Order) IsActive() bool {
	return !o.Status.Closed()
}

// EnsureOpen rejects mutations of paid and cancelled orders.
func (o *Order) EnsureOpen() error {
	switch o.Status {
	case orderstatus.Statuses.Paid:
		return apperr.Conflict(apperr.ReasonOrderPaid, "Order is already paid").With("order_id", o.ID.String())
	case orderstatus.Statuses.Cancelled:
		return apperr.Conflict(apperr.ReasonOrderCancelled, "Order is cancelled").With("order_id", o.ID.String())
	case orderstatus.Statuses.Draft, orderstatus.Statuses.SentToKitchen,
		orderstatus.Statuses.Cooking, orderstatus.Statuses.Completed:
		return nil
	default:
		return apperr.Conflict(apperr.ReasonOrderClosed, "Order is in an unknown state")
	}
}

// indexOf returns the position of the item with the given id, or -1.
func (o *Order) indexOf(itemID uuid.UUID) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (o *Order) item(itemID uuid.UUID) (*Item, error) {
	idx := o.indexOf(itemID)
	if idx < 0 {
		return nil, apperr.NotFound(apperr.ReasonItemNotFound, "Item not found in order").
			With("order_id", o.ID.String()).
			With("item_id", itemID.String())
	}
	return &o.Items[idx], nil
}

// FindItem returns a copy of the item with the given id.
func (o *Order) FindItem(itemID uuid.UUID) (Item, bool) {
	idx := o.indexOf(itemID)
	if idx < 0 {
		return Item{}, false
	}
	return o.Items[idx], true
}

// ValidateQuantity accepts any portion of at least half a unit.
func ValidateQuantity(quantity float64) error {
	if quantity < MinQuantity {
		return apperr.Validation(apperr.ReasonInvalidQuantity, "Quantity must be at least 0.5").
			With("quantity", quantity)
	}
	return nil
}

// AddItem snapshots the catalog entry into a new pending line.
func (o *Order) AddItem(entry *menu.Item, quantity float64, note string, now time.Time) (*Item, error) {
	if err := o.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if !entry.Available {
		return nil, apperr.Conflict(apperr.ReasonMenuItemInactive, "Menu item is not available").
			With("menu_item_id", entry.ID.String())
	}

	o.Items = append(o.Items, Item{
		ID:            apt.GenerateNewID(),
		MenuItemID:    entry.ID,
		Name:          entry.Name,
		Category:      entry.Category,
		UnitPrice:     entry.Price,
		Quantity:      quantity,
		Note:          note,
		KitchenStatus: kitchenstatus.Statuses.Pending,
		CreatedAt:     now,
	})
	o.RecomputeTotals()

	return &o.Items[len(o.Items)-1], nil
}

// UpdateItem edits quantity and note and recomputes the totals.
func (o *Order) UpdateItem(itemID uuid.UUID, quantity *float64, note *string) error {
	if err := o.EnsureOpen(); err != nil {
		return err
	}

	item, err := o.item(itemID)
	if err != nil {
		return err
	}

	if quantity != nil {
		if err := ValidateQuantity(*quantity); err != nil {
			return err
		}
		item.Quantity = *quantity
	}

	if note != nil {
		item.Note = *note
	}

	o.RecomputeTotals()
	return nil
}

// RemoveItem drops a pending line.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.EnsureOpen(); err != nil {
		return err
	}

	idx := o.indexOf(itemID)
	if idx < 0 {
		_, err := o.item(itemID)
		return err
	}

	if status := o.Items[idx].KitchenStatus; status != kitchenstatus.Statuses.Pending {
		return apperr.Conflict(apperr.ReasonItemAlreadySent, "Cannot remove an item already sent to the kitchen").
			With("item_id", itemID.String()).
			With("kitchen_status", string(status))
	}

	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.RecomputeTotals()
	o.Rollup()
	return nil
}

// RecomputeTotals folds the line totals into subtotal and total. There is no
// tax or discount layer, so both are equal.
func (o *Order) RecomputeTotals() {
	lines := make([]float64, len(o.Items))
	for i := range o.Items {
		o.Items[i].TotalPrice = money.Line(o.Items[i].UnitPrice, o.Items[i].Quantity)
		lines[i] = o.Items[i].TotalPrice
	}
	o.Subtotal = money.Sum(lines...)
	o.Total = o.Subtotal
}

// Cancel closes the order without payment.
func (o *Order) Cancel(by uuid.UUID, now time.Time) error {
	if err := o.EnsureOpen(); err != nil {
		return err
	}
	o.Status = orderstatus.Statuses.Cancelled
	o.CancelledAt = &now
	o.CancelledBy = &by
	return nil
}

// MarkPaid records the payment on the order.
func (o *Order) MarkPaid(method paymentmethod.Method, now time.Time) error {
	if err := o.EnsureOpen(); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return apperr.Conflict(apperr.ReasonOrderEmpty, "Order has no items")
	}
	o.RecomputeTotals()
	o.Status = orderstatus.Statuses.Paid
	o.PaymentMethod = &method
	o.PaidAt = &now
	return nil
}

// Summary counts items per kitchen status.
func (o *Order) Summary() map[kitchenstatus.Status]int {
	counts := make(map[kitchenstatus.Status]int, len(kitchenstatus.All))
	for _, s := range kitchenstatus.All {
		counts[s] = 0
	}
	for _, item := range o.Items {
		counts[item.KitchenStatus]++
	}
	return counts
}
