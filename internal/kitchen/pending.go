package kitchen

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

// PendingItem is one row of the kitchen display feed.
type PendingItem struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	OrderStatus orderstatus.Status `json:"order_status"`
	TableID     uuid.UUID          `json:"table_id"`
	TableNumber string             `json:"table_number"`
	ActorID     uuid.UUID          `json:"actor_id"`
	Item        PendingLine        `json:"item"`

	position int
}

type PendingLine struct {
	ID              uuid.UUID            `json:"id"`
	MenuItemID      uuid.UUID            `json:"menu_item_id"`
	Name            string               `json:"name"`
	Category        string               `json:"category"`
	Quantity        float64              `json:"quantity"`
	Note            string               `json:"note"`
	Status          kitchenstatus.Status `json:"status"`
	SentToKitchenAt *time.Time           `json:"sent_to_kitchen_at"`
}

// flattenPending lists the non terminal lines of orders the kitchen is
// working on.
func flattenPending(orders []*order.Order) []PendingItem {
	var feed []PendingItem
	for _, o := range orders {
		if !o.Status.InKitchen() {
			continue
		}
		for i, item := range o.Items {
			if item.KitchenStatus.Terminal() {
				continue
			}
			feed = append(feed, PendingItem{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				OrderStatus: o.Status,
				TableID:     o.TableID,
				ActorID:     o.ActorID,
				Item: PendingLine{
					ID:              item.ID,
					MenuItemID:      item.MenuItemID,
					Name:            item.Name,
					Category:        item.Category,
					Quantity:        item.Quantity,
					Note:            item.Note,
					Status:          item.KitchenStatus,
					SentToKitchenAt: item.SentToKitchenAt,
				},
				position: i,
			})
		}
	}
	return feed
}

// sortPending orders the feed oldest first. Lines never sent have no
// timestamp and count as oldest. Ties fall back to order number and then to
// the line's position in its order.
func sortPending(feed []PendingItem) {
	sort.SliceStable(feed, func(i, j int) bool {
		a, b := feed[i].Item.SentToKitchenAt, feed[j].Item.SentToKitchenAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		if feed[i].OrderNumber != feed[j].OrderNumber {
			return feed[i].OrderNumber < feed[j].OrderNumber
		}
		return feed[i].position < feed[j].position
	})
}

// OrderKitchenStatus groups an order's lines by kitchen status.
type OrderKitchenStatus struct {
	OrderID     uuid.UUID                             `json:"order_id"`
	OrderNumber string                                `json:"order_number"`
	Status      orderstatus.Status                    `json:"status"`
	Items       map[kitchenstatus.Status][]order.Item `json:"items"`
	Summary     map[kitchenstatus.Status]int          `json:"summary"`
}

func newOrderKitchenStatus(o *order.Order) OrderKitchenStatus {
	grouped := make(map[kitchenstatus.Status][]order.Item, len(kitchenstatus.All))
	for _, s := range kitchenstatus.All {
		grouped[s] = []order.Item{}
	}
	for _, item := range o.Items {
		grouped[item.KitchenStatus] = append(grouped[item.KitchenStatus], item)
	}
	return OrderKitchenStatus{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Items:       grouped,
		Summary:     o.Summary(),
	}
}
