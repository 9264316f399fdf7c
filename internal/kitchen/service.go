// Package kitchen drives the per-line preparation state of orders: sending
// pending lines, recording outcomes reported by the kitchen, and the feed
// kitchen displays poll or stream.
package kitchen

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
	"github.com/appetiteclub/pos/pkg/event"
)

// TableDirectory resolves table numbers for the feed.
type TableDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*tables.Table, error)
}

// Broadcaster pushes committed line transitions to connected displays.
type Broadcaster interface {
	Broadcast(evt event.KitchenItemEvent)
}

type Service struct {
	orders    order.OrderRepo
	tables    TableDirectory
	publisher events.Publisher
	feed      Broadcaster
	logger    apt.Logger
	now       func() time.Time
}

func NewService(orders order.OrderRepo, tableDir TableDirectory, publisher events.Publisher, feed Broadcaster, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Service{
		orders:    orders,
		tables:    tableDir,
		publisher: publisher,
		feed:      feed,
		logger:    logger,
		now:       time.Now,
	}
}

// SendToKitchen moves every pending line of the order to sent.
func (s *Service) SendToKitchen(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*order.Order, error) {
	var sent []order.Transition
	o, err := order.Mutate(ctx, s.orders, orderID, func(o *order.Order) (bool, error) {
		if err := order.EnsureOwner(actor, o); err != nil {
			return false, err
		}
		transitions, err := o.SendPendingToKitchen(s.now())
		if err != nil {
			return false, err
		}
		sent = transitions
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log().Info("items sent to kitchen", "order_id", o.ID.String(), "order_number", o.OrderNumber, "count", len(sent))
	for _, tr := range sent {
		s.emit(ctx, event.EventKitchenItemSent, o, tr)
	}
	return o, nil
}

// UpdateItemStatus records ready or declined for a line. Repeating the
// current status succeeds without a write.
func (s *Service) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status string) (*order.Order, error) {
	target := kitchenstatus.ByName(status)
	if target == nil {
		return nil, apperr.Validation(apperr.ReasonInvalidStatus, "Kitchen status must be ready or declined").
			With("status", status)
	}

	var tr *order.Transition
	o, err := order.Mutate(ctx, s.orders, orderID, func(o *order.Order) (bool, error) {
		transition, err := o.SetItemOutcome(itemID, *target, s.now())
		if err != nil {
			return false, err
		}
		tr = transition
		return tr != nil, nil
	})
	if err != nil {
		return nil, err
	}

	if tr == nil {
		s.log().Debug("item status unchanged", "order_id", orderID.String(), "item_id", itemID.String(), "status", status)
		return o, nil
	}

	eventType := event.EventKitchenItemReady
	if tr.Current == kitchenstatus.Statuses.Declined {
		eventType = event.EventKitchenItemDeclined
	}
	s.emit(ctx, eventType, o, *tr)
	return o, nil
}

// StartItem records that a cook picked the line up.
func (s *Service) StartItem(ctx context.Context, orderID, itemID uuid.UUID) (*order.Order, error) {
	var tr *order.Transition
	o, err := order.Mutate(ctx, s.orders, orderID, func(o *order.Order) (bool, error) {
		transition, err := o.StartItem(itemID, s.now())
		if err != nil {
			return false, err
		}
		tr = transition
		return tr != nil, nil
	})
	if err != nil {
		return nil, err
	}

	if tr != nil {
		s.emit(ctx, event.EventKitchenItemStarted, o, *tr)
	}
	return o, nil
}

// PendingItems is the kitchen display feed across all orders.
func (s *Service) PendingItems(ctx context.Context) ([]PendingItem, error) {
	orders, err := s.orders.ListByStatus(ctx, orderstatus.Statuses.SentToKitchen, orderstatus.Statuses.Cooking)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not load kitchen orders", err)
	}

	feed := flattenPending(orders)
	s.attachTableNumbers(ctx, feed)
	sortPending(feed)

	if feed == nil {
		feed = []PendingItem{}
	}
	return feed, nil
}

// OrderStatus groups the order's lines by kitchen status.
func (s *Service) OrderStatus(ctx context.Context, orderID uuid.UUID) (OrderKitchenStatus, error) {
	o, err := order.Load(ctx, s.orders, orderID)
	if err != nil {
		return OrderKitchenStatus{}, err
	}
	return newOrderKitchenStatus(o), nil
}

// attachTableNumbers is best effort; a missing table leaves the number empty.
func (s *Service) attachTableNumbers(ctx context.Context, feed []PendingItem) {
	if s.tables == nil {
		return
	}
	numbers := make(map[uuid.UUID]string)
	for i := range feed {
		id := feed[i].TableID
		number, ok := numbers[id]
		if !ok {
			table, err := s.tables.Get(ctx, id)
			if err != nil {
				s.log().Debug("cannot resolve table for feed", "table_id", id.String(), "error", err)
			}
			if table != nil {
				number = table.Number
			}
			numbers[id] = number
		}
		feed[i].TableNumber = number
	}
}

func (s *Service) emit(ctx context.Context, eventType string, o *order.Order, tr order.Transition) {
	item, ok := o.FindItem(tr.ItemID)
	if !ok {
		return
	}

	evt := NewItemEvent(eventType, o, item, tr.Previous)

	if s.feed != nil {
		s.feed.Broadcast(evt)
	}

	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.log().Error("cannot encode kitchen event", "event_type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event.KitchenItemsTopic, payload); err != nil {
		s.log().Error("cannot publish kitchen event", "event_type", eventType, "item_id", evt.ItemID, "error", err)
	}
}

func (s *Service) log() apt.Logger {
	return s.logger.With("component", "KitchenService")
}

func NewItemEvent(eventType string, o *order.Order, item order.Item, previous kitchenstatus.Status) event.KitchenItemEvent {
	return event.KitchenItemEvent{
		KitchenItemEventMetadata: event.KitchenItemEventMetadata{
			EventType:   eventType,
			OccurredAt:  time.Now().UTC(),
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			ItemID:      item.ID.String(),
			TableID:     o.TableID.String(),
			MenuItemID:  item.MenuItemID.String(),
			Name:        item.Name,
			Category:    item.Category,
		},
		NewStatus:      string(item.KitchenStatus),
		PreviousStatus: string(previous),
		OrderStatus:    string(o.Status),
		Quantity:       item.Quantity,
		Note:           item.Note,
		SentAt:         item.SentToKitchenAt,
		StartedAt:      item.StartedAt,
		ReadyAt:        item.ReadyAt,
		DeclinedAt:     item.DeclinedAt,
	}
}
