package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/event"
)

// EventPublisher serializes lifecycle events onto orders.lifecycle. A nil
// publisher drops them.
type EventPublisher struct {
	publisher events.Publisher
	logger    apt.Logger
}

func NewEventPublisher(publisher events.Publisher, logger apt.Logger) *EventPublisher {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventPublisher{publisher: publisher, logger: logger}
}

// Publish never fails the caller; delivery errors are logged.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, o *Order, itemID uuid.UUID) {
	p.publish(ctx, NewOrderEvent(eventType, o, itemID))
}

// PublishPaid adds the payment details to order.paid.
func (p *EventPublisher) PublishPaid(ctx context.Context, o *Order, invoiceNumber string) {
	evt := NewOrderEvent(event.EventOrderPaid, o, uuid.Nil)
	evt.InvoiceNumber = invoiceNumber
	p.publish(ctx, evt)
}

func (p *EventPublisher) publish(ctx context.Context, evt event.OrderEvent) {
	if p == nil || p.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.log().Error("cannot encode order event", "event_type", evt.EventType, "error", err)
		return
	}

	if err := p.publisher.Publish(ctx, event.OrderLifecycleTopic, payload); err != nil {
		p.log().Error("cannot publish order event", "event_type", evt.EventType, "order_id", evt.OrderID, "error", err)
		return
	}

	p.log().Debug("order event published", "event_type", evt.EventType, "order_id", evt.OrderID)
}

func (p *EventPublisher) log() apt.Logger {
	return p.logger.With("component", "OrderEventPublisher")
}

func NewOrderEvent(eventType string, o *Order, itemID uuid.UUID) event.OrderEvent {
	evt := event.OrderEvent{
		EventType:   eventType,
		OccurredAt:  time.Now().UTC(),
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		TableID:     o.TableID.String(),
		ActorID:     o.ActorID.String(),
		Status:      string(o.Status),
		ItemCount:   len(o.Items),
		Total:       o.Total,
	}
	if itemID != uuid.Nil {
		evt.ItemID = itemID.String()
	}
	if o.PaymentMethod != nil {
		evt.PaymentMethod = string(*o.PaymentMethod)
	}
	return evt
}
