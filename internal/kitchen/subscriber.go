package kitchen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/pkg/event"
)

// DisplaySubscriber applies acknowledgements sent by kitchen displays.
// Returning an error asks the stream to redeliver the message, so only
// failures that may succeed later are reported.
type DisplaySubscriber struct {
	subscriber events.Subscriber
	service    *Service
	logger     apt.Logger
}

func NewDisplaySubscriber(sub events.Subscriber, service *Service, logger apt.Logger) *DisplaySubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &DisplaySubscriber{
		subscriber: sub,
		service:    service,
		logger:     logger,
	}
}

func (s *DisplaySubscriber) Start(ctx context.Context) error {
	s.log().Info("starting kitchen display subscriber", "topic", event.KitchenDisplayTopic)
	if s.subscriber == nil {
		return fmt.Errorf("kitchen display subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.KitchenDisplayTopic, s.handleEvent)
}

func (s *DisplaySubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.KitchenDisplayEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.log().Info("invalid kitchen display event", "error", err)
		return nil
	}

	switch evt.EventType {
	case event.EventKitchenDisplayStarted:
		return s.handleStarted(ctx, evt)
	default:
		s.log().Debug("unknown kitchen display event type", "event_type", evt.EventType)
		return nil
	}
}

func (s *DisplaySubscriber) handleStarted(ctx context.Context, evt event.KitchenDisplayEvent) error {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		s.log().Info("invalid order_id in display event", "order_id", evt.OrderID)
		return nil
	}
	itemID, err := uuid.Parse(evt.ItemID)
	if err != nil {
		s.log().Info("invalid item_id in display event", "item_id", evt.ItemID)
		return nil
	}

	if _, err := s.service.StartItem(ctx, orderID, itemID); err != nil {
		if retryable(err) {
			s.log().Error("cannot start item, will retry", "order_id", evt.OrderID, "item_id", evt.ItemID, "error", err)
			return err
		}
		s.log().Info("display acknowledgement rejected", "order_id", evt.OrderID, "item_id", evt.ItemID, "error", err)
		return nil
	}

	s.log().Info("item started from kitchen display",
		"order_id", evt.OrderID,
		"item_id", evt.ItemID,
		"station", evt.Station,
	)
	return nil
}

// retryable reports whether a failed acknowledgement is worth redelivering.
func retryable(err error) bool {
	if apperr.KindOf(err) == apperr.KindInternal {
		return true
	}
	return apperr.ReasonOf(err) == apperr.ReasonConcurrentUpdate
}

func (s *DisplaySubscriber) log() apt.Logger {
	return s.logger.With("component", "KitchenDisplaySubscriber")
}
