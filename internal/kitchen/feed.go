package kitchen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/appetiteclub/apt"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/appetiteclub/pos/pkg/event"
)

const (
	feedServiceName   = "pos.kitchen.v1.KitchenFeed"
	feedSubscriberBuf = 100
)

// KitchenFeedService is the server side of pos.kitchen.v1.KitchenFeed. The
// request carries the time of the last event the display saw; a zero value
// asks for the whole pending feed before live events.
type KitchenFeedService interface {
	StreamEvents(since *timestamppb.Timestamp, stream grpc.ServerStream) error
}

var kitchenFeedServiceDesc = grpc.ServiceDesc{
	ServiceName: feedServiceName,
	HandlerType: (*KitchenFeedService)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			Handler:       streamEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "pos/kitchen/v1/feed.proto",
}

func streamEventsHandler(srv interface{}, stream grpc.ServerStream) error {
	since := new(timestamppb.Timestamp)
	if err := stream.RecvMsg(since); err != nil {
		return err
	}
	return srv.(KitchenFeedService).StreamEvents(since, stream)
}

// PendingSource supplies the snapshot sent to a display when it connects.
type PendingSource interface {
	PendingItems(ctx context.Context) ([]PendingItem, error)
}

// FeedServer fans kitchen line events out to every connected display.
type FeedServer struct {
	pending PendingSource
	logger  apt.Logger

	mu          sync.RWMutex
	subscribers map[string]chan *structpb.Struct
	nextID      atomic.Uint64
}

func NewFeedServer(logger apt.Logger) *FeedServer {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &FeedServer{
		logger:      logger,
		subscribers: make(map[string]chan *structpb.Struct),
	}
}

// SetPendingSource wires the snapshot provider. Without one, displays only
// receive live events.
func (s *FeedServer) SetPendingSource(src PendingSource) {
	s.pending = src
}

// RegisterGRPCService registers the feed with the gRPC server.
func (s *FeedServer) RegisterGRPCService(server *grpc.Server) {
	server.RegisterService(&kitchenFeedServiceDesc, s)
}

func (s *FeedServer) StreamEvents(since *timestamppb.Timestamp, stream grpc.ServerStream) error {
	ctx := stream.Context()
	id, ch := s.subscribe()
	defer s.unsubscribe(id)

	s.log().Info("kitchen display connected", "subscriber_id", id)

	if err := s.sendSnapshot(ctx, since, stream); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.log().Info("kitchen display disconnected", "subscriber_id", id)
			return nil
		case msg := <-ch:
			if err := stream.SendMsg(msg); err != nil {
				s.log().Error("cannot send kitchen event", "subscriber_id", id, "error", err)
				return err
			}
		}
	}
}

func (s *FeedServer) sendSnapshot(ctx context.Context, since *timestamppb.Timestamp, stream grpc.ServerStream) error {
	if s.pending == nil {
		return nil
	}

	feed, err := s.pending.PendingItems(ctx)
	if err != nil {
		s.log().Error("cannot load pending feed for snapshot", "error", err)
		return nil
	}

	var cutoff time.Time
	if since != nil && (since.GetSeconds() != 0 || since.GetNanos() != 0) {
		cutoff = since.AsTime()
	}

	for _, entry := range feed {
		sentAt := entry.Item.SentToKitchenAt
		if !cutoff.IsZero() && sentAt != nil && !sentAt.After(cutoff) {
			continue
		}
		msg, err := snapshotMessage(entry)
		if err != nil {
			s.log().Error("cannot encode snapshot entry", "item_id", entry.Item.ID.String(), "error", err)
			continue
		}
		if err := stream.SendMsg(msg); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast never blocks; slow displays lose events and catch up with the
// next snapshot.
func (s *FeedServer) Broadcast(evt event.KitchenItemEvent) {
	msg, err := eventMessage(evt)
	if err != nil {
		s.log().Error("cannot encode kitchen event", "event_type", evt.EventType, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
			s.log().Info("subscriber channel full, dropping event", "subscriber_id", id)
		}
	}
}

func (s *FeedServer) subscribe() (string, chan *structpb.Struct) {
	id := fmt.Sprintf("display-%d", s.nextID.Add(1))
	ch := make(chan *structpb.Struct, feedSubscriberBuf)

	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()

	return id, ch
}

func (s *FeedServer) unsubscribe(id string) {
	s.mu.Lock()
	delete(s.subscribers, id)
	s.mu.Unlock()
}

// Subscribers returns the number of connected displays.
func (s *FeedServer) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *FeedServer) log() apt.Logger {
	return s.logger.With("component", "KitchenFeed")
}

func eventMessage(evt event.KitchenItemEvent) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"event_type":      evt.EventType,
		"occurred_at":     formatTime(&evt.OccurredAt),
		"order_id":        evt.OrderID,
		"order_number":    evt.OrderNumber,
		"order_status":    evt.OrderStatus,
		"item_id":         evt.ItemID,
		"table_id":        evt.TableID,
		"menu_item_id":    evt.MenuItemID,
		"name":            evt.Name,
		"category":        evt.Category,
		"new_status":      evt.NewStatus,
		"previous_status": evt.PreviousStatus,
		"quantity":        evt.Quantity,
		"note":            evt.Note,
	}
	setTime(fields, "sent_at", evt.SentAt)
	setTime(fields, "started_at", evt.StartedAt)
	setTime(fields, "ready_at", evt.ReadyAt)
	setTime(fields, "declined_at", evt.DeclinedAt)
	return structpb.NewStruct(fields)
}

func snapshotMessage(entry PendingItem) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"event_type":   "kitchen.item.snapshot",
		"order_id":     entry.OrderID.String(),
		"order_number": entry.OrderNumber,
		"order_status": string(entry.OrderStatus),
		"item_id":      entry.Item.ID.String(),
		"table_id":     entry.TableID.String(),
		"table_number": entry.TableNumber,
		"menu_item_id": entry.Item.MenuItemID.String(),
		"name":         entry.Item.Name,
		"category":     entry.Item.Category,
		"new_status":   string(entry.Item.Status),
		"quantity":     entry.Item.Quantity,
		"note":         entry.Item.Note,
	}
	setTime(fields, "sent_at", entry.Item.SentToKitchenAt)
	return structpb.NewStruct(fields)
}

func setTime(fields map[string]interface{}, key string, t *time.Time) {
	if t != nil {
		fields[key] = formatTime(t)
	}
}

func formatTime(t *time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
