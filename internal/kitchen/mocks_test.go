package kitchen

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
	"github.com/appetiteclub/pos/pkg/event"
)

// MockOrderRepo is a mock implementation of order.OrderRepo for testing. It
// stores copies and enforces versions like the Mongo repository.
type MockOrderRepo struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]*order.Order
	SaveFunc func(ctx context.Context, o *order.Order) error
	ListErr  error
	saves    int
}

func NewMockOrderRepo(orders ...*order.Order) *MockOrderRepo {
	m := &MockOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o.Clone()
	}
	return m
}

func (m *MockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (m *MockOrderRepo) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (m *MockOrderRepo) ListByTable(ctx context.Context, tableID uuid.UUID, statuses ...orderstatus.Status) ([]*order.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) ListByStatus(ctx context.Context, statuses ...orderstatus.Status) ([]*order.Order, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*order.Order
	for _, o := range m.orders {
		for _, s := range statuses {
			if o.Status == s {
				result = append(result, o.Clone())
				break
			}
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, o); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s not found", o.ID)
	}
	if stored.Version != o.Version {
		return order.ErrVersionConflict
	}
	o.Version++
	m.orders[o.ID] = o.Clone()
	m.saves++
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, o.ID)
	return nil
}

func (m *MockOrderRepo) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// MockTableDirectory is a mock implementation of TableDirectory for testing
type MockTableDirectory struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*tables.Table
	Calls  int
}

func NewMockTableDirectory(list ...*tables.Table) *MockTableDirectory {
	m := &MockTableDirectory{tables: make(map[uuid.UUID]*tables.Table)}
	for _, t := range list {
		m.tables[t.ID] = t.Clone()
	}
	return m
}

func (m *MockTableDirectory) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][][]byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages[topic] = append(m.Messages[topic], msg)
	return nil
}

func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages[topic])
}

// MockBroadcaster records events pushed to the display feed.
type MockBroadcaster struct {
	mu     sync.Mutex
	Events []event.KitchenItemEvent
}

func (m *MockBroadcaster) Broadcast(evt event.KitchenItemEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, evt)
}

func (m *MockBroadcaster) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, evt := range m.Events {
		types = append(types, evt.EventType)
	}
	return types
}

// MockSubscriber captures the handler registered for each topic.
type MockSubscriber struct {
	mu       sync.Mutex
	Handlers map[string]events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{Handlers: make(map[string]events.HandlerFunc)}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Handlers[topic] = handler
	return nil
}
