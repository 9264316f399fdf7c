package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/menu"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

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

// MockOrderRepo is a mock implementation of OrderRepo for testing. It stores
// copies and enforces versions like the Mongo repository.
type MockOrderRepo struct {
	mu         sync.RWMutex
	orders     map[uuid.UUID]*Order
	numbers    map[string]bool
	CreateFunc func(ctx context.Context, order *Order) error
	SaveFunc   func(ctx context.Context, order *Order) error
	saves      int
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders:  make(map[uuid.UUID]*Order),
		numbers: make(map[string]bool),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, order *Order) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, order); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numbers[order.OrderNumber] {
		return ErrDuplicateNumber
	}
	m.numbers[order.OrderNumber] = true
	m.orders[order.ID] = order.Clone()
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

func (m *MockOrderRepo) List(ctx context.Context, filter ListFilter) ([]*Order, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*Order
	for _, o := range m.orders {
		if filter.TableID != uuid.Nil && o.TableID != filter.TableID {
			continue
		}
		if filter.ActorID != uuid.Nil && o.ActorID != filter.ActorID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, o.Clone())
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MockOrderRepo) ListByTable(ctx context.Context, tableID uuid.UUID, statuses ...orderstatus.Status) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if o.TableID == tableID && (len(statuses) == 0 || containsStatus(statuses, o.Status)) {
			result = append(result, o.Clone())
		}
	}
	return result, nil
}

func (m *MockOrderRepo) ListByStatus(ctx context.Context, statuses ...orderstatus.Status) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, o := range m.orders {
		if containsStatus(statuses, o.Status) {
			result = append(result, o.Clone())
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, order *Order) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, order); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok {
		return fmt.Errorf("order %s not found", order.ID)
	}
	if stored.Version != order.Version {
		return ErrVersionConflict
	}
	order.Version++
	m.orders[order.ID] = order.Clone()
	m.saves++
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[order.ID]
	if !ok {
		return nil
	}
	if stored.Version != order.Version {
		return ErrVersionConflict
	}
	delete(m.orders, order.ID)
	return nil
}

func (m *MockOrderRepo) Put(o *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
	m.numbers[o.OrderNumber] = true
}

func (m *MockOrderRepo) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockOrderRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

func containsStatus(statuses []orderstatus.Status, s orderstatus.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// MockMenu is a mock implementation of MenuCatalog for testing
type MockMenu struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*menu.Item
}

func NewMockMenu(items ...*menu.Item) *MockMenu {
	m := &MockMenu{items: make(map[uuid.UUID]*menu.Item)}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *MockMenu) Get(ctx context.Context, id uuid.UUID) (*menu.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c := *item
	return &c, nil
}

func (m *MockMenu) SetPrice(id uuid.UUID, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Price = price
}

// MockOccupancy is a mock implementation of TableOccupancy for testing. It
// tracks one pointer per table.
type MockOccupancy struct {
	mu           sync.Mutex
	pointers     map[uuid.UUID]uuid.UUID
	CheckFunc    func(ctx context.Context, tableID uuid.UUID) error
	ClaimFunc    func(ctx context.Context, tableID, orderID uuid.UUID) error
	ReleaseCalls int
}

func NewMockOccupancy() *MockOccupancy {
	return &MockOccupancy{pointers: make(map[uuid.UUID]uuid.UUID)}
}

func (m *MockOccupancy) CheckCanOpen(ctx context.Context, tableID uuid.UUID) error {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, tableID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.pointers[tableID]; held {
		return apperr.Conflict(apperr.ReasonTableHasOrder, "Table already has an active order")
	}
	return nil
}

func (m *MockOccupancy) Claim(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, tableID, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointers[tableID] = orderID
	return nil
}

func (m *MockOccupancy) Release(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls++
	if m.pointers[tableID] == orderID {
		delete(m.pointers, tableID)
	}
	return nil
}

func (m *MockOccupancy) Pointer(tableID uuid.UUID) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.pointers[tableID]
	return id, ok
}

// MockNumberer is a mock implementation of Numberer for testing
type MockNumberer struct {
	mu       sync.Mutex
	Day      string
	seq      map[string]int64
	NextFunc func(ctx context.Context, prefix string) (string, error)
}

func NewMockNumberer() *MockNumberer {
	return &MockNumberer{Day: "20250115", seq: make(map[string]int64)}
}

func (m *MockNumberer) Next(ctx context.Context, prefix string) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[prefix]++
	return fmt.Sprintf("%s-%s-%04d", prefix, m.Day, m.seq[prefix]), nil
}
