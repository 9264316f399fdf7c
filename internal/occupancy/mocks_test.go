package occupancy

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/menu"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/payment"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

// MockTableRepo is a mock implementation of tables.TableRepo for testing
type MockTableRepo struct {
	mu       sync.RWMutex
	tables   map[uuid.UUID]*tables.Table
	SaveFunc func(ctx context.Context, table *tables.Table) error
}

func NewMockTableRepo(list ...*tables.Table) *MockTableRepo {
	m := &MockTableRepo{tables: make(map[uuid.UUID]*tables.Table)}
	for _, t := range list {
		m.tables[t.ID] = t.Clone()
	}
	return m
}

func (m *MockTableRepo) Create(ctx context.Context, table *tables.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table.Clone()
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (m *MockTableRepo) List(ctx context.Context, filter tables.Filter) ([]*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*tables.Table
	for _, t := range m.tables {
		result = append(result, t.Clone())
	}
	return result, nil
}

func (m *MockTableRepo) ListClaimed(ctx context.Context) ([]*tables.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*tables.Table
	for _, t := range m.tables {
		if t.HasOrder() {
			result = append(result, t.Clone())
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *tables.Table) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, table); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tables[table.ID]
	if !ok || stored.Version != table.Version {
		return tables.ErrVersionConflict
	}
	table.Version++
	m.tables[table.ID] = table.Clone()
	return nil
}

// MockOrderRepo is a mock implementation of order.OrderRepo for testing
type MockOrderRepo struct {
	mu      sync.RWMutex
	orders  map[uuid.UUID]*order.Order
	numbers map[string]bool
}

func NewMockOrderRepo(orders ...*order.Order) *MockOrderRepo {
	m := &MockOrderRepo{
		orders:  make(map[uuid.UUID]*order.Order),
		numbers: make(map[string]bool),
	}
	for _, o := range orders {
		m.orders[o.ID] = o.Clone()
	}
	return m
}

func (m *MockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numbers[o.OrderNumber] {
		return order.ErrDuplicateNumber
	}
	m.numbers[o.OrderNumber] = true
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
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return nil
	}
	if stored.Version != o.Version {
		return order.ErrVersionConflict
	}
	delete(m.orders, o.ID)
	return nil
}

func (m *MockOrderRepo) Exists(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.orders[id]
	return ok
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

// MockMenu is a mock implementation of order.MenuCatalog for testing
type MockMenu struct {
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
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	c := *item
	return &c, nil
}

// memoryGenerator is an in-process sequence.Generator.
type memoryGenerator struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newMemoryGenerator() *memoryGenerator {
	return &memoryGenerator{seqs: make(map[string]int64)}
}

func (g *memoryGenerator) Next(ctx context.Context, key string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seqs[key]++
	return g.seqs[key], nil
}

// MockPaymentRepo is a mock implementation of payment.Repo for testing
type MockPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.Payment
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{payments: make(map[uuid.UUID]*payment.Payment)}
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.OrderID == p.OrderID || existing.InvoiceNumber == p.InvoiceNumber {
			return payment.ErrDuplicate
		}
	}
	c := *p
	m.payments[p.ID] = &c
	return nil
}

func (m *MockPaymentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == orderID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, id)
	return nil
}
