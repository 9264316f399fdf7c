package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

// MockPaymentRepo is a mock implementation of Repo for testing. It enforces
// the unique order and invoice indexes.
type MockPaymentRepo struct {
	mu         sync.RWMutex
	payments   map[uuid.UUID]*Payment
	CreateFunc func(ctx context.Context, payment *Payment) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
	Deleted    []uuid.UUID
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *Payment) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, payment); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.OrderID == payment.OrderID || p.InvoiceNumber == payment.InvoiceNumber {
			return ErrDuplicate
		}
	}
	c := *payment
	m.payments[payment.ID] = &c
	return nil
}

func (m *MockPaymentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.OrderID == orderID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockPaymentRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// MockOrderRepo is a mock implementation of order.OrderRepo for testing
type MockOrderRepo struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]*order.Order
	SaveFunc func(ctx context.Context, o *order.Order) error
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
	return nil, nil
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
	return nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, o.ID)
	return nil
}

// MockOccupancy is a mock implementation of order.TableOccupancy for testing
type MockOccupancy struct {
	mu          sync.Mutex
	Released    []uuid.UUID
	ReleaseFunc func(ctx context.Context, tableID, orderID uuid.UUID) error
}

func (m *MockOccupancy) CheckCanOpen(ctx context.Context, tableID uuid.UUID) error {
	return nil
}

func (m *MockOccupancy) Claim(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	return nil
}

func (m *MockOccupancy) Release(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	m.mu.Lock()
	m.Released = append(m.Released, orderID)
	m.mu.Unlock()
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, tableID, orderID)
	}
	return nil
}

// MockNumberer is a mock implementation of order.Numberer for testing
type MockNumberer struct {
	mu       sync.Mutex
	seq      map[string]int64
	NextFunc func(ctx context.Context, prefix string) (string, error)
}

func NewMockNumberer() *MockNumberer {
	return &MockNumberer{seq: make(map[string]int64)}
}

func (m *MockNumberer) Next(ctx context.Context, prefix string) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[prefix]++
	return fmt.Sprintf("%s-20250115-%04d", prefix, m.seq[prefix]), nil
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

// MockTableDirectory is a mock implementation of TableDirectory for testing
type MockTableDirectory struct {
	tables map[uuid.UUID]*tables.Table
}

func NewMockTableDirectory(list ...*tables.Table) *MockTableDirectory {
	m := &MockTableDirectory{tables: make(map[uuid.UUID]*tables.Table)}
	for _, t := range list {
		m.tables[t.ID] = t.Clone()
	}
	return m
}

func (m *MockTableDirectory) Get(ctx context.Context, id uuid.UUID) (*tables.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}
