package tables

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/auth"
)

// MockTableRepo is a mock implementation of TableRepo for testing
type MockTableRepo struct {
	mu       sync.RWMutex
	tables   map[uuid.UUID]*Table
	ListFunc func(ctx context.Context, filter Filter) ([]*Table, error)
	GetFunc  func(ctx context.Context, id uuid.UUID) (*Table, error)
}

func NewMockTableRepo(tables ...*Table) *MockTableRepo {
	m := &MockTableRepo{tables: make(map[uuid.UUID]*Table)}
	for _, t := range tables {
		m.tables[t.ID] = t.Clone()
	}
	return m
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table.Clone()
	return nil
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	if !ok {
		return nil, nil
	}
	return table.Clone(), nil
}

func (m *MockTableRepo) List(ctx context.Context, filter Filter) ([]*Table, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if filter.Floor != 0 && t.Floor != filter.Floor {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		result = append(result, t.Clone())
	}
	return result, nil
}

func (m *MockTableRepo) ListClaimed(ctx context.Context) ([]*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Table
	for _, t := range m.tables {
		if t.HasOrder() {
			result = append(result, t.Clone())
		}
	}
	return result, nil
}

func (m *MockTableRepo) Save(ctx context.Context, table *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tables[table.ID]
	if !ok || stored.Version != table.Version {
		return ErrVersionConflict
	}
	table.Version++
	m.tables[table.ID] = table.Clone()
	return nil
}

// MockStatusService is a mock implementation of StatusService for testing
type MockStatusService struct {
	SetStatusFunc func(ctx context.Context, actor auth.Actor, tableID uuid.UUID, change StatusChange) (*Table, error)
	Calls         []StatusChange
}

func (m *MockStatusService) SetStatus(ctx context.Context, actor auth.Actor, tableID uuid.UUID, change StatusChange) (*Table, error) {
	m.Calls = append(m.Calls, change)
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, actor, tableID, change)
	}
	return &Table{ID: tableID, Status: change.Status, CurrentOrderID: change.OrderID}, nil
}

func nopLogger() apt.Logger {
	return apt.NewNoopLogger()
}
