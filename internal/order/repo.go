package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

var (
	// ErrVersionConflict is returned by Save and Delete when the stored
	// version no longer matches the one that was loaded.
	ErrVersionConflict = errors.New("order was modified concurrently")
	// ErrDuplicateNumber is returned by Create when the order number is taken.
	ErrDuplicateNumber = errors.New("order number already exists")
)

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	TableID  uuid.UUID
	ActorID  uuid.UUID
	Statuses []orderstatus.Status
	From     time.Time
	To       time.Time
	Search   string
	Page     int
	Limit    int
}

// OrderRepo returns nil, nil from Get when the order does not exist. Save
// and Delete compare order.Version with the stored one; Save increments it.
type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
	ListByTable(ctx context.Context, tableID uuid.UUID, statuses ...orderstatus.Status) ([]*Order, error)
	ListByStatus(ctx context.Context, statuses ...orderstatus.Status) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, order *Order) error
}
