package tables

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned by Save when the stored version moved.
var ErrVersionConflict = errors.New("table was modified concurrently")

// Filter narrows List. Zero values match everything.
type Filter struct {
	Floor  int
	Type   string
	Status string
}

// TableRepo returns nil, nil from Get when the table does not exist.
// Save only succeeds if the stored version equals table.Version and then
// increments it.
type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	List(ctx context.Context, filter Filter) ([]*Table, error)
	ListClaimed(ctx context.Context) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
}
