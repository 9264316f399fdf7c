package menu

import (
	"context"

	"github.com/google/uuid"
)

// Repo is the catalog store. Get returns nil, nil when the id is unknown.
type Repo interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
}
