package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/menu"
)

// MenuCatalog resolves menu entries at the moment an item is added. Get
// returns nil, nil for unknown ids.
type MenuCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*menu.Item, error)
}

// TableOccupancy keeps a table's pointer in step with the order that holds
// it.
type TableOccupancy interface {
	// CheckCanOpen rejects tables that are missing, reserved or already held
	// by an active order.
	CheckCanOpen(ctx context.Context, tableID uuid.UUID) error
	Claim(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error
	// Release is a no-op when the table points elsewhere.
	Release(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error
}

// Numberer allocates daily human readable codes.
type Numberer interface {
	Next(ctx context.Context, prefix string) (string, error)
}
