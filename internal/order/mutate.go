package order

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
)

// MaxMutateAttempts bounds how often a unit of work is replayed after a
// version conflict.
const MaxMutateAttempts = 3

// MutateFunc applies a change to a freshly loaded order. Returning false
// skips the write.
type MutateFunc func(o *Order) (bool, error)

// Load returns the order or a not_found error.
func Load(ctx context.Context, repo OrderRepo, id uuid.UUID) (*Order, error) {
	o, err := repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not load order", err)
	}
	if o == nil {
		return nil, apperr.NotFound(apperr.ReasonOrderNotFound, "Order not found").With("order_id", id.String())
	}
	return o, nil
}

// Mutate runs load, apply and save as one unit and replays it when another
// writer saved the order in between.
func Mutate(ctx context.Context, repo OrderRepo, id uuid.UUID, fn MutateFunc) (*Order, error) {
	for attempt := 1; attempt <= MaxMutateAttempts; attempt++ {
		o, err := Load(ctx, repo, id)
		if err != nil {
			return nil, err
		}

		changed, err := fn(o)
		if err != nil {
			return nil, err
		}
		if !changed {
			return o, nil
		}

		o.BeforeUpdate()
		err = repo.Save(ctx, o)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal(apperr.ReasonInternal, "Could not save order", err)
		}
		return o, nil
	}

	return nil, apperr.Conflict(apperr.ReasonConcurrentUpdate, "Order is being modified concurrently, retry").
		With("order_id", id.String())
}
