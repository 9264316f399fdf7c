package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by Create when the order already has a payment
// or the invoice number is taken.
var ErrDuplicate = errors.New("payment already exists")

// Repo stores payments. GetByOrder returns nil, nil when the order has no
// payment.
type Repo interface {
	Create(ctx context.Context, payment *Payment) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
