// Package payment records the single payment that closes an order and
// projects the invoice printed for it.
package payment

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/money"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/paymentmethod"
)

// Payment is created once, when an order is paid, and never changes.
type Payment struct {
	ID            uuid.UUID            `json:"id" bson:"_id"`
	OrderID       uuid.UUID            `json:"order_id" bson:"order_id"`
	InvoiceNumber string               `json:"invoice_number" bson:"invoice_number"`
	ActorID       uuid.UUID            `json:"actor_id" bson:"actor_id"`
	PaymentMethod paymentmethod.Method `json:"payment_method" bson:"payment_method"`
	Amount        float64              `json:"amount" bson:"amount"`
	PaidAt        time.Time            `json:"paid_at" bson:"paid_at"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
}

func (p *Payment) GetID() uuid.UUID {
	return p.ID
}

func (p *Payment) ResourceType() string {
	return "payment"
}

func NewPayment(o *order.Order, actorID uuid.UUID, method paymentmethod.Method, invoiceNumber string, now time.Time) *Payment {
	return &Payment{
		ID:            apt.GenerateNewID(),
		OrderID:       o.ID,
		InvoiceNumber: invoiceNumber,
		ActorID:       actorID,
		PaymentMethod: method,
		Amount:        o.Total,
		PaidAt:        now,
		CreatedAt:     now,
	}
}

// Receipt is the result of a successful payment.
type Receipt struct {
	Order   *order.Order `json:"order"`
	Payment *Payment     `json:"payment"`
}

// Invoice joins a paid order with its payment for printing.
type Invoice struct {
	InvoiceNumber string               `json:"invoice_number"`
	OrderID       uuid.UUID            `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	TableID       uuid.UUID            `json:"table_id"`
	TableNumber   string               `json:"table_number"`
	ActorID       uuid.UUID            `json:"actor_id"`
	Items         []order.Item         `json:"items"`
	DeclinedItems int                  `json:"declined_items"`
	Subtotal      float64              `json:"subtotal"`
	Total         float64              `json:"total"`
	Amount        float64              `json:"amount"`
	AmountDue     float64              `json:"amount_due"`
	PaymentMethod paymentmethod.Method `json:"payment_method"`
	PaidAt        time.Time            `json:"paid_at"`
	CreatedAt     time.Time            `json:"created_at"`
}

func newInvoice(o *order.Order, p *Payment, tableNumber string) Invoice {
	declined := 0
	for _, item := range o.Items {
		if item.KitchenStatus == kitchenstatus.Statuses.Declined {
			declined++
		}
	}
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	return Invoice{
		InvoiceNumber: p.InvoiceNumber,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TableID:       o.TableID,
		TableNumber:   tableNumber,
		ActorID:       o.ActorID,
		Items:         items,
		DeclinedItems: declined,
		Subtotal:      o.Subtotal,
		Total:         o.Total,
		Amount:        p.Amount,
		AmountDue:     money.Round(p.Amount),
		PaymentMethod: p.PaymentMethod,
		PaidAt:        p.PaidAt,
		CreatedAt:     o.CreatedAt,
	}
}
