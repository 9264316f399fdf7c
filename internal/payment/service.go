package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/money"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/saga"
	"github.com/appetiteclub/pos/internal/sequence"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/paymentmethod"
)

// TableDirectory resolves table numbers for invoices.
type TableDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*tables.Table, error)
}

type ServiceDeps struct {
	Payments  Repo
	Orders    order.OrderRepo
	Tables    order.TableOccupancy
	Directory TableDirectory
	Numbers   order.Numberer
	Publisher *order.EventPublisher
}

type Service struct {
	payments  Repo
	orders    order.OrderRepo
	tables    order.TableOccupancy
	directory TableDirectory
	numbers   order.Numberer
	publisher *order.EventPublisher
	logger    apt.Logger
	now       func() time.Time
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Service{
		payments:  deps.Payments,
		orders:    deps.Orders,
		tables:    deps.Tables,
		directory: deps.Directory,
		numbers:   deps.Numbers,
		publisher: deps.Publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ParseMethod accepts cash, card or bank in any case.
func ParseMethod(value string) (paymentmethod.Method, error) {
	method := paymentmethod.ByName(strings.ToLower(strings.TrimSpace(value)))
	if method == nil {
		return "", apperr.Validation(apperr.ReasonInvalidMethod, "Payment method must be cash, card or bank").
			With("payment_method", value)
	}
	return *method, nil
}

// ProcessPayment records the payment, marks the order paid and frees its
// table. The payment insert is undone when the order cannot be marked paid.
func (s *Service) ProcessPayment(ctx context.Context, actor auth.Actor, orderID uuid.UUID, methodName string) (Receipt, error) {
	method, err := ParseMethod(methodName)
	if err != nil {
		return Receipt{}, err
	}

	o, err := order.Load(ctx, s.orders, orderID)
	if err != nil {
		return Receipt{}, err
	}
	if err := checkPayable(actor, o); err != nil {
		return Receipt{}, err
	}
	o.RecomputeTotals()

	invoiceNumber, err := s.numbers.Next(ctx, sequence.PrefixInvoice)
	if err != nil {
		return Receipt{}, apperr.Internal(apperr.ReasonInternal, "Could not allocate invoice number", err)
	}

	now := s.now()
	p := NewPayment(o, actor.ID, method, invoiceNumber, now)

	var paid *order.Order
	err = saga.New("process-payment", s.logger,
		saga.Func{
			StepName:  "insert payment",
			ExecuteFn: func(ctx context.Context) error { return s.insert(ctx, p) },
			CompensateFn: func(ctx context.Context) error {
				return s.payments.Delete(ctx, p.ID)
			},
		},
		saga.Func{
			StepName: "mark order paid",
			ExecuteFn: func(ctx context.Context) error {
				updated, err := order.Mutate(ctx, s.orders, orderID, func(o *order.Order) (bool, error) {
					if err := checkPayable(actor, o); err != nil {
						return false, err
					}
					if err := o.MarkPaid(method, now); err != nil {
						return false, err
					}
					if !money.Equal(o.Total, p.Amount) {
						return false, apperr.Conflict(apperr.ReasonConcurrentUpdate, "Order changed while it was being paid, retry").
							With("order_id", o.ID.String())
					}
					return true, nil
				})
				paid = updated
				return err
			},
		},
	).Run(ctx)
	if err != nil {
		if saga.IsCompensationFailure(err) {
			s.log().Error("payment left without paid order", "payment_id", p.ID.String(), "order_id", orderID.String(), "error", err)
		}
		return Receipt{}, err
	}

	s.log().Info("order paid",
		"order_id", paid.ID.String(),
		"order_number", paid.OrderNumber,
		"invoice_number", p.InvoiceNumber,
		"amount", p.Amount,
		"payment_method", string(method),
	)

	if err := s.tables.Release(ctx, actor, paid.TableID, paid.ID); err != nil {
		s.log().Error("cannot release table after payment", "table_id", paid.TableID.String(), "order_id", paid.ID.String(), "error", err)
	}
	s.publisher.PublishPaid(ctx, paid, p.InvoiceNumber)

	return Receipt{Order: paid, Payment: p}, nil
}

// insert maps a unique index violation to the condition that caused it.
func (s *Service) insert(ctx context.Context, p *Payment) error {
	err := s.payments.Create(ctx, p)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrDuplicate) {
		return apperr.Internal(apperr.ReasonInternal, "Could not record payment", err)
	}

	existing, lookupErr := s.payments.GetByOrder(ctx, p.OrderID)
	if lookupErr == nil && existing != nil {
		return apperr.Conflict(apperr.ReasonOrderPaid, "Order is already paid").
			With("order_id", p.OrderID.String()).
			With("invoice_number", existing.InvoiceNumber)
	}
	return apperr.Conflict(apperr.ReasonNumberingFailed, "Invoice number already used, retry").
		With("invoice_number", p.InvoiceNumber)
}

// GetInvoice returns the invoice of a paid order.
func (s *Service) GetInvoice(ctx context.Context, orderID uuid.UUID) (Invoice, error) {
	o, err := order.Load(ctx, s.orders, orderID)
	if err != nil {
		return Invoice{}, err
	}

	p, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return Invoice{}, apperr.Internal(apperr.ReasonInternal, "Could not load payment", err)
	}
	if p == nil {
		return Invoice{}, apperr.NotFound(apperr.ReasonPaymentNotFound, "Order is not paid").
			With("order_id", orderID.String())
	}

	return newInvoice(o, p, s.tableNumber(ctx, o.TableID)), nil
}

func (s *Service) tableNumber(ctx context.Context, tableID uuid.UUID) string {
	if s.directory == nil {
		return ""
	}
	table, err := s.directory.Get(ctx, tableID)
	if err != nil {
		s.log().Debug("cannot resolve table for invoice", "table_id", tableID.String(), "error", err)
		return ""
	}
	if table == nil {
		return ""
	}
	return table.Number
}

func (s *Service) log() apt.Logger {
	return s.logger.With("component", "PaymentService")
}

func checkPayable(actor auth.Actor, o *order.Order) error {
	if err := order.EnsureOwner(actor, o); err != nil {
		return err
	}
	if err := o.EnsureOpen(); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return apperr.Conflict(apperr.ReasonOrderEmpty, "Order has no items").
			With("order_id", o.ID.String())
	}
	return nil
}
