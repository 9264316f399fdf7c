package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/saga"
	"github.com/appetiteclub/pos/internal/sequence"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
	"github.com/appetiteclub/pos/pkg/event"
)

const (
	defaultNumberingAttempts = 3
	defaultNumberingBackoff  = 100 * time.Millisecond
	defaultPageLimit         = 50
	maxPageLimit             = 200
)

type ServiceDeps struct {
	Orders    OrderRepo
	Menu      MenuCatalog
	Tables    TableOccupancy
	Numbers   Numberer
	Publisher *EventPublisher

	// NumberingAttempts bounds inserts retried on a duplicate order number.
	NumberingAttempts int
	NumberingBackoff  time.Duration
}

// Service implements the order operations invoked by supervisors and admins.
type Service struct {
	orders    OrderRepo
	menu      MenuCatalog
	tables    TableOccupancy
	numbers   Numberer
	publisher *EventPublisher
	attempts  int
	backoff   time.Duration
	logger    apt.Logger
	now       func() time.Time
	sleep     func(time.Duration)
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	attempts := deps.NumberingAttempts
	if attempts < 1 {
		attempts = defaultNumberingAttempts
	}
	backoff := deps.NumberingBackoff
	if backoff <= 0 {
		backoff = defaultNumberingBackoff
	}
	return &Service{
		orders:    deps.Orders,
		menu:      deps.Menu,
		tables:    deps.Tables,
		numbers:   deps.Numbers,
		publisher: deps.Publisher,
		attempts:  attempts,
		backoff:   backoff,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// CreateOrder opens a draft order on the table and claims it.
func (s *Service) CreateOrder(ctx context.Context, actor auth.Actor, tableID uuid.UUID, notes string) (*Order, error) {
	if tableID == uuid.Nil {
		return nil, apperr.Validation(apperr.ReasonMissingField, "table_id is required")
	}

	if err := s.tables.CheckCanOpen(ctx, tableID); err != nil {
		return nil, err
	}

	o := NewOrder(tableID, actor.ID, strings.TrimSpace(notes))
	o.BeforeCreate()

	err := saga.New("create-order", s.logger,
		saga.Func{
			StepName:  "insert order",
			ExecuteFn: func(ctx context.Context) error { return s.insertNumbered(ctx, o) },
			CompensateFn: func(ctx context.Context) error {
				return s.orders.Delete(ctx, o)
			},
		},
		saga.Func{
			StepName: "claim table",
			ExecuteFn: func(ctx context.Context) error {
				return s.tables.Claim(ctx, actor, tableID, o.ID)
			},
		},
	).Run(ctx)
	if err != nil {
		if saga.IsCompensationFailure(err) {
			s.log().Error("order left without table claim", "order_id", o.ID.String(), "error", err)
		}
		return nil, err
	}

	s.log().Info("order created", "order_id", o.ID.String(), "order_number", o.OrderNumber, "table_id", tableID.String())
	s.publisher.Publish(ctx, event.EventOrderCreated, o, uuid.Nil)
	return o, nil
}

// insertNumbered allocates a number and inserts the order, retrying with a
// linear backoff while the number collides.
func (s *Service) insertNumbered(ctx context.Context, o *Order) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.numbers.Next(ctx, sequence.PrefixOrder)
		if err != nil {
			return apperr.Internal(apperr.ReasonInternal, "Could not allocate order number", err)
		}
		o.OrderNumber = number

		err = s.orders.Create(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return apperr.Internal(apperr.ReasonInternal, "Could not create order", err)
		}

		s.log().Info("order number collision", "order_number", number, "attempt", attempt)
		if attempt < s.attempts {
			s.sleep(time.Duration(attempt) * s.backoff)
		}
	}

	return apperr.Conflict(apperr.ReasonNumberingFailed, "Could not allocate a unique order number, retry")
}

// AddItem appends a pending line snapshotting the catalog entry.
func (s *Service) AddItem(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID, quantity float64, note string) (*Order, error) {
	if menuItemID == uuid.Nil {
		return nil, apperr.Validation(apperr.ReasonMissingField, "menu_item_id is required")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	entry, err := s.menu.Get(ctx, menuItemID)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not load menu item", err)
	}
	if entry == nil {
		return nil, apperr.NotFound(apperr.ReasonMenuItemNotFound, "Menu item not found").With("menu_item_id", menuItemID.String())
	}

	var added uuid.UUID
	o, err := Mutate(ctx, s.orders, orderID, func(o *Order) (bool, error) {
		if err := EnsureOwner(actor, o); err != nil {
			return false, err
		}
		item, err := o.AddItem(entry, quantity, strings.TrimSpace(note), s.now())
		if err != nil {
			return false, err
		}
		added = item.ID
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, event.EventOrderItemAdded, o, added)
	return o, nil
}

// UpdateItem changes quantity and/or note of a line.
func (s *Service) UpdateItem(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID, quantity *float64, note *string) (*Order, error) {
	if quantity == nil && note == nil {
		return nil, apperr.Validation(apperr.ReasonMissingField, "quantity or note is required")
	}
	if quantity != nil {
		if err := ValidateQuantity(*quantity); err != nil {
			return nil, err
		}
	}

	o, err := Mutate(ctx, s.orders, orderID, func(o *Order) (bool, error) {
		if err := EnsureOwner(actor, o); err != nil {
			return false, err
		}
		return true, o.UpdateItem(itemID, quantity, note)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, event.EventOrderItemUpdated, o, itemID)
	return o, nil
}

// RemoveItem drops a pending line. An order left without items is deleted
// and its table released; the returned order is then nil.
func (s *Service) RemoveItem(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) (*Order, error) {
	for attempt := 1; attempt <= MaxMutateAttempts; attempt++ {
		o, err := Load(ctx, s.orders, orderID)
		if err != nil {
			return nil, err
		}
		if err := EnsureOwner(actor, o); err != nil {
			return nil, err
		}
		if err := o.RemoveItem(itemID); err != nil {
			return nil, err
		}

		if len(o.Items) > 0 {
			o.BeforeUpdate()
			err = s.orders.Save(ctx, o)
		} else {
			err = s.orders.Delete(ctx, o)
		}
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal(apperr.ReasonInternal, "Could not save order", err)
		}

		if len(o.Items) > 0 {
			s.publisher.Publish(ctx, event.EventOrderItemRemoved, o, itemID)
			return o, nil
		}

		s.log().Info("empty order discarded", "order_id", o.ID.String(), "table_id", o.TableID.String())
		s.releaseTable(ctx, actor, o)
		s.publisher.Publish(ctx, event.EventOrderDiscarded, o, itemID)
		return nil, nil
	}

	return nil, apperr.Conflict(apperr.ReasonConcurrentUpdate, "Order is being modified concurrently, retry").
		With("order_id", orderID.String())
}

// UpdateOrder edits notes or sets a status by hand. Paid is reserved to
// payment; cancelled goes through the cancellation path.
func (s *Service) UpdateOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID, notes *string, status *orderstatus.Status) (*Order, error) {
	if notes == nil && status == nil {
		return nil, apperr.Validation(apperr.ReasonMissingField, "notes or status is required")
	}

	if status != nil {
		switch *status {
		case orderstatus.Statuses.Paid:
			return nil, apperr.Validation(apperr.ReasonInvalidStatus, "Orders are marked paid by processing a payment")
		case orderstatus.Statuses.Cancelled:
			return s.cancel(ctx, actor, orderID, notes)
		case orderstatus.Statuses.Draft, orderstatus.Statuses.SentToKitchen,
			orderstatus.Statuses.Cooking, orderstatus.Statuses.Completed:
		default:
			return nil, apperr.Validation(apperr.ReasonInvalidStatus, "Unknown order status").With("status", string(*status))
		}
	}

	o, err := Mutate(ctx, s.orders, orderID, func(o *Order) (bool, error) {
		if err := EnsureOwner(actor, o); err != nil {
			return false, err
		}
		if err := o.EnsureOpen(); err != nil {
			return false, err
		}
		if notes != nil {
			o.Notes = strings.TrimSpace(*notes)
		}
		if status != nil {
			o.Status = *status
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, event.EventOrderUpdated, o, uuid.Nil)
	return o, nil
}

// DeleteOrder removes an unpaid order and releases its table.
func (s *Service) DeleteOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	for attempt := 1; attempt <= MaxMutateAttempts; attempt++ {
		o, err := Load(ctx, s.orders, orderID)
		if err != nil {
			return err
		}
		if err := EnsureOwner(actor, o); err != nil {
			return err
		}
		if err := o.EnsureOpen(); err != nil {
			return err
		}

		err = s.orders.Delete(ctx, o)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return apperr.Internal(apperr.ReasonInternal, "Could not delete order", err)
		}

		s.log().Info("order deleted", "order_id", o.ID.String(), "actor", actor.String())
		s.releaseTable(ctx, actor, o)
		s.publisher.Publish(ctx, event.EventOrderDeleted, o, uuid.Nil)
		return nil
	}

	return apperr.Conflict(apperr.ReasonConcurrentUpdate, "Order is being modified concurrently, retry").
		With("order_id", orderID.String())
}

// CancelOrder is the admin path: the order is kept as cancelled.
func (s *Service) CancelOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission(apperr.ReasonRoleRequired, "Only admins can cancel orders")
	}
	return s.cancel(ctx, actor, orderID, nil)
}

// cancel closes the order and applies notes in the same write.
func (s *Service) cancel(ctx context.Context, actor auth.Actor, orderID uuid.UUID, notes *string) (*Order, error) {
	o, err := Mutate(ctx, s.orders, orderID, func(o *Order) (bool, error) {
		if err := EnsureOwner(actor, o); err != nil {
			return false, err
		}
		if err := o.Cancel(actor.ID, s.now()); err != nil {
			return false, err
		}
		if notes != nil {
			o.Notes = strings.TrimSpace(*notes)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log().Info("order cancelled", "order_id", o.ID.String(), "actor", actor.String())
	s.releaseTable(ctx, actor, o)
	s.publisher.Publish(ctx, event.EventOrderCancelled, o, uuid.Nil)
	return o, nil
}

// GetOrder returns any order to an authenticated caller.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return Load(ctx, s.orders, orderID)
}

// Page is one slice of a filtered order listing.
type Page struct {
	Orders []*Order
	Total  int64
	Page   int
	Limit  int
}

// ListOrders returns a page of orders, newest first, and the total match
// count. Supervisors only see their own orders unless they filter by table.
func (s *Service) ListOrders(ctx context.Context, actor auth.Actor, filter ListFilter) (Page, error) {
	if !actor.IsAdmin() && filter.TableID == uuid.Nil {
		filter.ActorID = actor.ID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return Page{}, apperr.Internal(apperr.ReasonInternal, "Could not list orders", err)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return Page{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// OrdersByTable lists the table's orders that are neither paid nor cancelled.
func (s *Service) OrdersByTable(ctx context.Context, tableID uuid.UUID) ([]*Order, error) {
	orders, err := s.orders.ListByTable(ctx, tableID, orderstatus.Active...)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not list table orders", err)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, nil
}

// releaseTable is best effort: the order write already committed and a
// dangling pointer is repaired by the reconcile pass.
func (s *Service) releaseTable(ctx context.Context, actor auth.Actor, o *Order) {
	if err := s.tables.Release(ctx, actor, o.TableID, o.ID); err != nil {
		s.log().Error("cannot release table", "table_id", o.TableID.String(), "order_id", o.ID.String(), "error", err)
	}
}

func (s *Service) log() apt.Logger {
	return s.logger.With("component", "OrderService")
}

// EnsureOwner enforces that only the creating supervisor edits an order.
// Admins bypass ownership.
func EnsureOwner(actor auth.Actor, o *Order) error {
	if actor.CanMutate(o.ActorID) {
		return nil
	}
	return apperr.Permission(apperr.ReasonNotOrderOwner, "Only the supervisor who opened the order can modify it").
		With("order_id", o.ID.String())
}
