// Package occupancy keeps tables and the orders seated at them consistent.
// Orders are written first and tables second; the reconciler owns the table
// side of every such pair and repairs whatever a crash in between left
// behind.
package occupancy

import (
	"context"
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
	"github.com/appetiteclub/pos/pkg/event"
)

// MaxTableAttempts bounds replays of a table write after a version conflict.
const MaxTableAttempts = 3

// DefaultStaleAfter is how long an item-less order may hold a table before
// Reconcile discards it.
const DefaultStaleAfter = 2 * time.Hour

// Reasons attached to table status events.
const (
	ReasonOrderOpened     = "order.opened"
	ReasonOrderClosed     = "order.closed"
	ReasonStatusSet       = "status.set"
	ReasonPointerCleared  = "reconcile.pointer_cleared"
	ReasonPointerRestored = "reconcile.pointer_restored"
	ReasonStaleDiscarded  = "reconcile.stale_discarded"
)

type Config struct {
	StaleAfter time.Duration
}

type Reconciler struct {
	tables     tables.TableRepo
	orders     order.OrderRepo
	publisher  events.Publisher
	orderEvts  *order.EventPublisher
	staleAfter time.Duration
	logger     apt.Logger
	now        func() time.Time
}

func NewReconciler(tableRepo tables.TableRepo, orderRepo order.OrderRepo, publisher events.Publisher, cfg Config, logger apt.Logger) *Reconciler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	return &Reconciler{
		tables:     tableRepo,
		orders:     orderRepo,
		publisher:  publisher,
		orderEvts:  order.NewEventPublisher(publisher, logger),
		staleAfter: cfg.StaleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckCanOpen reports whether a new order may be opened at the table. A
// pointer to a missing or closed order does not block.
func (r *Reconciler) CheckCanOpen(ctx context.Context, tableID uuid.UUID) error {
	table, err := r.loadTable(ctx, tableID)
	if err != nil {
		return err
	}

	if table.Status == tablestatus.Statuses.Reserved {
		r.publishRejection(ctx, table, uuid.Nil, "open_order", apperr.ReasonTableReserved)
		return apperr.Conflict(apperr.ReasonTableReserved, "Table is reserved").
			With("table_id", tableID.String())
	}

	existing, err := r.activePointedOrder(ctx, table)
	if err != nil {
		return err
	}
	if existing != nil {
		r.publishRejection(ctx, table, existing.ID, "open_order", apperr.ReasonTableHasOrder)
		return apperr.Conflict(apperr.ReasonTableHasOrder, "Table already has an active order").
			With("table_id", tableID.String()).
			With("existing_order", existing)
	}
	return nil
}

// Claim points the table at the order and marks it occupied. Claiming a
// table that already points at the order is a no-op.
func (r *Reconciler) Claim(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	_, err := r.updateTable(ctx, tableID, ReasonOrderOpened, func(t *tables.Table) (bool, error) {
		if t.PointsTo(orderID) && t.Status == tablestatus.Statuses.Occupied {
			return false, nil
		}
		if t.Status == tablestatus.Statuses.Reserved {
			return false, apperr.Conflict(apperr.ReasonTableReserved, "Table is reserved").
				With("table_id", tableID.String())
		}
		if t.HasOrder() && !t.PointsTo(orderID) {
			holder, err := r.activePointedOrder(ctx, t)
			if err != nil {
				return false, err
			}
			if holder != nil {
				return false, apperr.Conflict(apperr.ReasonTablePointerHeld, "Table is held by another order").
					With("table_id", tableID.String()).
					With("current_order_id", holder.ID.String())
			}
		}
		t.Claim(orderID, actor.String())
		return true, nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			r.publishRejection(ctx, &tables.Table{ID: tableID}, orderID, "claim", apperr.ReasonOf(err))
		}
		return err
	}

	r.log().Info("table claimed", "table_id", tableID.String(), "order_id", orderID.String())
	return nil
}

// Release frees the table if it still points at the order. Anything else is
// left alone.
func (r *Reconciler) Release(ctx context.Context, actor auth.Actor, tableID, orderID uuid.UUID) error {
	_, err := r.updateTable(ctx, tableID, ReasonOrderClosed, func(t *tables.Table) (bool, error) {
		return t.Release(orderID, actor.String()), nil
	})
	if apperr.ReasonOf(err) == apperr.ReasonTableNotFound {
		r.log().Debug("released table does not exist", "table_id", tableID.String(), "order_id", orderID.String())
		return nil
	}
	return err
}

// SetStatus applies an explicit status edit. Freeing or reserving a table
// discards the active order it holds if that order has no items and is
// rejected otherwise. Occupying a table that holds a different order is
// rejected.
//
// The empty order is deleted before the table is saved. If that save fails
// the table is left pointing at a missing order, which a retried edit or
// Reconcile clears.
func (r *Reconciler) SetStatus(ctx context.Context, actor auth.Actor, tableID uuid.UUID, change tables.StatusChange) (*tables.Table, error) {
	if change.OrderID != nil && *change.OrderID != uuid.Nil {
		if err := r.ensureAssignable(ctx, tableID, *change.OrderID); err != nil {
			return nil, err
		}
	}

	var discarded *order.Order
	table, err := r.updateTable(ctx, tableID, ReasonStatusSet, func(t *tables.Table) (bool, error) {
		switch change.Status {
		case tablestatus.Statuses.Available, tablestatus.Statuses.Reserved:
			dropped, err := r.vacate(ctx, t, change.Status)
			if err != nil {
				return false, err
			}
			if dropped != nil {
				discarded = dropped
			}
			t.ClearOrder(actor.String())
		case tablestatus.Statuses.Occupied:
			if change.OrderID != nil && t.HasOrder() && !t.PointsTo(*change.OrderID) {
				return false, apperr.Conflict(apperr.ReasonTablePointerHeld, "Table already has a different order assigned").
					With("table_id", tableID.String()).
					With("current_order_id", t.CurrentOrderID.String())
			}
			if change.OrderID != nil && *change.OrderID != uuid.Nil {
				id := *change.OrderID
				t.CurrentOrderID = &id
			}
		default:
			return false, apperr.Validation(apperr.ReasonInvalidStatus, "Invalid table status").
				With("status", string(change.Status))
		}
		t.Status = change.Status
		t.UpdatedBy = actor.String()
		t.BeforeUpdate()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if discarded != nil {
		r.log().Info("empty order discarded by table status change",
			"order_id", discarded.ID.String(), "table_id", tableID.String(), "status", string(change.Status))
		r.orderEvts.Publish(ctx, event.EventOrderDiscarded, discarded, uuid.Nil)
	}
	return table, nil
}

// vacate deletes the active empty order the table points at. It fails when
// that order still has items.
func (r *Reconciler) vacate(ctx context.Context, t *tables.Table, target tablestatus.Status) (*order.Order, error) {
	held, err := r.activePointedOrder(ctx, t)
	if err != nil || held == nil {
		return nil, err
	}

	if len(held.Items) > 0 {
		return nil, apperr.Conflict(apperr.ReasonTableHasOrder,
			"Cannot set table to "+string(target)+". Table has an active order with items, complete or cancel it first").
			With("table_id", t.ID.String()).
			With("current_order_id", held.ID.String())
	}

	if err := r.orders.Delete(ctx, held); err != nil {
		if errors.Is(err, order.ErrVersionConflict) {
			return nil, apperr.Conflict(apperr.ReasonConcurrentUpdate, "Order is being modified concurrently, retry").
				With("order_id", held.ID.String())
		}
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not delete order", err)
	}
	return held, nil
}

func (r *Reconciler) ensureAssignable(ctx context.Context, tableID, orderID uuid.UUID) error {
	o, err := order.Load(ctx, r.orders, orderID)
	if err != nil {
		return err
	}
	if !o.IsActive() {
		return apperr.Conflict(apperr.ReasonOrderClosed, "Only an active order can be assigned to a table").
			With("order_id", orderID.String())
	}
	if o.TableID != tableID {
		return apperr.Validation(apperr.ReasonInvalidID, "Order belongs to another table").
			With("order_id", orderID.String()).
			With("table_id", o.TableID.String())
	}
	return nil
}

// activePointedOrder returns the order the table points at when it is still
// active and seated there, or nil.
func (r *Reconciler) activePointedOrder(ctx context.Context, t *tables.Table) (*order.Order, error) {
	if !t.HasOrder() {
		return nil, nil
	}
	o, err := r.orders.Get(ctx, *t.CurrentOrderID)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not load table order", err)
	}
	if o == nil || !o.IsActive() || o.TableID != t.ID {
		return nil, nil
	}
	return o, nil
}

func (r *Reconciler) loadTable(ctx context.Context, tableID uuid.UUID) (*tables.Table, error) {
	table, err := r.tables.Get(ctx, tableID)
	if err != nil {
		return nil, apperr.Internal(apperr.ReasonInternal, "Could not load table", err)
	}
	if table == nil {
		return nil, apperr.NotFound(apperr.ReasonTableNotFound, "Table not found").
			With("table_id", tableID.String())
	}
	return table, nil
}

// updateTable runs load, apply and save for one table and replays the unit
// on version conflicts. A false from fn skips the write and returns nil.
func (r *Reconciler) updateTable(ctx context.Context, tableID uuid.UUID, reason string, fn func(t *tables.Table) (bool, error)) (*tables.Table, error) {
	for attempt := 1; attempt <= MaxTableAttempts; attempt++ {
		table, err := r.loadTable(ctx, tableID)
		if err != nil {
			return nil, err
		}
		previous := table.Clone()

		changed, err := fn(table)
		if err != nil {
			return nil, err
		}
		if !changed {
			return table, nil
		}

		err = r.tables.Save(ctx, table)
		if errors.Is(err, tables.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal(apperr.ReasonInternal, "Could not save table", err)
		}

		r.publishStatus(ctx, table, previous, reason)
		return table, nil
	}

	return nil, apperr.Conflict(apperr.ReasonConcurrentUpdate, "Table is being modified concurrently, retry").
		With("table_id", tableID.String())
}

func (r *Reconciler) log() apt.Logger {
	return r.logger.With("component", "OccupancyReconciler")
}
