package occupancy

import (
	"context"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/order"
	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
	"github.com/appetiteclub/pos/pkg/event"
)

// Repair is one change made by Reconcile.
type Repair struct {
	TableID uuid.UUID `json:"table_id"`
	OrderID uuid.UUID `json:"order_id"`
	Action  string    `json:"action"`
}

// Report summarizes a Reconcile pass. Orphans are active orders whose table
// is held by someone else or reserved; they need a human.
type Report struct {
	TablesScanned    int      `json:"tables_scanned"`
	OrdersScanned    int      `json:"orders_scanned"`
	PointersCleared  []Repair `json:"pointers_cleared"`
	PointersRestored []Repair `json:"pointers_restored"`
	OrdersDiscarded  []Repair `json:"orders_discarded"`
	Orphans          []Repair `json:"orphans"`
	Failures         []string `json:"failures"`
}

func newReport() Report {
	return Report{
		PointersCleared:  []Repair{},
		PointersRestored: []Repair{},
		OrdersDiscarded:  []Repair{},
		Orphans:          []Repair{},
		Failures:         []string{},
	}
}

// Reconcile repairs table pointers left inconsistent by interrupted writes.
// It clears pointers to missing or closed orders, discards active orders
// that stayed empty past the stale threshold, and reattaches active orders
// to free tables that lost their claim.
func (r *Reconciler) Reconcile(ctx context.Context, actor auth.Actor) (Report, error) {
	report := newReport()

	claimed, err := r.tables.ListClaimed(ctx)
	if err != nil {
		return report, apperr.Internal(apperr.ReasonInternal, "Could not list claimed tables", err)
	}
	report.TablesScanned = len(claimed)

	for _, t := range claimed {
		r.clearStalePointer(ctx, actor, t, &report)
	}

	active, err := r.orders.ListByStatus(ctx, orderstatus.Active...)
	if err != nil {
		return report, apperr.Internal(apperr.ReasonInternal, "Could not list active orders", err)
	}
	report.OrdersScanned = len(active)

	for _, o := range active {
		if len(o.Items) == 0 && r.now().Sub(o.UpdatedAt) > r.staleAfter {
			r.discardStale(ctx, actor, o, &report)
			continue
		}
		r.restorePointer(ctx, actor, o, &report)
	}

	r.log().Info("reconcile finished",
		"tables_scanned", report.TablesScanned,
		"orders_scanned", report.OrdersScanned,
		"pointers_cleared", len(report.PointersCleared),
		"pointers_restored", len(report.PointersRestored),
		"orders_discarded", len(report.OrdersDiscarded),
		"orphans", len(report.Orphans),
		"failures", len(report.Failures),
	)
	return report, nil
}

func (r *Reconciler) clearStalePointer(ctx context.Context, actor auth.Actor, t *tables.Table, report *Report) {
	held, err := r.activePointedOrder(ctx, t)
	if err != nil {
		report.Failures = append(report.Failures, "table "+t.ID.String()+": "+err.Error())
		return
	}
	if held != nil {
		return
	}

	stale := *t.CurrentOrderID
	_, err = r.updateTable(ctx, t.ID, ReasonPointerCleared, func(current *tables.Table) (bool, error) {
		if !current.PointsTo(stale) {
			return false, nil
		}
		current.Release(stale, actor.String())
		return true, nil
	})
	if err != nil {
		report.Failures = append(report.Failures, "table "+t.ID.String()+": "+err.Error())
		return
	}

	r.log().Info("stale table pointer cleared", "table_id", t.ID.String(), "order_id", stale.String())
	report.PointersCleared = append(report.PointersCleared, Repair{TableID: t.ID, OrderID: stale, Action: ReasonPointerCleared})
}

func (r *Reconciler) restorePointer(ctx context.Context, actor auth.Actor, o *order.Order, report *Report) {
	orphan := false
	restored := false
	_, err := r.updateTable(ctx, o.TableID, ReasonPointerRestored, func(t *tables.Table) (bool, error) {
		orphan, restored = false, false
		if t.PointsTo(o.ID) {
			return false, nil
		}
		if t.HasOrder() || t.Status == tablestatus.Statuses.Reserved {
			orphan = true
			return false, nil
		}
		t.Claim(o.ID, actor.String())
		restored = true
		return true, nil
	})
	if err != nil {
		report.Failures = append(report.Failures, "order "+o.ID.String()+": "+err.Error())
		return
	}

	switch {
	case restored:
		r.log().Info("table pointer restored", "table_id", o.TableID.String(), "order_id", o.ID.String())
		report.PointersRestored = append(report.PointersRestored, Repair{TableID: o.TableID, OrderID: o.ID, Action: ReasonPointerRestored})
	case orphan:
		r.log().Info("active order has no table", "table_id", o.TableID.String(), "order_id", o.ID.String())
		report.Orphans = append(report.Orphans, Repair{TableID: o.TableID, OrderID: o.ID, Action: "orphaned"})
	}
}

func (r *Reconciler) discardStale(ctx context.Context, actor auth.Actor, o *order.Order, report *Report) {
	if err := r.orders.Delete(ctx, o); err != nil {
		report.Failures = append(report.Failures, "order "+o.ID.String()+": "+err.Error())
		return
	}

	_, err := r.updateTable(ctx, o.TableID, ReasonStaleDiscarded, func(t *tables.Table) (bool, error) {
		return t.Release(o.ID, actor.String()), nil
	})
	if err != nil && apperr.ReasonOf(err) != apperr.ReasonTableNotFound {
		report.Failures = append(report.Failures, "table "+o.TableID.String()+": "+err.Error())
	}

	r.log().Info("stale empty order discarded", "order_id", o.ID.String(), "table_id", o.TableID.String())
	r.orderEvts.Publish(ctx, event.EventOrderDiscarded, o, uuid.Nil)
	report.OrdersDiscarded = append(report.OrdersDiscarded, Repair{TableID: o.TableID, OrderID: o.ID, Action: ReasonStaleDiscarded})
}
