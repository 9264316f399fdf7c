package occupancy

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/tables"
	"github.com/appetiteclub/pos/pkg"
)

const tableEventSource = "occupancy"

func (r *Reconciler) publishStatus(ctx context.Context, table, previous *tables.Table, reason string) {
	evt := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		TableID:        table.ID.String(),
		TableNumber:    table.Number,
		Status:         string(table.Status),
		PreviousStatus: string(previous.Status),
		Reason:         reason,
		Source:         tableEventSource,
		OccurredAt:     r.now().UTC(),
	}
	if table.HasOrder() {
		evt.CurrentOrderID = table.CurrentOrderID.String()
	}
	r.publish(ctx, pkg.TableStatusTopic, evt, table.ID)
}

func (r *Reconciler) publishRejection(ctx context.Context, table *tables.Table, orderID uuid.UUID, action, reason string) {
	evt := pkg.OrderTableRejectionEvent{
		EventType:  pkg.EventOrderTableRejected,
		TableID:    table.ID.String(),
		Action:     action,
		Reason:     reason,
		Status:     string(table.Status),
		OccurredAt: r.now().UTC(),
	}
	if orderID != uuid.Nil {
		evt.OrderID = orderID.String()
	}
	r.publish(ctx, pkg.OrderTableTopic, evt, table.ID)
}

func (r *Reconciler) publish(ctx context.Context, topic string, evt interface{}, tableID uuid.UUID) {
	if r.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		r.log().Error("cannot marshal table event", "error", err, "table_id", tableID.String())
		return
	}

	if err := r.publisher.Publish(ctx, topic, payload); err != nil {
		r.log().Error("cannot publish table event", "error", err, "topic", topic, "table_id", tableID.String())
	}
}
