package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

// Transition describes a committed change of one line's kitchen status.
type Transition struct {
	ItemID   uuid.UUID
	Previous kitchenstatus.Status
	Current  kitchenstatus.Status
}

// SendPendingToKitchen moves every pending line to sent. A draft or
// completed order becomes sent_to_kitchen; a cooking order stays cooking.
func (o *Order) SendPendingToKitchen(now time.Time) ([]Transition, error) {
	if err := o.EnsureOpen(); err != nil {
		return nil, err
	}
	if len(o.Items) == 0 {
		return nil, apperr.Conflict(apperr.ReasonOrderEmpty, "Order has no items")
	}

	var sent []Transition
	for i := range o.Items {
		item := &o.Items[i]
		if item.KitchenStatus != kitchenstatus.Statuses.Pending {
			continue
		}
		stamp := now
		item.KitchenStatus = kitchenstatus.Statuses.Sent
		item.SentToKitchenAt = &stamp
		sent = append(sent, Transition{
			ItemID:   item.ID,
			Previous: kitchenstatus.Statuses.Pending,
			Current:  kitchenstatus.Statuses.Sent,
		})
	}

	if len(sent) == 0 {
		return nil, apperr.Conflict(apperr.ReasonNothingPending, "Order has no pending items")
	}

	switch o.Status {
	case orderstatus.Statuses.Draft, orderstatus.Statuses.Completed:
		o.Status = orderstatus.Statuses.SentToKitchen
	case orderstatus.Statuses.SentToKitchen, orderstatus.Statuses.Cooking:
	case orderstatus.Statuses.Paid, orderstatus.Statuses.Cancelled:
		// rejected by EnsureOpen
	}

	return sent, nil
}

// StartItem is the implicit sent -> cooking advance reported by a kitchen
// display. Lines already cooking or done are left untouched.
func (o *Order) StartItem(itemID uuid.UUID, now time.Time) (*Transition, error) {
	if err := o.EnsureOpen(); err != nil {
		return nil, err
	}

	item, err := o.item(itemID)
	if err != nil {
		return nil, err
	}

	switch item.KitchenStatus {
	case kitchenstatus.Statuses.Sent:
		stamp := now
		item.KitchenStatus = kitchenstatus.Statuses.Cooking
		item.StartedAt = &stamp
		o.Rollup()
		return &Transition{ItemID: itemID, Previous: kitchenstatus.Statuses.Sent, Current: kitchenstatus.Statuses.Cooking}, nil
	case kitchenstatus.Statuses.Cooking, kitchenstatus.Statuses.Ready, kitchenstatus.Statuses.Declined:
		return nil, nil
	case kitchenstatus.Statuses.Pending:
		return nil, illegalTransition(itemID, item.KitchenStatus, kitchenstatus.Statuses.Cooking)
	default:
		return nil, illegalTransition(itemID, item.KitchenStatus, kitchenstatus.Statuses.Cooking)
	}
}

// SetItemOutcome moves a sent or cooking line to ready or declined. Setting
// the status a line already has is a no-op and returns a nil transition.
func (o *Order) SetItemOutcome(itemID uuid.UUID, target kitchenstatus.Status, now time.Time) (*Transition, error) {
	switch target {
	case kitchenstatus.Statuses.Ready, kitchenstatus.Statuses.Declined:
	case kitchenstatus.Statuses.Pending, kitchenstatus.Statuses.Sent, kitchenstatus.Statuses.Cooking:
		return nil, apperr.Validation(apperr.ReasonInvalidStatus, "Kitchen status must be ready or declined").
			With("status", string(target))
	default:
		return nil, apperr.Validation(apperr.ReasonInvalidStatus, "Unknown kitchen status").
			With("status", string(target))
	}

	item, err := o.item(itemID)
	if err != nil {
		return nil, err
	}

	if item.KitchenStatus == target {
		return nil, nil
	}

	if err := o.EnsureOpen(); err != nil {
		return nil, err
	}

	switch item.KitchenStatus {
	case kitchenstatus.Statuses.Sent, kitchenstatus.Statuses.Cooking:
	case kitchenstatus.Statuses.Pending, kitchenstatus.Statuses.Ready, kitchenstatus.Statuses.Declined:
		return nil, illegalTransition(itemID, item.KitchenStatus, target)
	default:
		return nil, illegalTransition(itemID, item.KitchenStatus, target)
	}

	previous := item.KitchenStatus
	stamp := now
	item.KitchenStatus = target
	if target == kitchenstatus.Statuses.Ready {
		item.ReadyAt = &stamp
	} else {
		item.DeclinedAt = &stamp
	}

	o.Rollup()
	return &Transition{ItemID: itemID, Previous: previous, Current: target}, nil
}

// Rollup derives the order status from its lines. It only moves forward:
// sent_to_kitchen -> cooking when a line is cooking, and to completed once no
// line is pending, sent or cooking.
func (o *Order) Rollup() {
	switch o.Status {
	case orderstatus.Statuses.SentToKitchen, orderstatus.Statuses.Cooking:
	case orderstatus.Statuses.Draft, orderstatus.Statuses.Completed,
		orderstatus.Statuses.Paid, orderstatus.Statuses.Cancelled:
		return
	default:
		return
	}

	if len(o.Items) == 0 {
		return
	}

	active, cooking := 0, 0
	for _, item := range o.Items {
		if item.KitchenStatus.Active() {
			active++
		}
		if item.KitchenStatus == kitchenstatus.Statuses.Cooking {
			cooking++
		}
	}

	if active == 0 {
		o.Status = orderstatus.Statuses.Completed
		return
	}

	if o.Status == orderstatus.Statuses.SentToKitchen && cooking > 0 {
		o.Status = orderstatus.Statuses.Cooking
	}
}

func illegalTransition(itemID uuid.UUID, from, to kitchenstatus.Status) error {
	return apperr.Conflict(apperr.ReasonIllegalTransition, "Kitchen status cannot move from "+string(from)+" to "+string(to)).
		With("item_id", itemID.String()).
		With("from", string(from)).
		With("to", string(to))
}
