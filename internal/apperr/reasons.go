package apperr

// Stable reason strings returned with every rejection.
const (
	ReasonInternal          = "internal_error"
	ReasonInvalidBody       = "invalid_body"
	ReasonInvalidID         = "invalid_id"
	ReasonMissingField      = "missing_field"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonInvalidStatus     = "invalid_status"
	ReasonInvalidMethod     = "invalid_payment_method"
	ReasonInvalidFilter     = "invalid_filter"
	ReasonNotAuthenticated  = "not_authenticated"
	ReasonNotOrderOwner     = "not_order_owner"
	ReasonRoleRequired      = "role_required"
	ReasonOrderNotFound     = "order_not_found"
	ReasonItemNotFound      = "item_not_found"
	ReasonTableNotFound     = "table_not_found"
	ReasonMenuItemNotFound  = "menu_item_not_found"
	ReasonPaymentNotFound   = "payment_not_found"
	ReasonMenuItemInactive  = "menu_item_unavailable"
	ReasonOrderClosed       = "order_closed"
	ReasonOrderPaid         = "order_already_paid"
	ReasonOrderCancelled    = "order_already_cancelled"
	ReasonOrderEmpty        = "order_has_no_items"
	ReasonNothingPending    = "no_pending_items"
	ReasonItemAlreadySent   = "item_already_sent"
	ReasonIllegalTransition = "illegal_kitchen_transition"
	ReasonTableReserved     = "table_reserved"
	ReasonTableHasOrder     = "table_has_active_order"
	ReasonTablePointerHeld  = "table_pointer_held"
	ReasonNumberingFailed   = "numbering_exhausted"
	ReasonConcurrentUpdate  = "concurrent_update"
)
