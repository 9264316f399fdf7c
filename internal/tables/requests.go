package tables

import (
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
)

type TableStatusRequest struct {
	Status         string     `json:"status"`
	CurrentOrderID *uuid.UUID `json:"current_order_id,omitempty"`
}

// StatusChange is an explicit status edit requested by staff.
type StatusChange struct {
	Status  tablestatus.Status
	OrderID *uuid.UUID
}
