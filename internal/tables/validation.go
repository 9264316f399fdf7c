package tables

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
)

func ValidateTableStatus(ctx context.Context, id uuid.UUID, req TableStatusRequest) []string {
	var errors []string

	if id == uuid.Nil {
		errors = append(errors, "invalid table id")
	}

	if req.Status == "" {
		errors = append(errors, "status is required")
	} else if tablestatus.ByName(req.Status) == nil {
		errors = append(errors, "invalid status")
	}

	if req.CurrentOrderID != nil && req.Status != string(tablestatus.Statuses.Occupied) {
		errors = append(errors, "current_order_id can only be set together with status occupied")
	}

	return errors
}

func ParseFilter(floor, tableType, status string) (Filter, []string) {
	var errors []string
	var f Filter

	if floor != "" {
		n, err := strconv.Atoi(floor)
		if err != nil || n < 1 {
			errors = append(errors, "invalid floor")
		}
		f.Floor = n
	}

	switch tableType {
	case "", TypeTable, TypeTakeaway, TypePizzaBar:
		f.Type = tableType
	default:
		errors = append(errors, "invalid type")
	}

	if status != "" && tablestatus.ByName(status) == nil {
		errors = append(errors, "invalid status")
	}
	f.Status = status

	return f, errors
}
