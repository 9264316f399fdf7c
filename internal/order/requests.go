package order

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

const dateLayout = "2006-01-02"

type OrderCreateRequest struct {
	TableID uuid.UUID `json:"table_id"`
	Notes   string    `json:"notes"`
}

type OrderUpdateRequest struct {
	Notes  *string `json:"notes"`
	Status *string `json:"status"`
}

type ItemAddRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   *float64  `json:"quantity"`
	Note       string    `json:"note"`
}

type ItemUpdateRequest struct {
	Quantity *float64 `json:"quantity"`
	Note     *string  `json:"note"`
}

func ValidateOrderCreate(req OrderCreateRequest) []string {
	var errors []string
	if req.TableID == uuid.Nil {
		errors = append(errors, "table_id is required")
	}
	return errors
}

func ValidateItemAdd(req ItemAddRequest) []string {
	var errors []string
	if req.MenuItemID == uuid.Nil {
		errors = append(errors, "menu_item_id is required")
	}
	if req.Quantity == nil {
		errors = append(errors, "quantity is required")
	}
	return errors
}

// ParseStatus resolves an order status name.
func ParseStatus(value string) (orderstatus.Status, bool) {
	s := orderstatus.ByName(strings.TrimSpace(value))
	if s == nil {
		return "", false
	}
	return *s, true
}

// ParseListFilter reads the list query string. Dates are whole days in loc:
// from starts at 00:00, to ends at 23:59:59.999.
func ParseListFilter(get func(string) string, loc *time.Location) (ListFilter, []string) {
	var errors []string
	var f ListFilter

	if loc == nil {
		loc = time.Local
	}

	if v := get("table_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errors = append(errors, "invalid table_id")
		}
		f.TableID = id
	}

	if v := get("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errors = append(errors, "invalid actor_id")
		}
		f.ActorID = id
	}

	if v := get("status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			status, ok := ParseStatus(part)
			if !ok {
				errors = append(errors, "invalid status "+part)
				continue
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	if v := get("from"); v != "" {
		day, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			errors = append(errors, "invalid from date")
		}
		f.From = day
	}

	if v := get("to"); v != "" {
		day, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			errors = append(errors, "invalid to date")
		} else {
			f.To = day.Add(24*time.Hour - time.Millisecond)
		}
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		errors = append(errors, "to date is before from date")
	}

	f.Search = strings.TrimSpace(get("search"))

	if v := get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errors = append(errors, "invalid page")
		}
		f.Page = n
	}

	if v := get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errors = append(errors, "invalid limit")
		}
		f.Limit = n
	}

	return f, errors
}
