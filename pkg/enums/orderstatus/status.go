package orderstatus

import "strings"

// Status is the lifecycle state of an order.
type Status string

func (s Status) Code() string {
	return string(s)
}

func (s Status) Label() string {
	parts := strings.Split(string(s), "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// Closed reports whether the order reached paid or cancelled.
func (s Status) Closed() bool {
	switch s {
	case Statuses.Paid, Statuses.Cancelled:
		return true
	case Statuses.Draft, Statuses.SentToKitchen, Statuses.Cooking, Statuses.Completed:
		return false
	default:
		return false
	}
}

// InKitchen reports whether the order feeds the kitchen display.
func (s Status) InKitchen() bool {
	return s == Statuses.SentToKitchen || s == Statuses.Cooking
}

type Enum struct {
	Draft         Status
	SentToKitchen Status
	Cooking       Status
	Completed     Status
	Paid          Status
	Cancelled     Status
}

var Statuses = Enum{
	Draft:         "draft",
	SentToKitchen: "sent_to_kitchen",
	Cooking:       "cooking",
	Completed:     "completed",
	Paid:          "paid",
	Cancelled:     "cancelled",
}

var All = []Status{
	Statuses.Draft,
	Statuses.SentToKitchen,
	Statuses.Cooking,
	Statuses.Completed,
	Statuses.Paid,
	Statuses.Cancelled,
}

// Active lists the statuses of orders that still hold their table.
var Active = []Status{
	Statuses.Draft,
	Statuses.SentToKitchen,
	Statuses.Cooking,
	Statuses.Completed,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if string(s) == name {
			return &s
		}
	}
	return nil
}
