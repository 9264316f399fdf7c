package kitchenstatus

import (
	"strings"
)

// Status is the preparation state of a single order line.
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

// Active reports whether the kitchen still owes work on the line.
func (s Status) Active() bool {
	switch s {
	case Statuses.Pending, Statuses.Sent, Statuses.Cooking:
		return true
	case Statuses.Ready, Statuses.Declined:
		return false
	default:
		return false
	}
}

// Terminal reports whether the line reached ready or declined.
func (s Status) Terminal() bool {
	switch s {
	case Statuses.Ready, Statuses.Declined:
		return true
	default:
		return false
	}
}

// Rank orders the states along pending -> sent -> cooking -> ready|declined.
func (s Status) Rank() int {
	switch s {
	case Statuses.Pending:
		return 0
	case Statuses.Sent:
		return 1
	case Statuses.Cooking:
		return 2
	case Statuses.Ready, Statuses.Declined:
		return 3
	default:
		return -1
	}
}

type Enum struct {
	Pending  Status
	Sent     Status
	Cooking  Status
	Ready    Status
	Declined Status
}

var Statuses = Enum{
	Pending:  "pending",
	Sent:     "sent",
	Cooking:  "cooking",
	Ready:    "ready",
	Declined: "declined",
}

var All = []Status{
	Statuses.Pending,
	Statuses.Sent,
	Statuses.Cooking,
	Statuses.Ready,
	Statuses.Declined,
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
