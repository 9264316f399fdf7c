package tablestatus

import "strings"

// Status is the occupancy state of a table.
type Status string

func (s Status) Code() string {
	return string(s)
}

func (s Status) Label() string {
	if len(s) == 0 {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Enum struct {
	Available Status
	Occupied  Status
	Reserved  Status
}

var Statuses = Enum{
	Available: "available",
	Occupied:  "occupied",
	Reserved:  "reserved",
}

var All = []Status{
	Statuses.Available,
	Statuses.Occupied,
	Statuses.Reserved,
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
