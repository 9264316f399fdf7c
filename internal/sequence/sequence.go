// Package sequence hands out human readable codes such as
// ORD-20250101-0001. Codes are backed by an atomic per-key counter so that
// concurrent callers never derive the same number.
package sequence

import (
	"context"
	"fmt"
	"time"
)

const (
	PrefixOrder   = "ORD"
	PrefixInvoice = "INV"

	dayLayout = "20060102"
)

// Generator returns the next value of the named counter. The first call for a
// key returns 1.
type Generator interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Numberer formats daily codes on top of a Generator.
type Numberer struct {
	gen Generator
	loc *time.Location
	now func() time.Time
}

func NewNumberer(gen Generator, loc *time.Location) *Numberer {
	if loc == nil {
		loc = time.Local
	}
	return &Numberer{gen: gen, loc: loc, now: time.Now}
}

// SetClock overrides the time source.
func (n *Numberer) SetClock(now func() time.Time) {
	n.now = now
}

// Next returns "<prefix>-<YYYYMMDD>-<NNNN>" for the current day.
func (n *Numberer) Next(ctx context.Context, prefix string) (string, error) {
	day := n.now().In(n.loc).Format(dayLayout)
	seq, err := n.gen.Next(ctx, DayKey(prefix, day))
	if err != nil {
		return "", fmt.Errorf("cannot allocate %s number: %w", prefix, err)
	}
	return Format(prefix, day, seq), nil
}

// Today returns the day component used for codes issued now.
func (n *Numberer) Today() string {
	return n.now().In(n.loc).Format(dayLayout)
}

func DayKey(prefix, day string) string {
	return prefix + "-" + day
}

func Format(prefix, day string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day, seq)
}

// LoadLocation resolves a configured zone name; empty or "Local" means the
// process zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
