// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"errors"
	"time"
)

// ErrOptionsMismatch is returned by NewAggregate when its children don't all
// share the same Options bitset.
var ErrOptionsMismatch = errors.New("schedule: aggregate children must share the same options")

// Aggregate fires whenever the earliest of its children would fire. If any
// child is already due (<= last), Aggregate forces an immediate re-fire at
// last itself, so a single sweep never misses a child that raced ahead of
// the others.
type Aggregate struct {
	opts     Options
	children []Schedule
}

// NewAggregate returns a Schedule that fires at the earliest activation among
// children. All children must share the same Options bitset, or
// ErrOptionsMismatch is returned.
func NewAggregate(children ...Schedule) (*Aggregate, error) {
	if len(children) == 0 {
		return &Aggregate{}, nil
	}
	opts := children[0].Options()
	for _, c := range children[1:] {
		if c.Options() != opts {
			return nil, ErrOptionsMismatch
		}
	}
	return &Aggregate{opts: opts, children: children}, nil
}

// Name returns "aggregate".
func (*Aggregate) Name() string { return "aggregate" }

// Options returns the shared options of all children.
func (a *Aggregate) Options() Options { return a.opts }

// Next returns the earliest strictly-future result among children, or
// (last, true) if any child is already due.
func (a *Aggregate) Next(ctx Context, last time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false

	for _, c := range a.children {
		next, ok := c.Next(ctx, last)
		if !ok {
			continue
		}
		if !next.After(last) {
			return last, true
		}
		if !found || next.Before(earliest) {
			earliest = next
			found = true
		}
	}

	if !found {
		return time.Time{}, false
	}
	return earliest, true
}

// Union returns a binary Schedule firing at the earlier of l and r's next
// activations (l ∪ r). It is Aggregate specialised to two schedules that
// share options.
func Union(l, r Schedule) (Schedule, error) {
	return NewAggregate(l, r)
}

// Minus returns a Schedule firing whenever l is due but r is not due at the
// same instant (l - r). Unlike Union/Intersect, the two schedules need not
// share options: Minus only compares their output instants.
func Minus(l, r Schedule) Schedule {
	return &minus{l: l, r: r}
}

type minus struct {
	l, r Schedule
}

func (*minus) Name() string       { return "minus" }
func (m *minus) Options() Options { return m.l.Options() }

func (m *minus) Next(ctx Context, last time.Time) (time.Time, bool) {
	t1, ok1 := m.l.Next(ctx, last)
	if !ok1 {
		return time.Time{}, false
	}
	t2, ok2 := m.r.Next(ctx, last)

	for {
		if !ok2 {
			return t1, true
		}
		if t1.Before(t2) {
			return t1, true
		}
		if t1.Equal(t2) {
			// The trigger coincides with an excluded instant; both sides
			// must advance past it before a candidate is valid again.
			t1, ok1 = m.l.Next(ctx, t1)
			if !ok1 {
				return time.Time{}, false
			}
			t2, ok2 = m.r.Next(ctx, t2)
			continue
		}
		for t2.Before(t1) {
			t2, ok2 = m.r.Next(ctx, t2)
			if !ok2 {
				return t1, true
			}
		}
	}
}

// Intersect returns a Schedule firing only at instants both l and r agree on
// (l ∩ r).
func Intersect(l, r Schedule) Schedule {
	return &intersect{l: l, r: r}
}

type intersect struct {
	l, r Schedule
}

func (*intersect) Name() string       { return "intersect" }
func (i *intersect) Options() Options { return i.l.Options() }

func (i *intersect) Next(ctx Context, last time.Time) (time.Time, bool) {
	t1, ok1 := i.l.Next(ctx, last)
	t2, ok2 := i.r.Next(ctx, last)
	for {
		if !ok1 || !ok2 {
			return time.Time{}, false
		}
		if t1.Equal(t2) {
			return t1, true
		}
		if t1.Before(t2) {
			t1, ok1 = i.l.Next(ctx, t1)
		} else {
			t2, ok2 = i.r.Next(ctx, t2)
		}
	}
}
