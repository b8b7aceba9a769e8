// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import "time"

// Gap fires repeatedly, d after the previous last.
type Gap struct {
	opts Options
	d    time.Duration
}

// NewGap returns a Schedule that fires d after last, every time it is
// queried. d is clamped to >= 0.
func NewGap(d time.Duration, opts ...Options) *Gap {
	if d < 0 {
		d = 0
	}
	return &Gap{d: d, opts: merge(opts)}
}

// Name returns "gap".
func (*Gap) Name() string { return "gap" }

// Options returns the configured options.
func (g *Gap) Options() Options { return g.opts }

// Next returns last + d. Gap never exhausts.
func (g *Gap) Next(_ Context, last time.Time) (time.Time, bool) {
	return last.Add(g.d), true
}

// Interval returns the configured gap duration.
func (g *Gap) Interval() time.Duration { return g.d }
