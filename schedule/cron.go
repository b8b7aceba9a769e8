// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts six fields (seconds, minutes, hours, day-of-month,
// month, day-of-week) plus the @every/@daily-style macros, matching the
// expressions used throughout this package's tests and the scenarios in
// SPEC_FULL.md.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Cron fires according to a cron expression, delegating next-occurrence
// arithmetic (including DST resolution) entirely to robfig/cron.
type Cron struct {
	opts Options
	expr string
	sch  cron.Schedule
}

// NewCron parses expr and returns a Cron schedule. Malformed expressions
// fail synchronously here, so they never reach the engine. Align options are
// applied after every cron occurrence, so two occurrences that round up to
// the same boundary coalesce into one fire.
func NewCron(expr string, opts ...Options) (*Cron, error) {
	sch, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &Cron{expr: expr, sch: sch, opts: merge(opts)}, nil
}

// Name returns "cron(" + expr + ")".
func (c *Cron) Name() string { return "cron(" + c.expr + ")" }

// Options returns the configured options.
func (c *Cron) Options() Options { return c.opts }

// Next asks robfig/cron for the next occurrence strictly after last in
// last's own Location, then re-anchors the result to that Location (cron
// libraries already return a time in the input's Location, but the
// re-anchor guards against that contract changing under us).
func (c *Cron) Next(_ Context, last time.Time) (time.Time, bool) {
	next := c.sch.Next(last)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next.In(last.Location()), true
}
