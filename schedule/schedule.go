// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package schedule provides the pure "next fire time" algebra consumed by
// the scheduler engine: a Schedule never mutates the job it is attached to
// and never blocks; it only maps a "last" instant to the next one.
package schedule

import "time"

// Context is the view of the engine a Schedule needs: the current instant
// and the zone new due times are anchored to absent any other information.
type Context interface {
	// Now returns the engine's current instant.
	Now() time.Time
	// Location returns the engine's default zone.
	Location() *time.Location
}

// Schedule describes a job's duty cycle. Next returns the next activation
// time, normally strictly after last, or ok=false if there are no more
// activations. Aggregate returns last itself when one of its children is
// already due, to force an immediate re-fire.
// Implementations must be idempotent: calling Next twice with an equal last
// must yield an equal result.
type Schedule interface {
	// Name identifies the schedule, chiefly for logging.
	Name() string
	// Options returns the schedule's option bitset.
	Options() Options
	// Next returns the next activation time after last, or ok=false if the
	// schedule is exhausted.
	Next(ctx Context, last time.Time) (next time.Time, ok bool)
}

// Func adapts an ordinary function to the Schedule interface.
type Func struct {
	name string
	opts Options
	fn   func(ctx Context, last time.Time) (time.Time, bool)
}

// NewFunctional returns a Schedule that defers entirely to fn.
func NewFunctional(name string, opts Options, fn func(ctx Context, last time.Time) (time.Time, bool)) *Func {
	return &Func{name: name, opts: opts, fn: fn}
}

// Name returns the configured name.
func (f *Func) Name() string { return f.name }

// Options returns the configured options.
func (f *Func) Options() Options { return f.opts }

// Next calls fn.
func (f *Func) Next(ctx Context, last time.Time) (time.Time, bool) { return f.fn(ctx, last) }
