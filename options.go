// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"log/slog"
	"time"

	"github.com/quartzio/scheduling/clock"
)

// An Option configures an Engine at construction time.
type Option interface {
	apply(*Engine)
}

type optionFunc func(*Engine)

func (f optionFunc) apply(e *Engine) { f(e) }

// WithClock configures the clock source the engine reads "now" from.
// Defaults to clock.NewStandard().
func WithClock(c clock.Clock) Option {
	return optionFunc(func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	})
}

// WithLocation configures the location every due instant is zoned to.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	})
}

// WithMaxExecutionDuration bounds every execution that does not opt out via
// schedule.LongRunning. Zero (the default) means no bound.
func WithMaxExecutionDuration(d time.Duration) Option {
	return optionFunc(func(e *Engine) {
		if d > 0 {
			e.maxExecutionDuration = d
		}
	})
}

// WithLogger configures the engine's structured logger. Defaults to a
// tint-backed logger writing to stderr.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	})
}

// WithMetrics configures where fire/fail/duration counters surface.
// Defaults to a no-op implementation: metrics are opt-in.
func WithMetrics(m Metrics) Option {
	return optionFunc(func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	})
}
