// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quartzio/scheduling/clock"
	"github.com/quartzio/scheduling/schedule"
)

const (
	// minTimerWait is the floor below which a wait is satisfied by
	// busy-spinning instead of arming an OS timer, closing the precision
	// gap below the OS timer's own resolution.
	minTimerWait = time.Millisecond
	// maxTimerWait clamps a single timer arm to 49 days, just under the
	// 2^32-millisecond limit of classic OS timers; time.Timer itself
	// accepts far longer durations.
	maxTimerWait = 49 * 24 * time.Hour
)

// Engine drives every registered JobRecord from a single timer: exactly one
// sweep of the job set runs at a time, governed by an atomic tick-state
// counter so that any mutation racing against a sweep is never lost.
type Engine struct {
	clock               clock.Clock
	loc                 *time.Location
	maxExecutionDuration time.Duration
	logger              *slog.Logger
	metrics             Metrics

	masterCtx    context.Context
	masterCancel context.CancelFunc

	mu       sync.Mutex
	records  map[uuid.UUID]*JobRecord
	enabled  bool
	disposed bool

	tick  atomic.Int64
	timer *time.Timer

	dueMu     sync.Mutex
	nextDue   time.Time
	nextDueOk bool
}

// New constructs an Engine and starts its tick loop.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:   clock.NewStandard(),
		loc:     time.Local,
		logger:  defaultLogger(),
		metrics: noopMetrics{},
		records: make(map[uuid.UUID]*JobRecord),
		enabled: true,
	}
	for _, opt := range opts {
		opt.apply(e)
	}

	e.masterCtx, e.masterCancel = context.WithCancel(context.Background())
	e.timer = time.NewTimer(time.Hour)
	e.timer.Stop()

	go e.timerLoop()
	return e
}

// Clock returns the engine's clock source.
func (e *Engine) Clock() clock.Clock { return e.clock }

// Location returns the engine's zoning location.
func (e *Engine) Location() *time.Location { return e.loc }

// Now implements schedule.Context: the engine's clock reading, zoned.
func (e *Engine) Now() time.Time { return e.clock.Now().In(e.loc) }

// MaxExecutionDuration returns the configured scheduler-wide execution
// bound, or zero if none is set.
func (e *Engine) MaxExecutionDuration() time.Duration { return e.maxExecutionDuration }

// Enabled reports whether the engine is currently enabled.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled && !e.disposed
}

// SetEnabled toggles the engine. Disabling suppresses new fires without
// cancelling in-flight executions; re-enabling triggers a full
// re-evaluation of every record.
func (e *Engine) SetEnabled(v bool) {
	e.mu.Lock()
	changed := e.enabled != v
	e.enabled = v
	e.mu.Unlock()

	if changed {
		e.touch()
	}
}

// NextDue returns the earliest due instant observed across the job set as
// of the most recently completed sweep.
func (e *Engine) NextDue() (time.Time, bool) {
	e.dueMu.Lock()
	defer e.dueMu.Unlock()
	return e.nextDue, e.nextDueOk
}

func (e *Engine) setNextDue(t time.Time, ok bool) {
	e.dueMu.Lock()
	e.nextDue, e.nextDueOk = t, ok
	e.dueMu.Unlock()
}

// Add registers job under sched and returns its record. The initial due is
// computed immediately and the engine is woken to account for it.
func (e *Engine) Add(job Job, sched schedule.Schedule) (*JobRecord, error) {
	rec := newJobRecord(e, job, sched)

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil, ErrDisposed
	}
	e.records[rec.id] = rec
	e.mu.Unlock()

	rec.recomputeDue(true)
	e.touch()
	return rec, nil
}

// Remove detaches rec from the engine. In-flight executions are not
// cancelled. Reports whether rec was actually registered.
func (e *Engine) Remove(rec *JobRecord) bool {
	e.mu.Lock()
	_, ok := e.records[rec.id]
	delete(e.records, rec.id)
	e.mu.Unlock()
	if ok {
		e.touch()
	}
	return ok
}

func (e *Engine) contains(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.records[id]
	return ok
}

func (e *Engine) snapshotRecords() []*JobRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*JobRecord, 0, len(e.records))
	for _, rec := range e.records {
		out = append(out, rec)
	}
	return out
}

// Count returns the number of currently registered records.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// Dispose idempotently shuts the engine down: the master context is
// cancelled (propagating to every in-flight execution), the timer is
// released, and further Add/Trigger calls become no-ops. Dispose does not
// wait for in-flight executions to finish.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.enabled = false
	e.mu.Unlock()

	e.timer.Stop()
	e.masterCancel()
}

func (e *Engine) timerLoop() {
	for {
		select {
		case <-e.masterCtx.Done():
			return
		case <-e.timer.C:
			e.touch()
		}
	}
}

// touch is the sole wake-up entry point: every mutation that could lower
// NextDue calls it. Only the caller that transitions tick-state 0 → 1 runs
// the sweep; every other caller's bump is observed by that sweep.
func (e *Engine) touch() {
	if e.tick.Add(1) != 1 {
		return
	}
	e.sweep()
}

// sweep is the tick loop body. At most one goroutine executes it at a time.
func (e *Engine) sweep() {
	e.timer.Stop()
	for {
		e.tick.Store(1)
		if !e.Enabled() {
			if e.tick.CompareAndSwap(1, 0) {
				return
			}
			continue
		}

		now := e.Now()
		var nextInstant time.Time
		haveNext := false

		for _, rec := range e.snapshotRecords() {
			if rec.isExecuting() {
				continue
			}
			due, ok := rec.Due()
			if !ok {
				continue
			}
			if !due.After(now) {
				e.fireRecord(rec)
				continue
			}
			if !haveNext || due.Before(nextInstant) {
				nextInstant = due
				haveNext = true
			}
		}

		if e.tick.Load() > 1 {
			runtime.Gosched()
			continue
		}

		e.setNextDue(nextInstant, haveNext)

		if !haveNext {
			e.timer.Stop()
			if !e.tick.CompareAndSwap(1, 0) {
				continue
			}
			return
		}

		wait := nextInstant.Sub(e.Now())
		if wait <= minTimerWait {
			for wait > 0 {
				wait = nextInstant.Sub(e.Now())
			}
			continue
		}
		if wait > maxTimerWait {
			wait = maxTimerWait
		}

		e.timer.Reset(wait)
		if !e.tick.CompareAndSwap(1, 0) {
			e.timer.Stop()
			continue
		}
		return
	}
}

func (e *Engine) fireRecord(rec *JobRecord) {
	ctx, cleanup := e.executionContext(rec)
	rec.fire(ctx, cleanup)
}

// executionContext derives the per-execution context: the master context
// alone when the job is long-running or no scheduler-wide bound is set,
// otherwise a context that also expires after maxExecutionDuration. The
// returned cleanup must run once the execution completes.
func (e *Engine) executionContext(rec *JobRecord) (context.Context, func()) {
	if e.maxExecutionDuration <= 0 || rec.sched.Options().Has(schedule.LongRunning) {
		return e.masterCtx, nil
	}
	ctx, cancel := context.WithTimeout(e.masterCtx, e.maxExecutionDuration)
	return ctx, cancel
}
