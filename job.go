// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"oss.nandlabs.io/golly/errutils"

	"github.com/quartzio/scheduling/schedule"
)

// Job is an opaque, asynchronous unit of work. The engine never inspects a
// Job beyond its Name and never retries it itself — retries, if wanted, are
// the Job's own concern.
type Job interface {
	// Name identifies the job, chiefly for logging.
	Name() string
	// Run performs the job's work. For an automatic fire, ctx is cancelled
	// on engine disposal and, unless the schedule's LongRunning option is
	// set, once the engine's maximum execution duration elapses. For a
	// manual fire, ctx is the caller's own context.
	Run(ctx context.Context, state JobState) error
}

// JobFunc adapts an ordinary function to the Job interface.
type JobFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewJobFunc wraps fn as a Job named name.
func NewJobFunc(name string, fn func(ctx context.Context) error) JobFunc {
	return JobFunc{name: name, fn: fn}
}

// Name returns the configured name.
func (f JobFunc) Name() string { return f.name }

// Run calls fn, ignoring state.
func (f JobFunc) Run(ctx context.Context, _ JobState) error { return f.fn(ctx) }

// JobState is handed to a Job's Run method.
type JobState struct {
	// ID is the job record's unique identifier.
	ID uuid.UUID
	// Name is the job's name.
	Name string
	// Engine is the owning engine.
	Engine *Engine
	// Schedule is the schedule driving this fire, or nil for a manual fire.
	Schedule schedule.Schedule
	// Due is the instant this fire was due at.
	Due time.Time
	// Logger is a logger pre-bound with this job's name and id.
	Logger *slog.Logger
	// Manual is true iff this execution was started by an explicit Trigger
	// call rather than the engine's own tick loop.
	Manual bool

	rec *JobRecord
}

// Enabled reports whether the underlying record is enabled.
func (s JobState) Enabled() bool { return s.rec.Enabled() }

// SetEnabled toggles the underlying record. Setting it to false from
// within Run prevents any further automatic fires.
func (s JobState) SetEnabled(v bool) { s.rec.SetEnabled(v) }

// Completion represents the outcome of one job execution, observable by
// every caller that triggered or coalesced onto it.
type Completion interface {
	// Done is closed once the execution (or, for a coalesced manual
	// caller, that caller's own view of it) has finished.
	Done() <-chan struct{}
	// Err returns the execution's error, a context error for a
	// cancellation, or nil for success. Valid only after Done closes.
	Err() error
}

// execution is the single-flight handle for one in-progress run of a
// JobRecord. At most one is live per record at a time.
type execution struct {
	done chan struct{}
	err  error
}

type execCompletion struct{ exec *execution }

func (c execCompletion) Done() <-chan struct{} { return c.exec.done }
func (c execCompletion) Err() error            { return c.exec.err }

type staticCompletion struct {
	done chan struct{}
	err  error
}

func newStaticCompletion(err error) staticCompletion {
	d := make(chan struct{})
	close(d)
	return staticCompletion{done: d, err: err}
}

func (c staticCompletion) Done() <-chan struct{} { return c.done }
func (c staticCompletion) Err() error            { return c.err }

// combinedCompletion lets a manual caller who coalesced onto an in-flight
// execution observe either the underlying completion or its own context's
// cancellation, without cancelling the underlying work for other callers
// coalesced onto the same execution.
type combinedCompletion struct {
	done chan struct{}
	err  error
}

func newCombinedCompletion(exec *execution, ctx context.Context) *combinedCompletion {
	c := &combinedCompletion{done: make(chan struct{})}
	go func() {
		select {
		case <-exec.done:
			c.err = exec.err
		case <-ctx.Done():
			c.err = ctx.Err()
		}
		close(c.done)
	}()
	return c
}

func (c *combinedCompletion) Done() <-chan struct{} { return c.done }
func (c *combinedCompletion) Err() error            { return c.err }

// JobRecord is one (job, schedule, state) triple registered with an Engine.
type JobRecord struct {
	id     uuid.UUID
	job    Job
	sched  schedule.Schedule
	engine *Engine
	logger *slog.Logger

	mu      sync.Mutex
	enabled bool
	due     time.Time
	dueOk   bool
	manual  bool

	exec atomic.Pointer[execution]
}

func newJobRecord(engine *Engine, job Job, sched schedule.Schedule) *JobRecord {
	id := uuid.New()
	return &JobRecord{
		id:      id,
		job:     job,
		sched:   sched,
		engine:  engine,
		logger:  engine.logger.With("job", job.Name(), "job_id", id.String()),
		enabled: true,
	}
}

// ID returns the record's unique identifier.
func (r *JobRecord) ID() uuid.UUID { return r.id }

// Job returns the underlying job.
func (r *JobRecord) Job() Job { return r.job }

// Schedule returns the underlying schedule.
func (r *JobRecord) Schedule() schedule.Schedule { return r.sched }

// Enabled reports whether this record is enabled.
func (r *JobRecord) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// SetEnabled flips the enabled flag. An effective change forces a due
// recomputation from now and wakes the engine.
func (r *JobRecord) SetEnabled(v bool) {
	r.mu.Lock()
	changed := r.enabled != v
	r.enabled = v
	r.mu.Unlock()

	if !changed {
		return
	}
	r.recomputeDue(true)
	r.engine.touch()
}

// Due returns the stored due time, but only while both this record and its
// engine are enabled and the record remains attached to the engine.
func (r *JobRecord) Due() (time.Time, bool) {
	if !r.Enabled() || !r.engine.Enabled() || !r.attached() {
		return time.Time{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.due, r.dueOk
}

func (r *JobRecord) attached() bool {
	return r.engine.contains(r.id)
}

// isExecuting reports whether an execution is currently in flight.
func (r *JobRecord) isExecuting() bool {
	return r.exec.Load() != nil
}

// Trigger manually fires the job, debouncing against any execution already
// in flight. A ctx that is already cancelled, or a call made after the
// engine has been disposed, returns an already-cancelled Completion without
// starting anything.
func (r *JobRecord) Trigger(ctx context.Context) Completion {
	return r.execute(ctx, true, nil)
}

// fire is the engine-internal, automatic path. cleanup, if non-nil, runs
// once the execution completes — used by the engine to release a
// maximum-execution-duration context's resources promptly.
func (r *JobRecord) fire(ctx context.Context, cleanup func()) Completion {
	return r.execute(ctx, false, cleanup)
}

func (r *JobRecord) execute(ctx context.Context, manual bool, cleanup func()) Completion {
	if !manual && !r.Enabled() {
		return newStaticCompletion(nil)
	}
	if err := r.engine.masterCtx.Err(); err != nil {
		return newStaticCompletion(err)
	}
	if manual {
		select {
		case <-ctx.Done():
			return newStaticCompletion(ctx.Err())
		default:
		}
	}

	exec := &execution{done: make(chan struct{})}
	coalesced := false
	for {
		if cur := r.exec.Load(); cur != nil {
			exec = cur
			coalesced = true
			break
		}
		if r.exec.CompareAndSwap(nil, exec) {
			break
		}
	}

	if manual {
		r.mu.Lock()
		r.manual = true
		r.due, r.dueOk = r.engine.clock.Now(), true
		r.mu.Unlock()
	}

	if !coalesced {
		go r.run(ctx, exec, cleanup)
	} else if cleanup != nil {
		cleanup()
	}

	if manual && coalesced && ctx.Done() != nil {
		return newCombinedCompletion(exec, ctx)
	}
	return execCompletion{exec}
}

func (r *JobRecord) run(ctx context.Context, exec *execution, cleanup func()) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			exec.err = panicError{rec}
		}
		if cleanup != nil {
			cleanup()
		}
		if r.engine.metrics != nil {
			r.engine.metrics.Duration(r.job.Name(), time.Since(started))
		}
		r.finish(exec)
		close(exec.done)
	}()

	due, _ := r.Due()
	state := JobState{
		ID:       r.id,
		Name:     r.job.Name(),
		Engine:   r.engine,
		Schedule: r.scheduleForState(),
		Due:      due,
		Logger:   r.logger,
		Manual:   r.isManual(),
		rec:      r,
	}
	exec.err = r.job.Run(ctx, state)
}

func (r *JobRecord) scheduleForState() schedule.Schedule {
	if r.isManual() {
		return nil
	}
	return r.sched
}

func (r *JobRecord) isManual() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manual
}

func (r *JobRecord) finish(exec *execution) {
	switch err := exec.err; {
	case err != nil && !isCancellation(err):
		r.logFailure(err)
		if !r.sched.Options().Has(schedule.IgnoreErrors) {
			r.mu.Lock()
			r.enabled = false
			r.mu.Unlock()
		}
		if r.engine.metrics != nil {
			r.engine.metrics.Failed(r.job.Name())
		}
	case err == nil:
		if r.engine.metrics != nil {
			r.engine.metrics.Fired(r.job.Name())
		}
	}

	r.mu.Lock()
	r.manual = false
	r.mu.Unlock()

	r.exec.CompareAndSwap(exec, nil)

	r.recomputeDue(false)
	if _, ok := r.Due(); ok {
		r.engine.touch()
	}
}

// recomputeDue asks the schedule for the next due time and stores it,
// returning whether the stored value changed.
func (r *JobRecord) recomputeDue(force bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var next time.Time
	var ok bool
	if r.enabled && r.engine.Enabled() && r.engine.contains(r.id) {
		last := r.engine.Now()
		if r.sched.Options().Has(schedule.FromDue) && !force && r.dueOk {
			last = r.due
		}
		next, ok = r.sched.Next(r.engine, last)
		next, ok = schedule.ApplyOptions(next, ok, r.sched.Options())
	}

	changed := ok != r.dueOk || (ok && !next.Equal(r.due))
	r.due, r.dueOk = next, ok
	return changed
}

func (r *JobRecord) logFailure(err error) {
	now := r.engine.Now()
	for _, cause := range causesOf(err) {
		r.logger.Error("job failed", "now", now, "error", cause)
	}
}

// causesOf expands a multi-cause error (errutils.MultiError, or any error
// satisfying the Go 1.20+ Unwrap() []error joined-error shape) into its
// individual causes, so every inner failure is logged rather than just the
// outermost wrapper.
func causesOf(err error) []error {
	if me, ok := err.(*errutils.MultiError); ok {
		if all := me.GetAll(); len(all) > 0 {
			return all
		}
		return []error{err}
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		if all := u.Unwrap(); len(all) > 0 {
			return all
		}
	}
	return []error{err}
}

func isCancellation(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded ||
		isContextErrUnwrap(err)
}

func isContextErrUnwrap(err error) bool {
	type unwrapper interface{ Unwrap() error }
	for {
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == context.Canceled || err == context.DeadlineExceeded {
			return true
		}
	}
}

// panicError wraps a recovered panic value so it can be logged and, unless
// the schedule ignores errors, disables the record like any other failure.
type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return "panic: " + err.Error()
	}
	if s, ok := p.v.(string); ok {
		return "panic: " + s
	}
	return "panic: unrecoverable"
}
