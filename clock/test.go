// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import (
	"sync"
	"time"
)

// Test is a Clock driven entirely by virtual time, for deterministic tests.
// Each call to Now computes f(last), stores the result as the new last, and
// returns it.
type Test struct {
	mu   sync.Mutex
	f    func(time.Time) time.Time
	last time.Time
}

// NewTest returns a Test clock starting at start and advancing according to
// f on every call to Now.
func NewTest(f func(time.Time) time.Time, start time.Time) *Test {
	return &Test{f: f, last: start}
}

// Now computes and stores the next reading.
func (t *Test) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.f(t.last)
	return t.last
}

// Precision always reports PrecisionFast: a Test clock never waits on real
// time, so it is always "fast" from the caller's point of view.
func (*Test) Precision() Precision { return PrecisionFast }

// Peek returns the last reading returned by Now, without advancing.
func (t *Test) Peek() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Set forces the clock to a specific instant, without consulting f. Useful
// for tests that need to jump across a DST boundary.
func (t *Test) Set(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = at
}

// Advance moves the clock forward by d, without consulting f.
func (t *Test) Advance(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.last.Add(d)
}

// Fixed returns a Test clock whose Now always returns t, forever.
func Fixed(t time.Time) *Test {
	return NewTest(func(time.Time) time.Time { return t }, t)
}

// From returns a Test clock that starts at start and advances by step on
// every call to Now.
func From(start time.Time, step time.Duration) *Test {
	return NewTest(func(last time.Time) time.Time { return last.Add(step) }, start.Add(-step))
}

// Never returns a Test clock whose Now always returns MaxInstant, so that no
// schedule driven by it will ever be judged "due".
func Never() *Test {
	return Fixed(MaxInstant)
}
