// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"sync"
	"time"
)

// Limit wraps another Schedule and caps it to at most n distinct fire times.
// The engine queries Next redundantly during every tick sweep; Limit caches
// the most recent (input, output) pair so a repeated query with the same
// input is free and does not consume budget — only a genuinely new output
// decrements remaining.
type Limit struct {
	inner Schedule

	mu         sync.Mutex
	remaining  int
	cachedIn   time.Time
	cachedOut  time.Time
	cachedOk   bool
	haveCached bool
}

// NewLimit returns a Schedule that delegates to inner but fires at most n
// distinct times.
func NewLimit(n int, inner Schedule) *Limit {
	return &Limit{inner: inner, remaining: n}
}

// Name returns "limit".
func (*Limit) Name() string { return "limit" }

// Options returns the inner schedule's options (Limit contributes none of
// its own).
func (l *Limit) Options() Options { return l.inner.Options() }

// Next returns the cached answer for a repeated input, otherwise queries
// inner and decrements remaining iff the answer changed.
func (l *Limit) Next(ctx Context, last time.Time) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.remaining <= 0 {
		return time.Time{}, false
	}

	if l.haveCached && l.cachedIn.Equal(last) {
		return l.cachedOut, l.cachedOk
	}

	out, ok := l.inner.Next(ctx, last)

	changed := !l.haveCached || ok != l.cachedOk || !out.Equal(l.cachedOut)
	if changed {
		l.remaining--
	}

	l.cachedIn = last
	l.cachedOut = out
	l.cachedOk = ok
	l.haveCached = true

	return out, ok
}

// Remaining returns the number of distinct fire times left.
func (l *Limit) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}
