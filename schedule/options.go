// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

// Options is a bitset of independent flags attached to a Schedule and
// consulted by the JobRecord that owns it.
type Options uint8

const (
	// IgnoreErrors prevents a job failure from auto-disabling the record.
	IgnoreErrors Options = 1 << iota
	// FromDue asks the schedule for next relative to the previous due time
	// rather than the previous completion time.
	FromDue
	// AlignSeconds rounds the computed due time up to the next second.
	AlignSeconds
	// AlignMinutes rounds the computed due time up to the next minute.
	AlignMinutes
	// AlignHours rounds the computed due time up to the next hour.
	AlignHours
	// AlignDays rounds the computed due time up to the next day.
	AlignDays
	// LongRunning exempts the job from the scheduler-wide maximum
	// execution duration.
	LongRunning
)

// Has reports whether all bits in mask are set in o.
func (o Options) Has(mask Options) bool { return o&mask == mask }

// Any reports whether any bit of mask is set in o.
func (o Options) Any(mask Options) bool { return o&mask != 0 }

const alignMask = AlignSeconds | AlignMinutes | AlignHours | AlignDays
