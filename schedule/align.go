// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import "time"

// ApplyOptions rounds ts up to the boundary implied by the highest-precedence
// Align flag set in opts (Days > Hours > Minutes > Seconds), re-anchored to
// ts's own Location. If ok is false, or no Align flag is set, ts/ok are
// returned unchanged. Rounding is a no-op when ts already sits on the
// boundary, and is idempotent: ApplyOptions(ApplyOptions(t)) == ApplyOptions(t).
// It is applied to every schedule's output, Cron included, so two cron
// occurrences inside one boundary coalesce into a single due time.
func ApplyOptions(ts time.Time, ok bool, opts Options) (time.Time, bool) {
	if !ok || !opts.Any(alignMask) {
		return ts, ok
	}

	var boundary time.Duration
	switch {
	case opts.Has(AlignDays):
		boundary = 24 * time.Hour
	case opts.Has(AlignHours):
		boundary = time.Hour
	case opts.Has(AlignMinutes):
		boundary = time.Minute
	case opts.Has(AlignSeconds):
		boundary = time.Second
	default:
		return ts, ok
	}

	return ceil(ts, boundary), true
}

// ceil rounds t up to the nearest multiple of boundary ticks since the Unix
// epoch, on the instant axis, then re-anchors to t's own Location.
func ceil(t time.Time, boundary time.Duration) time.Time {
	loc := t.Location()
	ticks := t.UnixNano()
	b := boundary.Nanoseconds()

	rem := ticks % b
	if rem == 0 {
		return t.In(loc)
	}
	if rem < 0 {
		// UnixNano is negative before 1970; Go's % keeps the sign of the
		// dividend, so a negative remainder still means "round up" toward
		// zero, i.e. subtract the (negative) remainder.
		return time.Unix(0, ticks-rem).In(loc)
	}
	return time.Unix(0, ticks+(b-rem)).In(loc)
}
