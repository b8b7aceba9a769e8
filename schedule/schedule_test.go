// Copyright (c) 2018,TianJin Tomatox  Technology Ltd. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzio/scheduling/schedule"
)

type fakeCtx struct {
	now time.Time
	loc *time.Location
}

func (f fakeCtx) Now() time.Time           { return f.now }
func (f fakeCtx) Location() *time.Location { return f.loc }

func TestOneOff(t *testing.T) {
	at := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := schedule.NewOneOff(at)

	next, ok := s.Next(fakeCtx{}, at.Add(-time.Second))
	assert.True(t, ok)
	assert.Equal(t, at, next)

	_, ok = s.Next(fakeCtx{}, at)
	assert.False(t, ok)
}

func TestGap(t *testing.T) {
	s := schedule.NewGap(5 * time.Millisecond)
	last := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	next, ok := s.Next(fakeCtx{}, last)
	require.True(t, ok)
	assert.Equal(t, last.Add(5*time.Millisecond), next)
}

func TestLimitCachesRepeatedInput(t *testing.T) {
	inner := schedule.NewGap(5 * time.Millisecond)
	l := schedule.NewLimit(3, inner)

	last := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	// Querying with the same input repeatedly must not consume budget.
	for i := 0; i < 5; i++ {
		_, ok := l.Next(fakeCtx{}, last)
		require.True(t, ok)
	}
	assert.Equal(t, 2, l.Remaining())

	next, _ := l.Next(fakeCtx{}, last)
	_, _ = l.Next(fakeCtx{}, next)
	assert.Equal(t, 1, l.Remaining())

	next2, _ := l.Next(fakeCtx{}, next)
	_, _ = l.Next(fakeCtx{}, next2)
	assert.Equal(t, 0, l.Remaining())

	_, ok := l.Next(fakeCtx{}, next2)
	assert.False(t, ok)
}

func TestAggregateForcesRefireWhenChildAlreadyDue(t *testing.T) {
	last := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	dueNow := schedule.NewFunctional("due-now", 0, func(_ schedule.Context, last time.Time) (time.Time, bool) {
		return last, true
	})
	future := schedule.NewGap(time.Hour)

	agg, err := schedule.NewAggregate(dueNow, future)
	require.NoError(t, err)

	next, ok := agg.Next(fakeCtx{}, last)
	require.True(t, ok)
	assert.Equal(t, last, next)
}

func TestAggregateEarliestFuture(t *testing.T) {
	last := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	a := schedule.NewGap(time.Hour)
	b := schedule.NewGap(time.Minute)

	agg, err := schedule.NewAggregate(a, b)
	require.NoError(t, err)

	next, ok := agg.Next(fakeCtx{}, last)
	require.True(t, ok)
	assert.Equal(t, last.Add(time.Minute), next)
}

func TestAggregateRejectsMismatchedOptions(t *testing.T) {
	a := schedule.NewGap(time.Hour, schedule.IgnoreErrors)
	b := schedule.NewGap(time.Hour)

	_, err := schedule.NewAggregate(a, b)
	assert.ErrorIs(t, err, schedule.ErrOptionsMismatch)
}

func TestApplyOptionsAlignSeconds(t *testing.T) {
	due := time.Date(2023, 1, 1, 0, 0, 0, 510_000_000, time.UTC)
	got, ok := schedule.ApplyOptions(due, true, schedule.AlignSeconds)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 1, 0, time.UTC), got)
}

func TestApplyOptionsIdempotent(t *testing.T) {
	due := time.Date(2023, 1, 1, 0, 0, 0, 510_000_000, time.UTC)
	once, _ := schedule.ApplyOptions(due, true, schedule.AlignSeconds)
	twice, _ := schedule.ApplyOptions(once, true, schedule.AlignSeconds)
	assert.Equal(t, once, twice)
}

func TestApplyOptionsNoOpOnBoundary(t *testing.T) {
	due := time.Date(2023, 1, 1, 0, 0, 1, 0, time.UTC)
	got, ok := schedule.ApplyOptions(due, true, schedule.AlignSeconds)
	require.True(t, ok)
	assert.Equal(t, due, got)
}

func TestApplyOptionsPrecedence(t *testing.T) {
	due := time.Date(2023, 1, 1, 0, 0, 0, 1, time.UTC)
	got, ok := schedule.ApplyOptions(due, true, schedule.AlignDays|schedule.AlignSeconds)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

type compositeTime struct {
	from     string
	expected bool
}

type compositeTest struct {
	compose      func(l, r schedule.Schedule) schedule.Schedule
	op           string
	spec1, spec2 string
	layout       string
	times        []compositeTime
}

func TestComposite(t *testing.T) {
	layout := "Mon Jan 2 15:04 2006"
	tests := []compositeTest{
		{
			compose: func(l, r schedule.Schedule) schedule.Schedule {
				u, err := schedule.Union(l, r)
				require.NoError(t, err)
				return u
			},
			op: "∪", spec1: "0 0/6 * * * *", spec2: "0 0/15 * * * *", layout: layout,
			times: []compositeTime{
				{"Mon Jul 9 15:00 2012", true},
				{"Mon Jul 9 15:06 2012", true},
				{"Mon Jul 9 15:12 2012", true},
				{"Mon Jul 9 15:15 2012", true},
				{"Mon Jul 9 15:16 2012", false},
				{"Mon Jul 9 15:18 2012", true},
			},
		},
		{
			compose: schedule.Minus,
			op:      "-", spec1: "0 0/6 * * * *", spec2: "0 0/15 * * * *", layout: layout,
			times: []compositeTime{
				{"Mon Jul 9 15:00 2012", false},
				{"Mon Jul 9 15:06 2012", true},
				{"Mon Jul 9 15:12 2012", true},
				{"Mon Jul 9 15:15 2012", false},
				{"Mon Jul 9 15:16 2012", false},
				{"Mon Jul 9 15:18 2012", true},
			},
		},
		{
			compose: schedule.Intersect,
			op:      "∩", spec1: "0 0/6 * * * *", spec2: "0 0/15 * * * *", layout: layout,
			times: []compositeTime{
				{"Mon Jul 9 15:00 2012", true},
				{"Mon Jul 9 15:06 2012", false},
				{"Mon Jul 9 15:12 2012", false},
				{"Mon Jul 9 15:15 2012", false},
				{"Mon Jul 9 15:16 2012", false},
				{"Mon Jul 9 15:18 2012", false},
				{"Mon Jul 9 15:30 2012", true},
			},
		},
	}

	for _, test := range tests {
		c1, err := schedule.NewCron(test.spec1)
		require.NoError(t, err)
		c2, err := schedule.NewCron(test.spec2)
		require.NoError(t, err)
		comp := test.compose(c1, c2)

		for _, ctime := range test.times {
			from, err := time.Parse(test.layout, ctime.from)
			require.NoError(t, err)
			from = from.Add(-time.Second)

			next, ok := comp.Next(fakeCtx{loc: time.UTC}, from)
			require.True(t, ok)
			nextStr := next.Format(test.layout)
			if ctime.expected {
				assert.Equal(t, ctime.from, nextStr, fmt.Sprintf("%s %s %s on %s", test.spec1, test.op, test.spec2, ctime.from))
			} else {
				assert.NotEqual(t, ctime.from, nextStr, fmt.Sprintf("%s %s %s on %s", test.spec1, test.op, test.spec2, ctime.from))
			}
		}
	}
}

func TestCronMalformedExpressionFailsAtConstruction(t *testing.T) {
	_, err := schedule.NewCron("not a cron expression")
	assert.Error(t, err)
}

func TestCronDSTForwardLordHowe(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Lord_Howe")
	require.NoError(t, err)

	c, err := schedule.NewCron("0 */30 * * * *")
	require.NoError(t, err)

	from := time.Date(2017, 10, 1, 1, 45, 0, 0, loc)
	next, ok := c.Next(fakeCtx{loc: loc}, from)
	require.True(t, ok)

	want := time.Date(2017, 10, 1, 2, 30, 0, 0, loc)
	assert.True(t, want.Equal(next))
	assert.Equal(t, want.Format(time.RFC3339), next.Format(time.RFC3339))
}

func TestCronDSTBackwardLordHowe(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Lord_Howe")
	require.NoError(t, err)

	c, err := schedule.NewCron("0 */30 * * * *")
	require.NoError(t, err)

	from := time.Date(2017, 4, 2, 1, 29, 59, 0, loc)
	next, ok := c.Next(fakeCtx{loc: loc}, from)
	require.True(t, ok)
	assert.Equal(t, 1, next.Hour())
	assert.Equal(t, 30, next.Minute())

	from2 := time.Date(2017, 4, 2, 1, 59, 0, 0, loc)
	next2, ok := c.Next(fakeCtx{loc: loc}, from2)
	require.True(t, ok)
	assert.Equal(t, 1, next2.Hour())
	assert.Equal(t, 30, next2.Minute())
}
