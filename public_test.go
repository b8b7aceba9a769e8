// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineAfterFunc(t *testing.T) {
	e := New()
	defer e.Dispose()

	out := make(chan bool, 1)
	_, err := e.AfterFunc("after", 10*time.Millisecond, func(ctx context.Context) error {
		out <- true
		return nil
	})
	require.NoError(t, err)

	select {
	case v := <-out:
		assert.True(t, v)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected AfterFunc to fire")
	}
}

func TestEngineEveryFunc(t *testing.T) {
	e := New()
	defer e.Dispose()

	var calls int32
	_, err := e.EveryFunc("every", 10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)

	time.Sleep(35 * time.Millisecond)
	got := atomic.LoadInt32(&calls)
	assert.GreaterOrEqual(t, got, int32(2))
}

func TestEngineCronFunc(t *testing.T) {
	e := New()
	defer e.Dispose()

	var calls int32
	_, err := e.CronFunc("ticker", "* * * * * *", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)

	time.Sleep(1200 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestEngineCronFuncRejectsMalformedExpression(t *testing.T) {
	e := New()
	defer e.Dispose()

	_, err := e.CronFunc("bad", "not a cron expression", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}

func TestDefaultAfterFunc(t *testing.T) {
	out := make(chan bool, 1)
	_, err := AfterFunc("default-after", 10*time.Millisecond, func(ctx context.Context) error {
		out <- true
		return nil
	})
	require.NoError(t, err)

	select {
	case v := <-out:
		assert.True(t, v)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected the default engine's AfterFunc to fire")
	}
}
