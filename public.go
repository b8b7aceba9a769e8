// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/quartzio/scheduling/schedule"
)

// AfterFunc registers f, named name, to fire once after delay.
func (e *Engine) AfterFunc(name string, delay time.Duration, f func(ctx context.Context) error) (*JobRecord, error) {
	sch := schedule.NewOneOff(e.Now().Add(delay))
	return e.Add(NewJobFunc(name, f), sch)
}

// EveryFunc registers f, named name, to fire every interval, measured from
// its own previous due time (schedule.FromDue) so a slow tick never causes
// drift to accumulate against wall-clock skips.
func (e *Engine) EveryFunc(name string, interval time.Duration, f func(ctx context.Context) error) (*JobRecord, error) {
	sch := schedule.NewGap(interval, schedule.FromDue)
	return e.Add(NewJobFunc(name, f), sch)
}

// CronFunc registers f, named name, to fire according to cronExpr.
func (e *Engine) CronFunc(name, cronExpr string, f func(ctx context.Context) error) (*JobRecord, error) {
	sch, err := schedule.NewCron(cronExpr)
	if err != nil {
		return nil, err
	}
	return e.Add(NewJobFunc(name, f), sch)
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the package-level Engine, creating it (and its
// signal-driven graceful shutdown) on first use.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New()
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		go handleSignal(c, defaultEngine)
	})
	return defaultEngine
}

func handleSignal(c <-chan os.Signal, e *Engine) {
	for sig := range c {
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			fmt.Fprintf(os.Stderr, "default scheduler received signal `%s`, exiting...\n", sig.String())
			e.Dispose()
			os.Exit(0)
		}
	}
}

// AfterFunc registers f with the default engine; see (*Engine).AfterFunc.
func AfterFunc(name string, delay time.Duration, f func(ctx context.Context) error) (*JobRecord, error) {
	return Default().AfterFunc(name, delay, f)
}

// EveryFunc registers f with the default engine; see (*Engine).EveryFunc.
func EveryFunc(name string, interval time.Duration, f func(ctx context.Context) error) (*JobRecord, error) {
	return Default().EveryFunc(name, interval, f)
}

// CronFunc registers f with the default engine; see (*Engine).CronFunc.
func CronFunc(name, cronExpr string, f func(ctx context.Context) error) (*JobRecord, error) {
	return Default().CronFunc(name, cronExpr, f)
}

// Add registers job under sched with the default engine.
func Add(job Job, sched schedule.Schedule) (*JobRecord, error) {
	return Default().Add(job, sched)
}
