// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// defaultLogger mirrors the dist-job-scheduler example's development setup:
// a tint handler writing to stderr with a terse, human-readable timestamp.
// Host applications that want structured JSON in production swap it out
// with WithLogger without touching any call site.
func defaultLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	}))
}
