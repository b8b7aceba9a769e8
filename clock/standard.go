// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import "time"

// Standard wraps the OS wall clock. It is the default clock for production
// Engines.
type Standard struct{}

// NewStandard returns a Standard clock.
func NewStandard() Standard { return Standard{} }

// Now returns time.Now().
func (Standard) Now() time.Time { return time.Now() }

// Precision always reports PrecisionStandard.
func (Standard) Precision() Precision { return PrecisionStandard }
