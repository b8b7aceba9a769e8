// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import "errors"

// ErrDisposed is returned by Add once the engine has been disposed.
var ErrDisposed = errors.New("scheduler: engine is disposed")
