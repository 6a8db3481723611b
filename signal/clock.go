// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package signal

import (
	"time"

	"github.com/go-lpc/rfid/lf"
)

var epoch = time.Now()

func fallback() time.Duration { return time.Since(epoch) }

// Monotonic is a free-running clock counting ticks of Resolution since
// an arbitrary origin.
// The counter wraps around at 2^32.
type Monotonic struct {
	Resolution time.Duration // tick period, one microsecond if zero
}

var _ lf.Clock = (*Monotonic)(nil)

func (clk *Monotonic) Now() uint32 {
	res := clk.Resolution
	if res <= 0 {
		res = time.Microsecond
	}
	return uint32(monotonic() / uint64(res))
}

// Ticks converts a number of ticks into a duration.
func (clk *Monotonic) Ticks(n uint32) time.Duration {
	res := clk.Resolution
	if res <= 0 {
		res = time.Microsecond
	}
	return time.Duration(n) * res
}
