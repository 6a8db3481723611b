// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package signal

import (
	"fmt"
	"io"
	"sync"
)

// LineSink writes one line per report: the identifier as 10 upper-case
// hexadecimal digits, a comma and the duration in ticks.
//
//	3A35297439,1520
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	dec bool
}

// NewLineSink returns a sink writing reports to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

// NewDecimalSink returns a sink writing reports to w, with identifiers
// formatted in base 10.
func NewDecimalSink(w io.Writer) *LineSink {
	return &LineSink{w: w, dec: true}
}

func (sink *LineSink) Report(id uint64, ticks uint32) error {
	sink.mu.Lock()
	defer sink.mu.Unlock()

	format := "%010X,%d\n"
	if sink.dec {
		format = "%d,%d\n"
	}
	_, err := fmt.Fprintf(sink.w, format, id, ticks)
	if err != nil {
		return fmt.Errorf("signal: could not write report: %w", err)
	}
	return nil
}

var _ Sink = (*LineSink)(nil)
