// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"log"
	"os"

	"github.com/go-lpc/rfid/signal"
)

type config struct {
	msg  *log.Logger
	sink signal.Sink
}

func newConfig() config {
	return config{
		msg: log.New(os.Stdout, "reader: ", 0),
	}
}

// Option configures a Reader.
type Option func(*config)

// WithLogger sets the logger of the reader.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithSink sets the sink receiving the outcome of each session.
func WithSink(sink signal.Sink) Option {
	return func(cfg *config) {
		cfg.sink = sink
	}
}
