// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package signal describes the hardware collaborators of a tag reader:
// the demodulated data line, the excitation field, the clock-edge
// interrupt, the monotonic timer and the reporting sink.
package signal // import "github.com/go-lpc/rfid/signal"

import (
	"github.com/go-lpc/rfid/lf"
)

// Source samples the demodulated data line.
type Source interface {
	// ReadBit returns the current level of the data line, 0 or 1.
	ReadBit() uint8
}

// Field controls the excitation field of the reader.
type Field interface {
	SetField(on bool) error
}

// Edge controls the clock-edge interrupt of the reader.
type Edge interface {
	// EnableEdge arranges for h to be called once per clock edge,
	// until DisableEdge is called.
	// Calls to h are serialized.
	EnableEdge(h func()) error

	// DisableEdge disables the clock-edge interrupt.
	// Once DisableEdge returns, no further call to the handler is started.
	DisableEdge() error
}

// Device is a reader front-end.
type Device interface {
	Source
	Field
	Edge
}

// Configurer is implemented by devices whose demodulator needs to be set
// up for the data rate and coding of a protocol.
type Configurer interface {
	Configure(proto lf.Protocol) error
}

// Sink receives the outcome of a read session.
type Sink interface {
	// Report reports the identifier of the tag decoded during a session
	// and the duration of that session, in clock ticks.
	Report(id uint64, ticks uint32) error
}
