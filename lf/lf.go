// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lf holds the types shared by the low-frequency tag decoders.
package lf // import "github.com/go-lpc/rfid/lf"

import (
	"fmt"
	"strings"
)

// Protocol identifies a tag air protocol.
type Protocol uint8

const (
	FDXB   Protocol = iota // ISO 11784/11785 FDX-B, biphase
	EM4100                 // EM4100, Manchester
)

func (p Protocol) String() string {
	switch p {
	case FDXB:
		return "fdx-b"
	case EM4100:
		return "em4100"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}

// Baud returns the data rate of the protocol, in bits per second.
func (p Protocol) Baud() int {
	switch p {
	case EM4100:
		return 2000
	default:
		return 4000
	}
}

// Manchester returns whether the protocol is Manchester encoded.
// FDX-B is biphase encoded.
func (p Protocol) Manchester() bool {
	return p == EM4100
}

// ParseProtocol parses the name of a protocol, as returned by Protocol.String.
func ParseProtocol(name string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fdx-b", "fdxb", "fdx", "iso11785":
		return FDXB, nil
	case "em4100", "em":
		return EM4100, nil
	}
	return 0, fmt.Errorf("lf: unknown protocol %q", name)
}

// Status is the outcome of feeding one sampled bit to a Decoder.
type Status uint8

const (
	OK            Status = iota // frame in progress
	FrameComplete               // a frame has been assembled
	ChecksumRetry               // integrity check failed, acquisition restarted
)

func (st Status) String() string {
	switch st {
	case OK:
		return "ok"
	case FrameComplete:
		return "frame-complete"
	case ChecksumRetry:
		return "checksum-retry"
	default:
		return fmt.Sprintf("Status(%d)", uint8(st))
	}
}

// MaxFrameLen is the capacity of a Frame.
const MaxFrameLen = 128

// Frame is a completed acquisition, handed over by value from a Decoder
// to its consumer.
//
// For FDX-B, Data[:Len] holds the raw bits following the header.
// For EM4100, Data[:Len] holds the decoded nibbles.
type Frame struct {
	Protocol Protocol
	Len      int
	Data     [MaxFrameLen]uint8
	End      uint32 // timestamp latched when the last bit was sampled
}

// Bits returns the valid part of the frame data.
func (f *Frame) Bits() []uint8 {
	return f.Data[:f.Len]
}

// Clock is a free-running monotonic counter.
type Clock interface {
	// Now returns the current tick count.
	// The counter wraps around at 2^32.
	Now() uint32
}

// Elapsed returns the number of ticks between start and end.
// The result is correct across a single wraparound of the counter.
func Elapsed(start, end uint32) uint32 {
	return end - start
}

// Decoder is a bit-acquisition state machine, fed with one sampled bit
// per clock edge.
//
// Sample must not block nor allocate: it is called from the edge handler.
type Decoder interface {
	Protocol() Protocol

	// Sample consumes one sampled bit (0 or 1).
	Sample(bit uint8) Status

	// Frame returns a copy of the last completed frame.
	Frame() Frame

	// Reset discards any partially acquired frame.
	Reset()
}
