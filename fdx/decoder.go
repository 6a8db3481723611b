// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdx

import (
	"github.com/go-lpc/rfid/lf"
)

const (
	hdrZeros     = 10             // number of leading zeros in the header
	hdrConfirmed = hdrZeros + 1   // header progress once the trailing one is seen
	FrameLen     = lf.MaxFrameLen // number of bits acquired after the header
)

// Decoder is the FDX-B bit-acquisition state machine.
// It detects the 11-bit header (ten zeros then a one) and assembles the
// following 128 bits into a frame.
//
// A Decoder is fed one bit per clock edge and never blocks.
type Decoder struct {
	clk lf.Clock

	hdr int // header progress
	cur int // write position in buf
	buf [FrameLen]uint8

	frame lf.Frame // last completed frame
}

var _ lf.Decoder = (*Decoder)(nil)

// NewDecoder returns a decoder latching completion times from clk.
func NewDecoder(clk lf.Clock) *Decoder {
	return &Decoder{clk: clk}
}

func (*Decoder) Protocol() lf.Protocol { return lf.FDXB }

// Sample consumes one sampled bit.
func (dec *Decoder) Sample(bit uint8) lf.Status {
	bit &= 1

	switch {
	case dec.hdr == hdrConfirmed:
		dec.buf[dec.cur] = bit
		dec.cur++

	case dec.hdr < hdrZeros:
		if bit == 0 {
			dec.hdr++
		} else {
			dec.hdr = 0
		}
		dec.cur = 0

	case dec.hdr == hdrZeros:
		if bit == 1 {
			dec.hdr = hdrConfirmed
		}
		// more zeros: the last ten samples are still a valid header prefix.
	}

	if dec.cur < FrameLen {
		return lf.OK
	}

	dec.frame.Protocol = lf.FDXB
	dec.frame.Len = FrameLen
	dec.frame.Data = dec.buf
	dec.frame.End = dec.clk.Now()

	dec.cur = 0
	dec.hdr = 0
	return lf.FrameComplete
}

// Frame returns a copy of the last completed frame.
func (dec *Decoder) Frame() lf.Frame {
	return dec.frame
}

// Reset discards any partially acquired frame.
func (dec *Decoder) Reset() {
	dec.hdr = 0
	dec.cur = 0
}

// HeaderProgress returns the number of header bits matched so far.
func (dec *Decoder) HeaderProgress() int { return dec.hdr }

// Cursor returns the number of frame bits acquired so far.
func (dec *Decoder) Cursor() int { return dec.cur }
