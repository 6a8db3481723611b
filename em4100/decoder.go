// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package em4100

import (
	"github.com/go-lpc/rfid/internal/bitfield"
	"github.com/go-lpc/rfid/lf"
)

const (
	HeaderLen   = 9                    // number of ones in the header
	FrameLen    = 64                   // bits in a transmission, header included
	NibbleCount = 10                   // data nibbles in a transmission
	dataLen     = FrameLen - HeaderLen // bits acquired after the header
	groupLen    = 5                    // nibble + row parity
)

// Decoder is the EM4100 bit-acquisition state machine.
//
// Each row of 4 data bits is checked against its even parity bit as soon
// as it is received: on mismatch, the acquisition restarts and Sample
// reports lf.ChecksumRetry.
// The column parity bits are acquired but not checked.
type Decoder struct {
	clk lf.Clock

	hdr int // header progress
	cur int // write position in buf
	nib int // bits of the current row
	idx int // next nibble slot

	buf [dataLen]uint8
	ids [NibbleCount]uint8

	frame lf.Frame
}

var _ lf.Decoder = (*Decoder)(nil)

// NewDecoder returns a decoder latching completion times from clk.
func NewDecoder(clk lf.Clock) *Decoder {
	return &Decoder{clk: clk}
}

func (*Decoder) Protocol() lf.Protocol { return lf.EM4100 }

// Sample consumes one sampled bit.
func (dec *Decoder) Sample(bit uint8) lf.Status {
	bit &= 1

	if dec.hdr < HeaderLen {
		if bit == 1 {
			dec.hdr++
		} else {
			dec.hdr = 0
		}
		dec.cur = 0
		dec.nib = 0
		dec.idx = 0
		return lf.OK
	}

	dec.buf[dec.cur] = bit
	switch {
	case dec.nib == groupLen-1 && dec.idx < NibbleCount:
		row := dec.buf[dec.cur-4 : dec.cur]
		if bitfield.Parity(row...) != bit {
			dec.Reset()
			return lf.ChecksumRetry
		}
		dec.ids[dec.idx] = bitfield.Nibble(row, 0)
		dec.idx++
		dec.nib = 0
	default:
		dec.nib++
	}
	dec.cur++

	if dec.cur < dataLen {
		return lf.OK
	}

	dec.frame = lf.Frame{
		Protocol: lf.EM4100,
		Len:      NibbleCount,
		End:      dec.clk.Now(),
	}
	copy(dec.frame.Data[:], dec.ids[:])

	dec.Reset()
	return lf.FrameComplete
}

// Frame returns a copy of the last completed frame.
// Its data holds the 10 decoded nibbles.
func (dec *Decoder) Frame() lf.Frame {
	return dec.frame
}

// Reset discards any partially acquired frame.
func (dec *Decoder) Reset() {
	dec.hdr = 0
	dec.cur = 0
	dec.nib = 0
	dec.idx = 0
}

// HeaderProgress returns the number of header bits matched so far.
func (dec *Decoder) HeaderProgress() int { return dec.hdr }

// Cursor returns the number of data bits acquired so far.
func (dec *Decoder) Cursor() int { return dec.cur }

// NibbleIndex returns the number of nibbles decoded so far.
func (dec *Decoder) NibbleIndex() int { return dec.idx }
