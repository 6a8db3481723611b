// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package em4100

import (
	"github.com/go-lpc/rfid/internal/bitfield"
)

// Encode returns the 64-bit transmission of id.
func Encode(id ID) [FrameLen]uint8 {
	var (
		bits [FrameLen]uint8
		cols [4]uint8
	)
	for i := 0; i < HeaderLen; i++ {
		bits[i] = 1
	}

	off := HeaderLen
	for _, n := range id {
		bitfield.PutNibble(bits[:], off, n)
		row := bits[off : off+4]
		bits[off+4] = bitfield.Parity(row...)
		for j, b := range row {
			cols[j] ^= b
		}
		off += groupLen
	}
	copy(bits[off:], cols[:])
	// stop bit.
	bits[FrameLen-1] = 0
	return bits
}
