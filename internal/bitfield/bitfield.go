// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitfield provides helpers to extract and insert fields from
// buffers holding one bit (0 or 1) per element.
package bitfield // import "github.com/go-lpc/rfid/internal/bitfield"

// Uint8 returns the 8 bits starting at off, least significant bit first.
func Uint8(bits []uint8, off int) uint8 {
	var v uint8
	for i := 0; i < 8; i++ {
		v |= (bits[off+i] & 1) << i
	}
	return v
}

// PutUint8 stores v at off, least significant bit first.
func PutUint8(bits []uint8, off int, v uint8) {
	for i := 0; i < 8; i++ {
		bits[off+i] = (v >> i) & 1
	}
}

// Nibble returns the 4 bits starting at off, most significant bit first.
func Nibble(bits []uint8, off int) uint8 {
	return (bits[off]&1)<<3 | (bits[off+1]&1)<<2 | (bits[off+2]&1)<<1 | bits[off+3]&1
}

// PutNibble stores the low 4 bits of v at off, most significant bit first.
func PutNibble(bits []uint8, off int, v uint8) {
	for i := 0; i < 4; i++ {
		bits[off+i] = (v >> (3 - i)) & 1
	}
}

// Parity returns the even parity bit of bits: 1 when an odd number of
// bits are set.
func Parity(bits ...uint8) uint8 {
	var p uint8
	for _, b := range bits {
		p ^= b & 1
	}
	return p
}
