// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdx

import (
	"github.com/go-lpc/rfid/internal/bitfield"
	"github.com/go-lpc/rfid/internal/crc16"
)

// HeaderLen is the number of bits of an FDX-B header.
const HeaderLen = hdrConfirmed

// Encode returns the 128 bits a reader acquires after the header of a
// transmission of rec: the 13 groups of 9 bits of the telegram, followed
// by the 11-bit header of the next transmission.
//
// The checksum of the telegram is always computed; rec.Checksum is ignored.
func Encode(rec Record) [FrameLen]uint8 {
	code := [nIDBytes]uint8{
		uint8(rec.ID),
		uint8(rec.ID >> 8),
		uint8(rec.ID >> 16),
		uint8(rec.ID >> 24),
		uint8(rec.ID>>32)&0x3f | uint8(rec.Country&0x3)<<6,
		uint8(rec.Country >> 2),
		0,
		0,
	}
	if rec.DataBlock {
		code[6] |= 0x01
	}
	if rec.Animal {
		code[7] |= 0x80
	}

	h := crc16.New(nil)
	_, _ = h.Write(code[:])
	crc := h.Sum16()

	var (
		bits   [FrameLen]uint8
		groups = make([]uint8, 0, 13)
	)
	groups = append(groups, code[:]...)
	groups = append(groups, uint8(crc), uint8(crc>>8))
	groups = append(groups, rec.Extra[:]...)

	for k, v := range groups {
		off := k * groupLen
		bitfield.PutUint8(bits[:], off, v)
		bits[off+8] = 1
	}

	// header of the next transmission: ten zeros then a one.
	bits[FrameLen-1] = 1
	return bits
}

// Transmission returns a complete FDX-B transmission of rec, header included.
func Transmission(rec Record) []uint8 {
	out := make([]uint8, HeaderLen, HeaderLen+FrameLen)
	out[HeaderLen-1] = 1
	bits := Encode(rec)
	return append(out, bits[:]...)
}
