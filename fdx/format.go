// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdx

import (
	"github.com/go-lpc/rfid/internal/bitfield"
	"github.com/go-lpc/rfid/internal/crc16"
	"github.com/go-lpc/rfid/lf"
	"golang.org/x/xerrors"
)

var (
	ErrChecksum = xerrors.New("fdx: invalid checksum")
	ErrFrame    = xerrors.New("fdx: invalid frame")
)

// bit offsets of the 8-bit fields in a frame.
// Each field is followed by a control bit which is not part of the payload.
const (
	offCRCLo  = 72
	offCRCHi  = 81
	offExtra0 = 90
	offExtra1 = 99
	offExtra2 = 108

	groupLen = 9
	nIDBytes = 8
)

// Format decodes a completed FDX-B frame into a tag record.
//
// The CRC-16 transmitted with the frame is verified against the
// identification code before any field is decoded: on mismatch,
// Format returns an error wrapping ErrChecksum and a zero Record.
func Format(f lf.Frame) (Record, error) {
	if f.Protocol != lf.FDXB || f.Len != FrameLen {
		return Record{}, xerrors.Errorf(
			"fdx: could not format %v frame with %d bits: %w",
			f.Protocol, f.Len, ErrFrame,
		)
	}

	var (
		bits = f.Data[:FrameLen]
		code [nIDBytes]uint8
	)
	for k := range code {
		code[k] = bitfield.Uint8(bits, k*groupLen)
	}

	var (
		recv = uint16(bitfield.Uint8(bits, offCRCLo)) | uint16(bitfield.Uint8(bits, offCRCHi))<<8
		comp = crc16.Checksum(code[:], crc16.CCITT, 0x0000)
	)
	if recv != comp {
		return Record{}, xerrors.Errorf(
			"fdx: inconsistent CRC: recv=0x%04x comp=0x%04x: %w",
			recv, comp, ErrChecksum,
		)
	}

	rec := Record{
		ID: uint64(code[0]) |
			uint64(code[1])<<8 |
			uint64(code[2])<<16 |
			uint64(code[3])<<24 |
			uint64(code[4]&0x3f)<<32,
		Country:   uint16(code[5])<<2 | uint16(code[4]&0xc0)>>6,
		DataBlock: code[6]&0x01 == 0x01,
		Animal:    code[7]&0x80 == 0x80,
		Checksum:  true,
		Extra: [3]uint8{
			bitfield.Uint8(bits, offExtra0),
			bitfield.Uint8(bits, offExtra1),
			bitfield.Uint8(bits, offExtra2),
		},
	}

	return rec, nil
}
