// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package em4100 decodes EM4100 read-only tag transmissions.
//
// An EM4100 transmission is 64 bits long, Manchester encoded:
//
//	9 bits  : header, all ones
//	50 bits : 10 rows of 4 data bits (most significant bit first)
//	          followed by an even row parity bit
//	4 bits  : even column parity
//	1 bit   : stop bit, zero
//
// The first 2 nibbles hold the customer (version) code, the last 8 the
// serial number.
package em4100 // import "github.com/go-lpc/rfid/em4100"

import (
	"fmt"
	"strconv"

	"github.com/go-lpc/rfid/lf"
	"golang.org/x/xerrors"
)

var ErrFrame = xerrors.New("em4100: invalid frame")

// ID is a decoded EM4100 identifier, as 10 nibbles.
type ID [NibbleCount]uint8

// NewID returns the identifier of the 40-bit value v.
func NewID(v uint64) ID {
	var id ID
	for i := range id {
		id[i] = uint8(v>>(4*(NibbleCount-1-i))) & 0xf
	}
	return id
}

// Uint64 returns the 40-bit value of the identifier.
func (id ID) Uint64() uint64 {
	var v uint64
	for _, n := range id {
		v = v<<4 | uint64(n&0xf)
	}
	return v
}

// Customer returns the customer (version) code.
func (id ID) Customer() uint8 {
	return id[0]<<4 | id[1]
}

// Serial returns the 32-bit serial number.
func (id ID) Serial() uint32 {
	return uint32(id.Uint64())
}

func (id ID) String() string {
	return fmt.Sprintf("%010X", id.Uint64())
}

// Parse returns the identifier held by a completed EM4100 frame.
func Parse(f lf.Frame) (ID, error) {
	var id ID
	if f.Protocol != lf.EM4100 || f.Len != NibbleCount {
		return id, xerrors.Errorf(
			"em4100: could not parse %v frame with %d entries: %w",
			f.Protocol, f.Len, ErrFrame,
		)
	}
	for i, v := range f.Data[:NibbleCount] {
		if v > 0xf {
			return id, xerrors.Errorf(
				"em4100: invalid nibble[%d]=0x%x: %w", i, v, ErrFrame,
			)
		}
		id[i] = v
	}
	return id, nil
}

// ParseID parses the 10 hexadecimal digits of an identifier.
func ParseID(s string) (ID, error) {
	if len(s) != NibbleCount {
		return ID{}, xerrors.Errorf("em4100: invalid identifier %q: need %d hex digits", s, NibbleCount)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return ID{}, xerrors.Errorf("em4100: invalid identifier %q: %w", s, err)
	}
	return NewID(v), nil
}
