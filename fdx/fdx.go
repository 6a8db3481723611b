// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdx decodes ISO 11784/11785 FDX-B animal tag transmissions.
//
// An FDX-B transmission is an 11-bit header (ten zeros and a one)
// followed by 13 groups of 9 bits: 8 data bits sent least significant
// bit first, then a control bit set to one.
//
//	group  0..7  : 64-bit identification code
//	               bits  0..37 national ID
//	               bits 38..47 country code
//	               bit  48     data block flag
//	               bits 49..62 reserved
//	               bit  63     animal application flag
//	group  8..9  : CRC-16 of groups 0..7, low byte first
//	group 10..12 : extra data
package fdx // import "github.com/go-lpc/rfid/fdx"

import (
	"fmt"
	"strconv"

	"golang.org/x/xerrors"
)

// Record is a decoded and checksum-verified FDX-B tag.
type Record struct {
	ID        uint64   // 38-bit national identification code
	Country   uint16   // 10-bit country code (ISO 3166 numeric or manufacturer code)
	DataBlock bool     // whether a data block follows the identification code
	Animal    bool     // animal application indicator
	Checksum  bool     // always true for a record returned by Format
	Extra     [3]uint8 // auxiliary data block
}

// String returns the 15-digit representation of the tag,
// the 3-digit country code followed by the 12-digit national ID.
// Country codes above 999 yield 16 digits.
func (rec Record) String() string {
	return fmt.Sprintf("%03d%012d", rec.Country, rec.ID)
}

const (
	MaxID      = 1<<38 - 1
	MaxCountry = 1<<10 - 1
)

// ParseRecord parses the representation of a tag, as returned by
// Record.String: 15 digits, or 16 digits for country codes above 999.
func ParseRecord(s string) (Record, error) {
	n := len(s) - 12
	if n != 3 && n != 4 {
		return Record{}, xerrors.Errorf("fdx: invalid tag %q: need 15 or 16 digits", s)
	}
	country, err := strconv.ParseUint(s[:n], 10, 16)
	if err != nil || country > MaxCountry || (n == 4 && country < 1000) {
		return Record{}, xerrors.Errorf("fdx: invalid country code in tag %q", s)
	}
	id, err := strconv.ParseUint(s[n:], 10, 64)
	if err != nil || id > MaxID {
		return Record{}, xerrors.Errorf("fdx: invalid national ID in tag %q", s)
	}
	return Record{ID: id, Country: uint16(country)}, nil
}
