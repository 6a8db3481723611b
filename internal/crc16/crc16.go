// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the bit-reversed (LSB-first) 16-bit cyclic
// redundancy check used by ISO 11785 FDX-B transponders.
package crc16 // import "github.com/go-lpc/rfid/internal/crc16"

import (
	"hash"
)

// Size of a CRC-16 checksum in bytes.
const Size = 2

// CCITT is the bit-reversed form of the CRC-16/CCITT polynomial
// x^16 + x^12 + x^5 + 1.
const CCITT = 0x8408

// Table is a 256-word table representing the polynomial for efficient processing.
type Table [256]uint16

var ccittTable = MakeTable(CCITT)

// MakeTable returns a Table constructed from the specified reversed polynomial.
func MakeTable(poly uint16) *Table {
	t := new(Table)
	for i := range t {
		t[i] = Checksum([]byte{byte(i)}, poly, 0)
	}
	return t
}

// Checksum returns the CRC-16 of p, computed one bit at a time with the
// reversed polynomial poly, starting from seed.
func Checksum(p []byte, poly, seed uint16) uint16 {
	crc := seed
	for _, v := range p {
		crc ^= uint16(v)
		for i := 0; i < 8; i++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ poly
				continue
			}
			crc >>= 1
		}
	}
	return crc
}

// Update returns the result of adding the bytes in p to the crc.
func Update(crc uint16, tab *Table, p []byte) uint16 {
	for _, v := range p {
		crc = tab[byte(crc)^v] ^ (crc >> 8)
	}
	return crc
}

// Hash16 is the common interface implemented by all 16-bit hash functions.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	seed uint16
	crc  uint16
	tab  *Table
}

// New creates a new Hash16 computing the CRC-16 checksum using the
// polynomial represented by the Table and a zero seed.
// A nil table selects the CCITT polynomial.
func New(tab *Table) Hash16 {
	return NewSeed(tab, 0)
}

// NewSeed is like New but starts the checksum from seed.
func NewSeed(tab *Table, seed uint16) Hash16 {
	if tab == nil {
		tab = ccittTable
	}
	return &digest{seed: seed, crc: seed, tab: tab}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = d.seed }

func (d *digest) Write(p []byte) (int, error) {
	d.crc = Update(d.crc, d.tab, p)
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}
