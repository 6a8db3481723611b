// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crc16_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/go-lpc/rfid/internal/crc16"
)

func TestCRC16(t *testing.T) {
	for _, tc := range []struct {
		raw  []byte
		want uint16
	}{
		{
			raw:  []byte("123456789"),
			want: 0x2189,
		},
		{
			raw:  make([]byte, 8),
			want: 0x0000,
		},
		{
			raw:  bytes.Repeat([]byte{0xff}, 8),
			want: 0x8765,
		},
		{
			raw:  []byte{0x1, 0x2, 0x3, 0x4, 0x5},
			want: 0xed9b,
		},
		{
			// ISO 11784 tag 999-000000001008, data block + animal flags.
			raw:  []byte{0xf0, 0x03, 0x00, 0x00, 0xc0, 0xf9, 0x01, 0x80},
			want: 0x5dd6,
		},
	} {
		t.Run(fmt.Sprintf("0x%04x", tc.want), func(t *testing.T) {
			if got, want := crc16.Checksum(tc.raw, crc16.CCITT, 0), tc.want; got != want {
				t.Fatalf("invalid bitwise crc16: got=0x%04x, want=0x%04x", got, want)
			}

			crc := crc16.New(nil)
			if got, want := crc.BlockSize(), 1; got != want {
				t.Fatalf("invalid crc16 block size: got=%d, want=%d", got, want)
			}

			crc.Reset()

			_, err := crc.Write(tc.raw)
			if err != nil {
				t.Fatalf("could not write crc16 hash: %+v", err)
			}

			if got, want := crc.Sum16(), tc.want; got != want {
				t.Fatalf("invalid crc16 checksum: got=0x%x, want=0x%x",
					got, want,
				)
			}

			asBytes := func(v uint16) []byte {
				buf := make([]byte, crc.Size())
				binary.BigEndian.PutUint16(buf, v)
				return buf
			}

			if got, want := crc.Sum(nil), asBytes(tc.want); !bytes.Equal(got, want) {
				t.Fatalf("invalid crc16 checksum: got=0x%x, want=0x%x",
					got, want,
				)
			}
		})
	}
}

func TestCRC16Deterministic(t *testing.T) {
	raw := []byte{0x39, 0x74, 0x29, 0x35, 0xfa, 0xf9, 0x01, 0x80}
	want := crc16.Checksum(raw, crc16.CCITT, 0)
	for i := 0; i < 10; i++ {
		if got := crc16.Checksum(raw, crc16.CCITT, 0); got != want {
			t.Fatalf("crc16 not deterministic: got=0x%04x, want=0x%04x", got, want)
		}
	}
	if got, want := want, uint16(0x4b58); got != want {
		t.Fatalf("invalid crc16: got=0x%04x, want=0x%04x", got, want)
	}
}

func TestCRC16Streaming(t *testing.T) {
	raw := []byte("123456789")
	crc := crc16.New(nil)
	for i := range raw {
		_, _ = crc.Write(raw[i : i+1])
	}
	if got, want := crc.Sum16(), uint16(0x2189); got != want {
		t.Fatalf("invalid streamed crc16: got=0x%04x, want=0x%04x", got, want)
	}

	crc.Reset()
	if got, want := crc.Sum16(), uint16(0); got != want {
		t.Fatalf("invalid crc16 after reset: got=0x%04x, want=0x%04x", got, want)
	}
}

func TestCRC16Seed(t *testing.T) {
	raw := []byte("123456789")
	for _, seed := range []uint16{0x0000, 0xffff, 0x1d0f} {
		t.Run(fmt.Sprintf("seed=0x%04x", seed), func(t *testing.T) {
			var (
				want = crc16.Checksum(raw, crc16.CCITT, seed)
				crc  = crc16.NewSeed(nil, seed)
			)
			_, _ = crc.Write(raw)
			if got := crc.Sum16(); got != want {
				t.Fatalf("invalid seeded crc16: got=0x%04x, want=0x%04x", got, want)
			}
			if got := crc16.Update(seed, crc16.MakeTable(crc16.CCITT), raw); got != want {
				t.Fatalf("invalid table crc16: got=0x%04x, want=0x%04x", got, want)
			}
		})
	}
}
