// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdx

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-lpc/rfid/lf"
	"golang.org/x/xerrors"
)

func frameFrom(bits []uint8) lf.Frame {
	f := lf.Frame{Protocol: lf.FDXB, Len: FrameLen}
	copy(f.Data[:], bits)
	return f
}

func TestFormat(t *testing.T) {
	for _, tc := range []struct {
		name string
		bits []uint8
		want Record
		str  string
	}{
		{
			name: "fixture-a",
			bits: bitsFrom(rawFixtureA),
			want: Record{
				ID:        250000012345,
				Country:   999,
				DataBlock: true,
				Animal:    true,
				Checksum:  true,
				Extra:     [3]uint8{0x56, 0x34, 0x12},
			},
			str: "999250000012345",
		},
		{
			name: "fixture-b",
			bits: func() []uint8 {
				bits := Encode(Record{ID: 1008, Country: 999, DataBlock: true, Animal: true})
				return bits[:]
			}(),
			want: Record{
				ID:        1008,
				Country:   999,
				DataBlock: true,
				Animal:    true,
				Checksum:  true,
			},
			str: "999000000001008",
		},
		{
			name: "zero",
			bits: func() []uint8 {
				bits := Encode(Record{})
				return bits[:]
			}(),
			want: Record{Checksum: true},
			str:  "000000000000000",
		},
		{
			name: "max",
			bits: func() []uint8 {
				bits := Encode(Record{ID: MaxID, Country: MaxCountry})
				return bits[:]
			}(),
			want: Record{ID: MaxID, Country: MaxCountry, Checksum: true},
			str:  "1023274877906943",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(frameFrom(tc.bits))
			if err != nil {
				t.Fatalf("could not format frame: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("invalid record:\ngot= %+v\nwant=%+v", got, tc.want)
			}
			if got, want := got.String(), tc.str; got != want {
				t.Fatalf("invalid string: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestFormatEncoderFixture(t *testing.T) {
	rec := Record{
		ID:        250000012345,
		Country:   999,
		DataBlock: true,
		Animal:    true,
		Extra:     [3]uint8{0x56, 0x34, 0x12},
	}
	var (
		got  = Encode(rec)
		want = bitsFrom(rawFixtureA)
	)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("invalid encoded bit[%d]: got=%d, want=%d", i, got[i], want[i])
		}
	}

	tx := Transmission(rec)
	if got, want := len(tx), HeaderLen+FrameLen; got != want {
		t.Fatalf("invalid transmission length: got=%d, want=%d", got, want)
	}
	if got, want := string(tx[:HeaderLen]), string([]uint8{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}); got != want {
		t.Fatalf("invalid transmission header: got=%v", tx[:HeaderLen])
	}
}

func TestFormatChecksum(t *testing.T) {
	bits := bitsFrom(rawFixtureA)
	// flip bit 4 of identification byte 3.
	bits[3*groupLen+4] ^= 1

	rec, err := Format(frameFrom(bits))
	if err == nil {
		t.Fatalf("expected a checksum error")
	}
	if !xerrors.Is(err, ErrChecksum) {
		t.Fatalf("invalid error type: %+v", err)
	}
	if errors.Is(err, ErrFrame) {
		t.Fatalf("checksum error reported as framing error: %+v", err)
	}
	if got, want := err.Error(), "recv=0x4b58 comp=0xff18"; !strings.Contains(got, want) {
		t.Fatalf("invalid error message: got=%q, want=%q", got, want)
	}
	if rec != (Record{}) {
		t.Fatalf("expected a zero record, got=%+v", rec)
	}
}

func TestFormatControlBits(t *testing.T) {
	// control bits are not covered by the checksum.
	bits := bitsFrom(rawFixtureA)
	for k := 0; k < 13; k++ {
		bits[k*groupLen+8] = 0
	}
	rec, err := Format(frameFrom(bits))
	if err != nil {
		t.Fatalf("could not format frame: %+v", err)
	}
	if got, want := rec.ID, uint64(250000012345); got != want {
		t.Fatalf("invalid ID: got=%d, want=%d", got, want)
	}
}

func TestFormatInvalidFrame(t *testing.T) {
	for _, tc := range []struct {
		name  string
		frame lf.Frame
	}{
		{
			name:  "em4100",
			frame: lf.Frame{Protocol: lf.EM4100, Len: 10},
		},
		{
			name:  "short",
			frame: lf.Frame{Protocol: lf.FDXB, Len: 64},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Format(tc.frame)
			if !errors.Is(err, ErrFrame) {
				t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrFrame)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	for _, tc := range []struct {
		str  string
		want Record
		err  bool
	}{
		{str: "999250000012345", want: Record{ID: 250000012345, Country: 999}},
		{str: "999000000001008", want: Record{ID: 1008, Country: 999}},
		{str: "000000000000000", want: Record{}},
		{str: "99925000001234", err: true},
		{str: "99925000001234x", err: true},
		{str: "999999999999999", err: true}, // national ID overflows 38 bits
		{str: "1000000000001008", want: Record{ID: 1008, Country: 1000}},
		{str: "1023274877906943", want: Record{ID: MaxID, Country: MaxCountry}},
		{str: "0999000000001008", err: true}, // 3-digit country code padded to 4
		{str: "1024000000001008", err: true}, // country code overflows 10 bits
		{str: "10230000000010080", err: true},
		{str: "", err: true},
	} {
		t.Run(tc.str, func(t *testing.T) {
			got, err := ParseRecord(tc.str)
			switch {
			case err != nil && !tc.err:
				t.Fatalf("could not parse %q: %+v", tc.str, err)
			case err == nil && tc.err:
				t.Fatalf("expected an error for %q", tc.str)
			case err == nil:
				if got != tc.want {
					t.Fatalf("got=%+v, want=%+v", got, tc.want)
				}
				if got.String() != tc.str {
					t.Fatalf("round-trip failed: got=%q, want=%q", got.String(), tc.str)
				}
			}
		})
	}
}
