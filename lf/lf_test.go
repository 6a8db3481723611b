// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lf

import (
	"math"
	"testing"
)

func TestElapsed(t *testing.T) {
	for _, tc := range []struct {
		name       string
		start, end uint32
		want       uint32
	}{
		{"zero", 0, 0, 0},
		{"simple", 100, 350, 250},
		{"wraparound", math.MaxUint32 - 9, 20, 30},
		{"wrap-at-max", math.MaxUint32, 0, 1},
		{"full-range", 1, 0, math.MaxUint32},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := Elapsed(tc.start, tc.end), tc.want; got != want {
				t.Fatalf("got=%d, want=%d", got, want)
			}
		})
	}
}

func TestParseProtocol(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Protocol
		err  bool
	}{
		{name: "fdx-b", want: FDXB},
		{name: "FDXB", want: FDXB},
		{name: " iso11785 ", want: FDXB},
		{name: "em4100", want: EM4100},
		{name: "EM", want: EM4100},
		{name: "hitag", err: true},
		{name: "", err: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseProtocol(tc.name)
			switch {
			case err != nil && !tc.err:
				t.Fatalf("could not parse %q: %+v", tc.name, err)
			case err == nil && tc.err:
				t.Fatalf("expected an error for %q", tc.name)
			case err == nil:
				if got != tc.want {
					t.Fatalf("got=%v, want=%v", got, tc.want)
				}
				if back, err := ParseProtocol(got.String()); err != nil || back != got {
					t.Fatalf("round-trip failed: got=%v, err=%v", back, err)
				}
			}
		})
	}
}

func TestProtocolParams(t *testing.T) {
	if got, want := FDXB.Baud(), 4000; got != want {
		t.Fatalf("fdx-b baud: got=%d, want=%d", got, want)
	}
	if got, want := EM4100.Baud(), 2000; got != want {
		t.Fatalf("em4100 baud: got=%d, want=%d", got, want)
	}
	if FDXB.Manchester() {
		t.Fatalf("fdx-b is biphase encoded")
	}
	if !EM4100.Manchester() {
		t.Fatalf("em4100 is manchester encoded")
	}
}

func TestStatusString(t *testing.T) {
	for _, tc := range []struct {
		st   Status
		want string
	}{
		{OK, "ok"},
		{FrameComplete, "frame-complete"},
		{ChecksumRetry, "checksum-retry"},
		{Status(42), "Status(42)"},
	} {
		if got := tc.st.String(); got != tc.want {
			t.Fatalf("got=%q, want=%q", got, tc.want)
		}
	}
}

func TestFrameBits(t *testing.T) {
	f := Frame{Len: 3}
	f.Data[0] = 1
	f.Data[2] = 1
	f.Data[3] = 1

	bits := f.Bits()
	if got, want := len(bits), 3; got != want {
		t.Fatalf("invalid len: got=%d, want=%d", got, want)
	}
	if bits[0] != 1 || bits[1] != 0 || bits[2] != 1 {
		t.Fatalf("invalid bits: %v", bits)
	}
}
