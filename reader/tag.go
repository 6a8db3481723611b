// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import (
	"fmt"

	"github.com/go-lpc/rfid/em4100"
	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/lf"
)

// Tag is a decoded tag.
type Tag struct {
	Protocol lf.Protocol
	ID       uint64 // national ID for FDX-B, 40-bit identifier for EM4100

	FDX fdx.Record // valid for FDX-B tags
	EM  em4100.ID  // valid for EM4100 tags
}

func (tag Tag) String() string {
	switch tag.Protocol {
	case lf.FDXB:
		return tag.FDX.String()
	case lf.EM4100:
		return tag.EM.String()
	default:
		return fmt.Sprintf("%v:%d", tag.Protocol, tag.ID)
	}
}

// Session is the timing of a read session, in clock ticks.
type Session struct {
	Start uint32 // activation time
	End   uint32 // time of the last decoded frame, or deactivation time
}

// Duration returns the elapsed ticks between the start and the end of
// the session, across a wraparound of the clock.
func (s Session) Duration() uint32 {
	return lf.Elapsed(s.Start, s.End)
}

// NewDecoder returns the bit-acquisition state machine of a protocol.
func NewDecoder(proto lf.Protocol, clk lf.Clock) (lf.Decoder, error) {
	switch proto {
	case lf.FDXB:
		return fdx.NewDecoder(clk), nil
	case lf.EM4100:
		return em4100.NewDecoder(clk), nil
	default:
		return nil, fmt.Errorf("reader: unknown protocol %v", proto)
	}
}

func decode(f lf.Frame) (Tag, error) {
	switch f.Protocol {
	case lf.FDXB:
		rec, err := fdx.Format(f)
		if err != nil {
			return Tag{}, fmt.Errorf("reader: could not format frame: %w", err)
		}
		return Tag{Protocol: f.Protocol, ID: rec.ID, FDX: rec}, nil
	case lf.EM4100:
		id, err := em4100.Parse(f)
		if err != nil {
			return Tag{}, fmt.Errorf("reader: could not parse frame: %w", err)
		}
		return Tag{Protocol: f.Protocol, ID: id.Uint64(), EM: id}, nil
	default:
		return Tag{}, fmt.Errorf("reader: unknown protocol %v", f.Protocol)
	}
}
