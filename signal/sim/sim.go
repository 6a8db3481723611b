// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim provides an in-memory reader front-end, replaying the
// transmission of a simulated tag.
package sim // import "github.com/go-lpc/rfid/signal/sim"

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-lpc/rfid/em4100"
	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/signal"
)

// Clock is a tick counter, safe for concurrent use.
type Clock struct {
	n atomic.Uint32
}

// NewClock returns a clock starting at t0.
func NewClock(t0 uint32) *Clock {
	clk := new(Clock)
	clk.n.Store(t0)
	return clk
}

func (clk *Clock) Now() uint32 { return clk.n.Load() }

// Advance moves the clock forward by n ticks and returns the new time.
func (clk *Clock) Advance(n uint32) uint32 { return clk.n.Add(n) }

var _ lf.Clock = (*Clock)(nil)

// FDXB returns the bitstream continuously sent by an FDX-B tag.
func FDXB(rec fdx.Record) []uint8 {
	bits := fdx.Encode(rec)
	return bits[:]
}

// EM4100 returns the bitstream continuously sent by an EM4100 tag.
func EM4100(id em4100.ID) []uint8 {
	bits := em4100.Encode(id)
	return bits[:]
}

// Option configures a simulated device.
type Option func(*Device)

// WithClock advances clk by ticks on every clock edge.
func WithClock(clk *Clock, ticks uint32) Option {
	return func(dev *Device) {
		dev.clk = clk
		dev.tpb = ticks
	}
}

// WithPeriod sets the time between two clock edges.
func WithPeriod(d time.Duration) Option {
	return func(dev *Device) {
		dev.period = d
	}
}

// Device is a simulated reader front-end.
//
// While the field is on and the clock interrupt enabled, the device
// replays its bitstream in a loop, one bit per clock edge, from its own
// goroutine.
type Device struct {
	mu     sync.Mutex
	bits   []uint8
	pos    int
	cur    uint8
	field  bool
	proto  lf.Protocol
	period time.Duration

	clk *Clock
	tpb uint32

	edges uint64

	quit chan struct{}
	done chan struct{}
}

var (
	_ signal.Device     = (*Device)(nil)
	_ signal.Configurer = (*Device)(nil)
)

// New returns a device replaying bits.
func New(bits []uint8, opts ...Option) *Device {
	dev := &Device{
		bits: append([]uint8(nil), bits...),
	}
	for _, opt := range opts {
		opt(dev)
	}
	return dev
}

// Load replaces the replayed bitstream, e.g. when a new tag enters
// the field.
func (dev *Device) Load(bits []uint8) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.bits = append(dev.bits[:0], bits...)
	dev.pos = 0
}

func (dev *Device) Configure(proto lf.Protocol) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.proto = proto
	return nil
}

// Protocol returns the protocol the device was last configured for.
func (dev *Device) Protocol() lf.Protocol {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.proto
}

// Field returns whether the field is on.
func (dev *Device) Field() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.field
}

// Edges returns the number of clock edges generated so far.
func (dev *Device) Edges() uint64 {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.edges
}

func (dev *Device) ReadBit() uint8 {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.cur
}

func (dev *Device) SetField(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.field = on
	return nil
}

func (dev *Device) EnableEdge(h func()) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.quit != nil {
		return fmt.Errorf("sim: clock interrupt already enabled")
	}
	dev.quit = make(chan struct{})
	dev.done = make(chan struct{})
	go dev.loop(h, dev.quit, dev.done)
	return nil
}

func (dev *Device) DisableEdge() error {
	dev.mu.Lock()
	quit, done := dev.quit, dev.done
	dev.quit, dev.done = nil, nil
	dev.mu.Unlock()

	if quit == nil {
		return nil
	}
	close(quit)
	<-done
	return nil
}

func (dev *Device) loop(h func(), quit, done chan struct{}) {
	defer close(done)

	var tick <-chan time.Time
	if dev.period > 0 {
		t := time.NewTicker(dev.period)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-quit:
			return
		default:
		}

		if tick != nil {
			select {
			case <-quit:
				return
			case <-tick:
			}
		}

		if !dev.step() {
			// no carrier: the tag is not powered.
			select {
			case <-quit:
				return
			case <-time.After(time.Millisecond):
			}
			continue
		}
		h()
	}
}

// step latches the next bit of the stream on the data line.
func (dev *Device) step() bool {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if !dev.field || len(dev.bits) == 0 {
		return false
	}
	dev.cur = dev.bits[dev.pos] & 1
	dev.pos = (dev.pos + 1) % len(dev.bits)
	dev.edges++
	if dev.clk != nil {
		dev.clk.Advance(dev.tpb)
	}
	return true
}
