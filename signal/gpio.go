// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package signal

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-lpc/rfid/lf"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pins holds the names of the GPIO lines wired to a reader front-end,
// as known to the periph.io registry (e.g. "GPIO17" or "P1_11").
// Rate and Mode are optional.
type Pins struct {
	Clock string // demodulated clock, input
	Data  string // demodulated data, input
	Field string // excitation field enable, output
	Rate  string // data rate select, output (high: 2000 baud, low: 4000 baud)
	Mode  string // coding select, output (high: Manchester, low: biphase)
}

// GPIO is a reader front-end wired to general purpose I/O lines.
// The data line is sampled on each rising edge of the clock line.
type GPIO struct {
	clk   gpio.PinIn
	data  gpio.PinIn
	field gpio.PinOut
	rate  gpio.PinOut
	mode  gpio.PinOut

	poll time.Duration // maximum time spent waiting for a single edge

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

var (
	_ Device     = (*GPIO)(nil)
	_ Configurer = (*GPIO)(nil)
)

// OpenGPIO initializes the host drivers and opens the named pins.
func OpenGPIO(pins Pins) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("signal: could not initialize host drivers: %w", err)
	}

	lookup := func(name string, optional bool) (gpio.PinIO, error) {
		if name == "" {
			if optional {
				return nil, nil
			}
			return nil, fmt.Errorf("signal: missing pin name")
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("signal: could not find pin %q", name)
		}
		return p, nil
	}

	clk, err := lookup(pins.Clock, false)
	if err != nil {
		return nil, fmt.Errorf("signal: invalid clock pin: %w", err)
	}
	data, err := lookup(pins.Data, false)
	if err != nil {
		return nil, fmt.Errorf("signal: invalid data pin: %w", err)
	}
	field, err := lookup(pins.Field, false)
	if err != nil {
		return nil, fmt.Errorf("signal: invalid field pin: %w", err)
	}
	rate, err := lookup(pins.Rate, true)
	if err != nil {
		return nil, fmt.Errorf("signal: invalid rate pin: %w", err)
	}
	mode, err := lookup(pins.Mode, true)
	if err != nil {
		return nil, fmt.Errorf("signal: invalid mode pin: %w", err)
	}

	var rateOut, modeOut gpio.PinOut
	if rate != nil {
		rateOut = rate
	}
	if mode != nil {
		modeOut = mode
	}
	return NewGPIO(clk, data, field, rateOut, modeOut)
}

// NewGPIO returns a front-end driving the provided pins.
// rate and mode may be nil when the demodulator is hard-wired.
//
// The field is switched off and the clock interrupt disabled.
func NewGPIO(clk, data gpio.PinIn, field, rate, mode gpio.PinOut) (*GPIO, error) {
	dev := &GPIO{
		clk:   clk,
		data:  data,
		field: field,
		rate:  rate,
		mode:  mode,
		poll:  100 * time.Millisecond,
	}

	err := dev.data.In(gpio.PullNoChange, gpio.NoEdge)
	if err != nil {
		return nil, fmt.Errorf("signal: could not setup data pin %v: %w", dev.data, err)
	}

	err = dev.clk.In(gpio.PullNoChange, gpio.NoEdge)
	if err != nil {
		return nil, fmt.Errorf("signal: could not setup clock pin %v: %w", dev.clk, err)
	}

	err = dev.SetField(false)
	if err != nil {
		return nil, err
	}

	return dev, nil
}

// Configure sets the data rate and coding pins for the protocol.
func (dev *GPIO) Configure(proto lf.Protocol) error {
	if dev.rate != nil {
		lvl := gpio.Low
		if proto.Baud() == 2000 {
			lvl = gpio.High
		}
		err := dev.rate.Out(lvl)
		if err != nil {
			return fmt.Errorf("signal: could not set data rate pin %v: %w", dev.rate, err)
		}
	}

	if dev.mode != nil {
		err := dev.mode.Out(gpio.Level(proto.Manchester()))
		if err != nil {
			return fmt.Errorf("signal: could not set coding pin %v: %w", dev.mode, err)
		}
	}

	return nil
}

func (dev *GPIO) ReadBit() uint8 {
	if dev.data.Read() == gpio.High {
		return 1
	}
	return 0
}

func (dev *GPIO) SetField(on bool) error {
	err := dev.field.Out(gpio.Level(on))
	if err != nil {
		return fmt.Errorf("signal: could not switch field pin %v: %w", dev.field, err)
	}
	return nil
}

func (dev *GPIO) EnableEdge(h func()) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.quit != nil {
		return fmt.Errorf("signal: clock interrupt already enabled")
	}

	err := dev.clk.In(gpio.PullNoChange, gpio.RisingEdge)
	if err != nil {
		return fmt.Errorf("signal: could not enable edge detection on %v: %w", dev.clk, err)
	}

	dev.quit = make(chan struct{})
	dev.done = make(chan struct{})
	go dev.loop(h, dev.quit, dev.done)

	return nil
}

func (dev *GPIO) loop(h func(), quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		default:
		}

		if !dev.clk.WaitForEdge(dev.poll) {
			continue
		}

		select {
		case <-quit:
			return
		default:
			h()
		}
	}
}

func (dev *GPIO) DisableEdge() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.quit == nil {
		return nil
	}
	close(dev.quit)
	<-dev.done
	dev.quit = nil
	dev.done = nil

	err := dev.clk.In(gpio.PullNoChange, gpio.NoEdge)
	if err != nil {
		return fmt.Errorf("signal: could not disable edge detection on %v: %w", dev.clk, err)
	}
	return nil
}

// Close disables the clock interrupt and switches the field off.
func (dev *GPIO) Close() error {
	err := dev.DisableEdge()
	if err != nil {
		return err
	}
	return dev.SetField(false)
}
