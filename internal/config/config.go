// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the configuration of a tag reader.
package config // import "github.com/go-lpc/rfid/internal/config"

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-lpc/rfid/em4100"
	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/signal"
	"github.com/go-lpc/rfid/signal/sim"
)

// Config is the configuration of a tag reader.
//
//	protocol = "fdx-b"
//	device   = "gpio"
//	timeout  = "2s"
//
//	[pins]
//	clock = "GPIO17"
//	data  = "GPIO27"
//	field = "GPIO22"
//
//	[report]
//	output = "-"
//	format = "hex"
type Config struct {
	Protocol string        `toml:"protocol"` // fdx-b or em4100
	Device   string        `toml:"device"`   // gpio or sim
	Timeout  time.Duration `toml:"timeout"`  // maximum duration of a read session
	Pins     Pins          `toml:"pins"`
	Report   Report        `toml:"report"`
	Sim      Sim           `toml:"sim"`
}

// Pins holds the names of the GPIO lines of the reader front-end.
type Pins struct {
	Clock string `toml:"clock"`
	Data  string `toml:"data"`
	Field string `toml:"field"`
	Rate  string `toml:"rate"`
	Mode  string `toml:"mode"`
}

// Report configures the sink receiving the outcome of read sessions.
type Report struct {
	Output string `toml:"output"` // file name, "-" for stdout
	Format string `toml:"format"` // hex or dec
}

// Sim configures the simulated front-end.
type Sim struct {
	Tag    string        `toml:"tag"`    // 15-digit FDX-B tag or 10 hex digits EM4100 identifier
	Period time.Duration `toml:"period"` // time between clock edges
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Protocol: lf.FDXB.String(),
		Device:   "gpio",
		Timeout:  2 * time.Second,
		Pins: Pins{
			Clock: "GPIO17",
			Data:  "GPIO27",
			Field: "GPIO22",
		},
		Report: Report{
			Output: "-",
			Format: "hex",
		},
		Sim: Sim{
			Tag: "999000000001008",
		},
	}
}

// Load loads the configuration from the named TOML file, on top of
// the default configuration.
// The returned configuration is not validated, so that command-line
// overrides may be applied before calling Validate.
func Load(fname string) (Config, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not open %q: %w", fname, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return cfg, fmt.Errorf("config: could not load %q: %w", fname, err)
	}
	return cfg, nil
}

// Decode decodes a TOML configuration, on top of the default configuration.
// Unknown keys are rejected. Consistency is checked by Validate.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not decode TOML: %w", err)
	}

	if keys := meta.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		sort.Strings(names)
		return cfg, fmt.Errorf("config: unknown keys: %s", strings.Join(names, ", "))
	}

	return cfg, nil
}

// Validate checks the consistency of the configuration.
func (cfg Config) Validate() error {
	proto, err := lf.ParseProtocol(cfg.Protocol)
	if err != nil {
		return fmt.Errorf("config: invalid protocol: %w", err)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("config: invalid negative timeout %v", cfg.Timeout)
	}

	switch cfg.Device {
	case "gpio":
		for _, p := range []struct {
			name string
			pin  string
		}{
			{"clock", cfg.Pins.Clock},
			{"data", cfg.Pins.Data},
			{"field", cfg.Pins.Field},
		} {
			if p.pin == "" {
				return fmt.Errorf("config: missing %s pin", p.name)
			}
		}
	case "sim":
		_, err := cfg.SimBits(proto)
		if err != nil {
			return fmt.Errorf("config: invalid simulated tag: %w", err)
		}
	default:
		return fmt.Errorf("config: unknown device %q", cfg.Device)
	}

	switch cfg.Report.Format {
	case "hex", "dec":
	default:
		return fmt.Errorf("config: unknown report format %q", cfg.Report.Format)
	}

	return nil
}

// Proto returns the configured protocol.
func (cfg Config) Proto() lf.Protocol {
	proto, err := lf.ParseProtocol(cfg.Protocol)
	if err != nil {
		return lf.FDXB
	}
	return proto
}

// GPIO returns the pins of the GPIO front-end.
func (cfg Config) GPIO() signal.Pins {
	return signal.Pins{
		Clock: cfg.Pins.Clock,
		Data:  cfg.Pins.Data,
		Field: cfg.Pins.Field,
		Rate:  cfg.Pins.Rate,
		Mode:  cfg.Pins.Mode,
	}
}

// SimBits returns the bitstream sent by the simulated tag.
func (cfg Config) SimBits(proto lf.Protocol) ([]uint8, error) {
	switch proto {
	case lf.FDXB:
		rec, err := fdx.ParseRecord(cfg.Sim.Tag)
		if err != nil {
			return nil, err
		}
		bits := fdx.Encode(rec)
		return bits[:], nil
	case lf.EM4100:
		id, err := em4100.ParseID(cfg.Sim.Tag)
		if err != nil {
			return nil, err
		}
		bits := em4100.Encode(id)
		return bits[:], nil
	default:
		return nil, fmt.Errorf("config: unknown protocol %v", proto)
	}
}

// Sink returns the reporting sink writing to w, with the configured format.
func (cfg Config) Sink(w io.Writer) *signal.LineSink {
	if cfg.Report.Format == "dec" {
		return signal.NewDecimalSink(w)
	}
	return signal.NewLineSink(w)
}

// Open opens the configured reader front-end and its clock.
func (cfg Config) Open() (signal.Device, lf.Clock, error) {
	clk := &signal.Monotonic{}
	switch cfg.Device {
	case "gpio":
		dev, err := signal.OpenGPIO(cfg.GPIO())
		if err != nil {
			return nil, nil, fmt.Errorf("config: could not open GPIO front-end: %w", err)
		}
		return dev, clk, nil
	case "sim":
		bits, err := cfg.SimBits(cfg.Proto())
		if err != nil {
			return nil, nil, fmt.Errorf("config: could not create simulated tag: %w", err)
		}
		return sim.New(bits, sim.WithPeriod(cfg.Sim.Period)), clk, nil
	default:
		return nil, nil, fmt.Errorf("config: unknown device %q", cfg.Device)
	}
}
