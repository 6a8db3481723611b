// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/rfid/internal/config"
)

func TestRun(t *testing.T) {
	tmp := t.TempDir()

	for _, tc := range []struct {
		name  string
		proto string
		tag   string
		want  string
		n     int
		mon   bool
		stop  bool
	}{
		{
			name:  "fdx-b",
			proto: "fdx-b",
			tag:   "999000000001008",
			want:  "00000003F0,",
			n:     2,
		},
		{
			name:  "em4100",
			proto: "em4100",
			tag:   "06001259E5",
			want:  "06001259E5,",
			n:     3,
		},
		{
			name:  "fdx-b-pmon",
			proto: "fdx-b",
			tag:   "999250000012345",
			want:  "3A35297439,",
			n:     1,
			mon:   true,
		},
		{
			name:  "stop",
			proto: "fdx-b",
			tag:   "999250000012345",
			want:  "3A35297439,",
			n:     0,
			stop:  true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Protocol = tc.proto
			cfg.Device = "sim"
			cfg.Timeout = 10 * time.Second
			cfg.Sim.Tag = tc.tag
			if err := cfg.Validate(); err != nil {
				t.Fatalf("invalid configuration: %+v", err)
			}

			var (
				out  = new(bytes.Buffer)
				stop = make(chan os.Signal, 1)
				mon  = monitor{
					on:    tc.mon,
					freq:  100 * time.Millisecond,
					fname: filepath.Join(tmp, tc.name+"-pmon.log"),
				}
			)
			if tc.stop {
				go func() {
					time.Sleep(500 * time.Millisecond)
					stop <- os.Interrupt
				}()
			}

			err := run(out, cfg, tc.n, mon, stop)
			if err != nil {
				t.Fatalf("could not run: %+v", err)
			}

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			if tc.n > 0 && len(lines) != tc.n {
				t.Fatalf("invalid number of reports: got=%d, want=%d\n%s", len(lines), tc.n, out.String())
			}
			for i, line := range lines {
				if !strings.HasPrefix(line, tc.want) {
					t.Fatalf("invalid report[%d]: got=%q, want prefix %q", i, line, tc.want)
				}
			}

			if tc.mon {
				if _, err := os.Stat(mon.fname); err != nil {
					t.Fatalf("could not find pmon log file: %+v", err)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "rfid.toml")
	err := os.WriteFile(fname, []byte(`
device = "sim"
[sim]
tag = "0123456789"
`), 0644)
	if err != nil {
		t.Fatalf("could not create configuration file: %+v", err)
	}

	// the configuration file holds an em4100 tag: the protocol
	// is overridden from the command line.
	cfg, err := loadConfig(fname, "em4100", "", 3*time.Second)
	if err != nil {
		t.Fatalf("could not load configuration: %+v", err)
	}
	if got, want := cfg.Timeout, 3*time.Second; got != want {
		t.Fatalf("invalid timeout: got=%v, want=%v", got, want)
	}
	if got, want := cfg.Protocol, "em4100"; got != want {
		t.Fatalf("invalid protocol: got=%q, want=%q", got, want)
	}

	_, err = loadConfig("", "hitag", "", 0)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
