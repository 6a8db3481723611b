// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rfid-ctl is an interactive shell driving a low-frequency tag reader.
//
// Usage: rfid-ctl [OPTIONS]
//
// Example:
//
//	$> rfid-ctl -dev sim
//	rfid> activate
//	rfid> read
//	tag: 999000000001008 (id=0x00000003F0)
//	rfid> deactivate
//	00000003F0,34751
//	rfid> quit
package main // import "github.com/go-lpc/rfid/cmd/rfid-ctl"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-lpc/rfid/internal/config"
	"github.com/go-lpc/rfid/reader"
	"github.com/peterh/liner"
)

func main() {
	log.SetPrefix("rfid-ctl: ")
	log.SetFlags(0)

	var (
		fname = flag.String("cfg", "", "path to TOML configuration file")
		proto = flag.String("p", "", "tag protocol (fdx-b, em4100)")
		dev   = flag.String("dev", "", "reader front-end (gpio, sim)")
	)

	flag.Parse()

	err := run(*fname, *proto, *dev)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(fname, proto, name string) error {
	cfg := config.Default()
	if fname != "" {
		var err error
		cfg, err = config.Load(fname)
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
	}
	if proto != "" {
		cfg.Protocol = proto
	}
	if name != "" {
		cfg.Device = name
	}
	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dev, clk, err := cfg.Open()
	if err != nil {
		return fmt.Errorf("could not open reader front-end: %w", err)
	}
	if c, ok := dev.(io.Closer); ok {
		defer c.Close()
	}

	rdr, err := reader.New(
		cfg.Proto(), dev, clk,
		reader.WithSink(cfg.Sink(os.Stdout)),
		reader.WithLogger(log.New(os.Stderr, "rfid-ctl: ", 0)),
	)
	if err != nil {
		return fmt.Errorf("could not create reader: %w", err)
	}
	defer rdr.Deactivate()

	sh := newShell(os.Stdout, rdr, cfg.Timeout)

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(sh.complete)

	for {
		line, err := term.Prompt("rfid> ")
		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("could not read command: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := sh.exec(line)
		if err != nil {
			fmt.Fprintf(os.Stdout, "error: %+v\n", err)
		}
		if quit {
			return nil
		}
	}
}

type shell struct {
	w       io.Writer
	rdr     *reader.Reader
	timeout time.Duration
	cmds    map[string]command
}

type command struct {
	help string
	fct  func(args []string) error
}

func newShell(w io.Writer, rdr *reader.Reader, timeout time.Duration) *shell {
	sh := &shell{
		w:       w,
		rdr:     rdr,
		timeout: timeout,
	}
	sh.cmds = map[string]command{
		"activate":   {"start a read session", sh.cmdActivate},
		"deactivate": {"end the read session and report the last tag", sh.cmdDeactivate},
		"read":       {"wait for a tag [timeout]", sh.cmdRead},
		"status":     {"display the reader status", sh.cmdStatus},
		"help":       {"display this help message", sh.cmdHelp},
	}
	return sh
}

// exec runs a command line and reports whether the shell should exit.
func (sh *shell) exec(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch name := args[0]; name {
	case "quit", "exit":
		return true, nil
	default:
		cmd, ok := sh.cmds[name]
		if !ok {
			return false, fmt.Errorf("unknown command %q", name)
		}
		return false, cmd.fct(args[1:])
	}
}

func (sh *shell) complete(line string) []string {
	var o []string
	for _, name := range sh.names() {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			o = append(o, name)
		}
	}
	return o
}

func (sh *shell) names() []string {
	names := make([]string, 0, len(sh.cmds)+1)
	for name := range sh.cmds {
		names = append(names, name)
	}
	names = append(names, "quit")
	sort.Strings(names)
	return names
}

func (sh *shell) cmdActivate(args []string) error {
	return sh.rdr.Activate()
}

func (sh *shell) cmdDeactivate(args []string) error {
	return sh.rdr.Deactivate()
}

func (sh *shell) cmdRead(args []string) error {
	timeout := sh.timeout
	if len(args) > 0 {
		v, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", args[0], err)
		}
		timeout = v
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tag, err := sh.rdr.Read(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(sh.w, "no tag\n")
			return nil
		}
		return err
	}
	fmt.Fprintf(sh.w, "tag: %v (id=0x%010X)\n", tag, tag.ID)
	return nil
}

func (sh *shell) cmdStatus(args []string) error {
	ses := sh.rdr.Session()
	fmt.Fprintf(sh.w, "protocol: %v\n", sh.rdr.Protocol())
	fmt.Fprintf(sh.w, "active:   %v\n", sh.rdr.Active())
	fmt.Fprintf(sh.w, "session:  start=%d end=%d duration=%d\n", ses.Start, ses.End, ses.Duration())
	fmt.Fprintf(sh.w, "retries:  %d\n", sh.rdr.Retries())
	if tag, ok := sh.rdr.Last(); ok {
		fmt.Fprintf(sh.w, "last:     %v\n", tag)
	}
	return nil
}

func (sh *shell) cmdHelp(args []string) error {
	for _, name := range sh.names() {
		help := "exit the shell"
		if cmd, ok := sh.cmds[name]; ok {
			help = cmd.help
		}
		fmt.Fprintf(sh.w, "  %-12s %s\n", name, help)
	}
	return nil
}
