// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rfid-read runs read sessions on a low-frequency tag reader and
// reports the decoded tags.
//
// Each session lasts until a tag is decoded or the session timeout
// expires. A line "<tag-id>,<duration>" is written for each decoded tag,
// the duration being expressed in microseconds.
//
// Usage: rfid-read [OPTIONS]
//
// Example:
//
//	$> rfid-read -cfg ./rfid.toml -n 3
//	00000003F0,35112
//	00000003F0,34980
//	00000003F0,35021
package main // import "github.com/go-lpc/rfid/cmd/rfid-read"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/internal/config"
	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/reader"
	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetPrefix("rfid-read: ")
	log.SetFlags(0)

	var (
		fname   = flag.String("cfg", "", "path to TOML configuration file")
		proto   = flag.String("p", "", "tag protocol (fdx-b, em4100)")
		dev     = flag.String("dev", "", "reader front-end (gpio, sim)")
		n       = flag.Int("n", 1, "number of read sessions (0: until interrupted)")
		timeout = flag.Duration("timeout", 0, "read session timeout")
		doMon   = flag.Bool("pmon", false, "enable pmon monitoring")
		doFreq  = flag.Duration("freq", 1*time.Second, "pmon frequency")
	)

	flag.Parse()

	cfg, err := loadConfig(*fname, *proto, *dev, *timeout)
	if err != nil {
		log.Fatalf("could not load configuration: %+v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	err = run(os.Stdout, cfg, *n, monitor{*doMon, *doFreq, "rfid-read-pmon.log"}, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type monitor struct {
	on    bool
	freq  time.Duration
	fname string
}

func loadConfig(fname, proto, dev string, timeout time.Duration) (config.Config, error) {
	cfg := config.Default()
	if fname != "" {
		var err error
		cfg, err = config.Load(fname)
		if err != nil {
			return cfg, err
		}
	}
	if proto != "" {
		cfg.Protocol = proto
	}
	if dev != "" {
		cfg.Device = dev
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg, cfg.Validate()
}

func run(stdout io.Writer, cfg config.Config, n int, mon monitor, stop chan os.Signal) error {
	if mon.on {
		p, err := pmon.Monitor(os.Getpid())
		if err != nil {
			return fmt.Errorf("could not start monitoring: %w", err)
		}
		f, err := os.Create(mon.fname)
		if err != nil {
			return fmt.Errorf("could not create pmon log file: %w", err)
		}
		defer f.Close()
		p.W = f
		p.Freq = mon.freq

		go func() {
			err := p.Run()
			if err != nil {
				log.Printf("could not run monitoring: %+v", err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				log.Printf("could not stop monitoring: %+v", err)
			}
		}()
	}

	out := stdout
	if cfg.Report.Output != "-" && cfg.Report.Output != "" {
		f, err := os.Create(cfg.Report.Output)
		if err != nil {
			return fmt.Errorf("could not create report file: %w", err)
		}
		defer f.Close()
		out = f
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
		reader.WithSink(cfg.Sink(out)),
		reader.WithLogger(log.New(os.Stderr, "rfid-read: ", 0)),
	)
	if err != nil {
		return fmt.Errorf("could not create reader: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer cancel()
		for i := 0; n <= 0 || i < n; i++ {
			err := session(ctx, rdr, cfg.Timeout)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled):
				return nil
			default:
				return err
			}
		}
		return nil
	})

	grp.Go(func() error {
		select {
		case <-stop:
			log.Printf("interrupted")
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("could not run read sessions: %w", err)
	}
	return nil
}

// session runs a single read session, until a tag is decoded or the
// timeout expires.
func session(ctx context.Context, rdr *reader.Reader, timeout time.Duration) error {
	err := rdr.Activate()
	if err != nil {
		return fmt.Errorf("could not activate reader: %w", err)
	}
	defer func() {
		err := rdr.Deactivate()
		if err != nil {
			log.Printf("could not deactivate reader: %+v", err)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for {
		_, err := rdr.Read(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, fdx.ErrChecksum):
			log.Printf("%+v", err)
			continue
		case errors.Is(err, context.DeadlineExceeded):
			if rdr.Protocol() == lf.EM4100 && rdr.Retries() > 0 {
				log.Printf("no tag (parity retries: %d)", rdr.Retries())
			} else {
				log.Printf("no tag")
			}
			return nil
		default:
			return err
		}
	}
}
