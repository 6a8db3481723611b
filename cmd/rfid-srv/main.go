// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rfid-srv starts a TDAQ server driving a low-frequency tag reader.
//
// The reader is configured on /config (the request body may hold a TOML
// configuration), opened on /init and runs read sessions back to back
// between /start and /stop.
// Each decoded tag is published, CBOR-encoded, on the /tags output.
package main // import "github.com/go-lpc/rfid/cmd/rfid-srv"

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/internal/config"
	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/reader"
)

func main() {
	cmd := flags.New()

	dev := newServer(os.Stdout)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/tags", dev.tags)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

// Payload is the content of a /tags output frame.
type Payload struct {
	Protocol string `cbor:"protocol"`
	ID       uint64 `cbor:"id"`
	Tag      string `cbor:"tag"`
	Country  uint16 `cbor:"country,omitempty"`
	Animal   bool   `cbor:"animal,omitempty"`
	Duration uint32 `cbor:"duration"` // session duration, in microseconds
}

func newPayload(tag reader.Tag, ses reader.Session) Payload {
	p := Payload{
		Protocol: tag.Protocol.String(),
		ID:       tag.ID,
		Tag:      tag.String(),
		Duration: ses.Duration(),
	}
	if tag.Protocol == lf.FDXB {
		p.Country = tag.FDX.Country
		p.Animal = tag.FDX.Animal
	}
	return p
}

type server struct {
	out io.Writer // report output

	mu  sync.Mutex
	cfg config.Config
	dev io.Closer
	rdr *reader.Reader

	n    int
	data chan []byte
}

func newServer(out io.Writer) *server {
	return &server{
		out:  out,
		cfg:  config.Default(),
		data: make(chan []byte, 1024),
	}
}

func (srv *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	if len(req.Body) == 0 {
		return nil
	}

	cfg, err := config.Decode(bytes.NewReader(req.Body))
	if err != nil {
		ctx.Msg.Errorf("could not decode configuration: %+v", err)
		return fmt.Errorf("could not decode configuration: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		ctx.Msg.Errorf("invalid configuration: %+v", err)
		return fmt.Errorf("invalid configuration: %w", err)
	}

	srv.mu.Lock()
	srv.cfg = cfg
	srv.mu.Unlock()
	return nil
}

func (srv *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	err := srv.close()
	if err != nil {
		return fmt.Errorf("could not close previous reader: %w", err)
	}

	dev, clk, err := srv.cfg.Open()
	if err != nil {
		ctx.Msg.Errorf("could not open reader front-end: %+v", err)
		return fmt.Errorf("could not open reader front-end: %w", err)
	}

	rdr, err := reader.New(
		srv.cfg.Proto(), dev, clk,
		reader.WithSink(srv.cfg.Sink(srv.out)),
		reader.WithLogger(log.New(os.Stderr, "rfid-srv: ", 0)),
	)
	if err != nil {
		return fmt.Errorf("could not create reader: %w", err)
	}

	if c, ok := dev.(io.Closer); ok {
		srv.dev = c
	}
	srv.rdr = rdr
	srv.n = 0
	srv.data = make(chan []byte, 1024)
	return nil
}

func (srv *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.n = 0
	srv.data = make(chan []byte, 1024)
	return srv.close()
}

func (srv *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.rdr == nil {
		return fmt.Errorf("reader not initialized")
	}
	return nil
}

func (srv *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	n := srv.n
	srv.mu.Unlock()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (srv *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.close()
}

func (srv *server) close() error {
	var err error
	if srv.rdr != nil {
		err = srv.rdr.Deactivate()
		srv.rdr = nil
	}
	if srv.dev != nil {
		err = errors.Join(err, srv.dev.Close())
		srv.dev = nil
	}
	return err
}

func (srv *server) tags(ctx tdaq.Context, dst *tdaq.Frame) error {
	srv.mu.Lock()
	data := srv.data
	srv.mu.Unlock()

	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case raw := <-data:
		dst.Body = raw
	}
	return nil
}

func (srv *server) run(ctx tdaq.Context) error {
	srv.mu.Lock()
	var (
		rdr     = srv.rdr
		timeout = srv.cfg.Timeout
		data    = srv.data
	)
	srv.mu.Unlock()

	if rdr == nil {
		return fmt.Errorf("reader not initialized")
	}

	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
		}

		tag, ses, err := session(ctx.Ctx, rdr, timeout)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			ctx.Msg.Debugf("no tag")
			continue
		default:
			ctx.Msg.Errorf("could not run read session: %+v", err)
			return err
		}

		raw, err := cbor.Marshal(newPayload(tag, ses))
		if err != nil {
			return fmt.Errorf("could not encode tag %v: %w", tag, err)
		}

		select {
		case data <- raw:
			srv.mu.Lock()
			srv.n++
			srv.mu.Unlock()
		default:
			ctx.Msg.Warnf("dropping tag %v: output full", tag)
		}
	}
}

// session runs a read session until a tag is decoded, the timeout
// expires or ctx is canceled.
func session(ctx context.Context, rdr *reader.Reader, timeout time.Duration) (reader.Tag, reader.Session, error) {
	err := rdr.Activate()
	if err != nil {
		return reader.Tag{}, reader.Session{}, fmt.Errorf("could not activate reader: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	for {
		tag, err := rdr.Read(ctx)
		switch {
		case err == nil:
			ses := rdr.Session()
			err = rdr.Deactivate()
			if err != nil {
				return tag, ses, fmt.Errorf("could not deactivate reader: %w", err)
			}
			return tag, ses, nil
		case errors.Is(err, fdx.ErrChecksum):
			continue
		default:
			_ = rdr.Deactivate()
			return reader.Tag{}, reader.Session{}, err
		}
	}
}
