// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reader implements the read session of a low-frequency tag reader.
//
// A session switches the excitation field on, feeds the sampled bits to
// the bit-acquisition state machine of the configured protocol on each
// clock edge, and hands completed frames over to Read.
// Deactivating the session reports the last decoded tag and the session
// duration to a sink.
package reader // import "github.com/go-lpc/rfid/reader"

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/signal"
)

var (
	ErrActive = errors.New("reader: session already active")
	ErrIdle   = errors.New("reader: no active session")
)

// Reader is a tag reader session controller.
type Reader struct {
	proto lf.Protocol
	dev   signal.Device
	clk   lf.Clock
	msg   *log.Logger
	sink  signal.Sink

	mu  sync.Mutex // guards dec
	dec lf.Decoder

	frames  chan lf.Frame // single-slot mailbox, newest frame wins
	retries atomic.Uint64

	ses struct {
		sync.Mutex
		active bool
		idle   chan struct{} // closed when the session ends
		timing Session
		last   Tag
		ok     bool // whether a tag was decoded during the session
	}
}

// New returns a reader for the given protocol, driving dev and timing
// sessions with clk.
//
// The device is put in its idle state: clock interrupt disabled, field
// off and, if dev is a signal.Configurer, demodulator configured for the
// protocol.
func New(proto lf.Protocol, dev signal.Device, clk lf.Clock, opts ...Option) (*Reader, error) {
	if dev == nil {
		return nil, fmt.Errorf("reader: nil device")
	}
	if clk == nil {
		return nil, fmt.Errorf("reader: nil clock")
	}

	dec, err := NewDecoder(proto, clk)
	if err != nil {
		return nil, err
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Reader{
		proto:  proto,
		dev:    dev,
		clk:    clk,
		msg:    cfg.msg,
		sink:   cfg.sink,
		dec:    dec,
		frames: make(chan lf.Frame, 1),
	}

	err = r.dev.DisableEdge()
	if err != nil {
		return nil, fmt.Errorf("reader: could not disable clock interrupt: %w", err)
	}

	err = r.dev.SetField(false)
	if err != nil {
		return nil, fmt.Errorf("reader: could not switch field off: %w", err)
	}

	if dev, ok := dev.(signal.Configurer); ok {
		err = dev.Configure(proto)
		if err != nil {
			return nil, fmt.Errorf("reader: could not configure device for %v: %w", proto, err)
		}
	}

	return r, nil
}

// Protocol returns the protocol decoded by the reader.
func (r *Reader) Protocol() lf.Protocol { return r.proto }

// Activate starts a read session: the field is switched on, the start
// time recorded and the clock interrupt enabled.
// Activate returns ErrActive if a session is already active.
func (r *Reader) Activate() error {
	r.ses.Lock()
	defer r.ses.Unlock()

	if r.ses.active {
		return ErrActive
	}

	r.mu.Lock()
	r.dec.Reset()
	r.mu.Unlock()
	r.drain()

	r.ses.last = Tag{}
	r.ses.ok = false

	err := r.dev.SetField(true)
	if err != nil {
		return fmt.Errorf("reader: could not switch field on: %w", err)
	}

	now := r.clk.Now()
	r.ses.timing = Session{Start: now, End: now}

	err = r.dev.EnableEdge(r.onEdge)
	if err != nil {
		_ = r.dev.SetField(false)
		return fmt.Errorf("reader: could not enable clock interrupt: %w", err)
	}

	r.ses.active = true
	r.ses.idle = make(chan struct{})
	return nil
}

func (r *Reader) onEdge() { r.OnEdge() }

// OnEdge samples the data line and feeds the bit to the decoder.
// It is the clock-edge handler of an active session and never blocks.
//
// A completed frame is posted to the mailbox, replacing any frame
// not yet consumed by Read.
func (r *Reader) OnEdge() lf.Status {
	bit := r.dev.ReadBit()

	r.mu.Lock()
	st := r.dec.Sample(bit)
	var f lf.Frame
	if st == lf.FrameComplete {
		f = r.dec.Frame()
	}
	r.mu.Unlock()

	switch st {
	case lf.FrameComplete:
		r.post(f)
	case lf.ChecksumRetry:
		r.retries.Add(1)
	}
	return st
}

// post stores f in the mailbox.
// OnEdge is the only producer, so at most one stale frame is dropped.
func (r *Reader) post(f lf.Frame) {
	for {
		select {
		case r.frames <- f:
			return
		default:
		}
		select {
		case <-r.frames:
		default:
		}
	}
}

func (r *Reader) drain() {
	select {
	case <-r.frames:
	default:
	}
}

// Read waits for the next completed frame of the active session and
// decodes it.
//
// FDX-B frames failing their CRC yield an error wrapping fdx.ErrChecksum:
// the session stays active and Read may be called again.
// Read returns ErrIdle when no session is active or when the session is
// deactivated while waiting.
func (r *Reader) Read(ctx context.Context) (Tag, error) {
	r.ses.Lock()
	active, idle := r.ses.active, r.ses.idle
	r.ses.Unlock()

	if !active {
		return Tag{}, ErrIdle
	}

	var f lf.Frame
	select {
	case <-ctx.Done():
		return Tag{}, ctx.Err()
	case <-idle:
		return Tag{}, ErrIdle
	case f = <-r.frames:
	}

	tag, err := decode(f)
	if err != nil {
		return Tag{}, err
	}

	r.ses.Lock()
	defer r.ses.Unlock()
	if r.ses.idle != idle || !r.ses.active {
		// frame completed before the session was deactivated.
		return Tag{}, ErrIdle
	}
	r.ses.last = tag
	r.ses.ok = true
	r.ses.timing.End = f.End

	return tag, nil
}

// Deactivate ends the read session: the clock interrupt is disabled, the
// field switched off and a partially acquired frame discarded.
// When a tag was decoded during the session, its identifier and the
// session duration are reported to the sink.
// A frame completed but not yet consumed by Read is discarded: callers
// wanting that tag reported must call Read before Deactivate.
//
// Deactivate may be called in any state; calling it on an idle reader
// only makes sure the device is idle.
func (r *Reader) Deactivate() error {
	r.ses.Lock()
	defer r.ses.Unlock()

	var errs []error

	err := r.dev.DisableEdge()
	if err != nil {
		errs = append(errs, fmt.Errorf("reader: could not disable clock interrupt: %w", err))
	}

	err = r.dev.SetField(false)
	if err != nil {
		errs = append(errs, fmt.Errorf("reader: could not switch field off: %w", err))
	}

	r.mu.Lock()
	r.dec.Reset()
	r.mu.Unlock()
	r.drain()

	if !r.ses.active {
		return errors.Join(errs...)
	}

	r.ses.active = false
	close(r.ses.idle)

	if !r.ses.ok {
		r.ses.timing.End = r.clk.Now()
	}

	var (
		dur = r.ses.timing.Duration()
		tag = r.ses.last
	)

	switch {
	case r.ses.ok:
		r.msg.Printf("session: tag=%v duration=%d ticks", tag, dur)
		if r.sink != nil {
			err = r.sink.Report(tag.ID, dur)
			if err != nil {
				errs = append(errs, fmt.Errorf("reader: could not report tag %v: %w", tag, err))
			}
		}
	default:
		r.msg.Printf("session: no tag, duration=%d ticks, retries=%d", dur, r.retries.Load())
	}

	return errors.Join(errs...)
}

// Active returns whether a read session is active.
func (r *Reader) Active() bool {
	r.ses.Lock()
	defer r.ses.Unlock()
	return r.ses.active
}

// Session returns the timing of the current, or last, read session.
func (r *Reader) Session() Session {
	r.ses.Lock()
	defer r.ses.Unlock()
	return r.ses.timing
}

// Last returns the last tag decoded during the current, or last, session.
func (r *Reader) Last() (Tag, bool) {
	r.ses.Lock()
	defer r.ses.Unlock()
	return r.ses.last, r.ses.ok
}

// Retries returns the number of acquisitions restarted after a parity
// failure since the reader was created.
func (r *Reader) Retries() uint64 {
	return r.retries.Load()
}
