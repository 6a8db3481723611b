// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// fdx-dump decodes and displays sampled tag bitstreams.
//
// Input files hold one character per sampled bit ('0' or '1').
// White space is ignored and '#' starts a comment running until the end
// of the line.
//
// Usage: fdx-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> fdx-dump ./testdata/fdx-b.txt
//	bit=   139 tag=999250000012345 animal=true data-block=true extra=563412
//	bit=   278 error: fdx: inconsistent CRC: recv=0x4b58 comp=0xff18: fdx: invalid checksum
//	frames: 2, errors: 1, retries: 0
package main // import "github.com/go-lpc/rfid/cmd/fdx-dump"

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/rfid/em4100"
	"github.com/go-lpc/rfid/fdx"
	"github.com/go-lpc/rfid/lf"
	"github.com/go-lpc/rfid/reader"
	"github.com/go-lpc/rfid/signal/sim"
)

func main() {
	log.SetPrefix("fdx-dump: ")
	log.SetFlags(0)

	err := xmain(os.Stdout, os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func xmain(stdout io.Writer, args []string) error {
	fset := flag.NewFlagSet("fdx-dump", flag.ContinueOnError)
	name := fset.String("p", "fdx-b", "tag protocol (fdx-b, em4100)")

	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), `fdx-dump decodes and displays sampled tag bitstreams.

Usage: fdx-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> fdx-dump ./testdata/fdx-b.txt
 bit=   139 tag=999250000012345 animal=true data-block=true extra=563412
 bit=   278 error: fdx: inconsistent CRC: recv=0x4b58 comp=0xff18: fdx: invalid checksum
 frames: 2, errors: 1, retries: 0

Options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if fset.NArg() == 0 {
		fset.Usage()
		return fmt.Errorf("missing path to input bitstream file")
	}

	proto, err := lf.ParseProtocol(*name)
	if err != nil {
		return fmt.Errorf("invalid protocol: %w", err)
	}

	for _, fname := range fset.Args() {
		err := process(stdout, fname, proto)
		if err != nil {
			return fmt.Errorf("could not dump file %q: %w", fname, err)
		}
	}
	return nil
}

func process(w io.Writer, fname string, proto lf.Protocol) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	// one tick per sampled bit.
	clk := sim.NewClock(0)
	dec, err := reader.NewDecoder(proto, clk)
	if err != nil {
		return fmt.Errorf("could not create decoder: %w", err)
	}

	var (
		r       = bufio.NewReader(f)
		line    = 1
		comment = false
		frames  = 0
		errs    = 0
		retries = 0
	)
	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("could not read bitstream: %w", err)
		}

		var bit uint8
		switch {
		case c == '\n':
			line++
			comment = false
			continue
		case comment:
			continue
		case c == '#':
			comment = true
			continue
		case c == ' ', c == '\t', c == '\r':
			continue
		case c == '0':
			bit = 0
		case c == '1':
			bit = 1
		default:
			return fmt.Errorf("invalid character %q at line %d", c, line)
		}

		clk.Advance(1)
		switch dec.Sample(bit) {
		case lf.FrameComplete:
			frames++
			err := dump(wbuf, dec.Frame())
			if err != nil {
				errs++
			}
		case lf.ChecksumRetry:
			retries++
		}
	}

	fmt.Fprintf(wbuf, "frames: %d, errors: %d, retries: %d\n", frames, errs, retries)
	return nil
}

func dump(w io.Writer, f lf.Frame) error {
	switch f.Protocol {
	case lf.FDXB:
		rec, err := fdx.Format(f)
		if err != nil {
			fmt.Fprintf(w, "bit=% 6d error: %v\n", f.End, err)
			return err
		}
		fmt.Fprintf(w, "bit=% 6d tag=%s animal=%v data-block=%v extra=%x\n",
			f.End, rec, rec.Animal, rec.DataBlock, rec.Extra[:],
		)
	case lf.EM4100:
		id, err := em4100.Parse(f)
		if err != nil {
			fmt.Fprintf(w, "bit=% 6d error: %v\n", f.End, err)
			return err
		}
		fmt.Fprintf(w, "bit=% 6d tag=%s customer=0x%02x serial=%d\n",
			f.End, id, id.Customer(), id.Serial(),
		)
	}
	return nil
}
