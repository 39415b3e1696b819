// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wasmdump prints a streaming summary of one or more Wasm binary
// modules: their preamble, a one-line-per-section header, and, with -x,
// the result of validating every chunk as it's parsed.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/validate"
	"github.com/tinywasm/core/wasm"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: wasmdump [options] file1.wasm [file2.wasm [...]]

ex:
 $> wasmdump -h -x ./file1.wasm

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagHeaders = flag.Bool("h", false, "print a one-line-per-section summary")
	flagDetails = flag.Bool("x", false, "validate and show the first error per module, if any")
)

func main() {
	log.SetPrefix("wasmdump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
	}
	if !*flagHeaders && !*flagDetails {
		flag.Usage()
	}

	wasm.SetDebugMode(*flagVerbose)

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Println()
		}
		process(os.Stdout, fname)
	}
}

func process(out io.Writer, fname string) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		log.Fatalf("could not read %q: %v", fname, err)
	}

	p := parser.NewParser()
	v := validate.NewValidator()

	var validationErr error
	funcIndex := 0

	for {
		n, chunk, err := p.Parse(buf)
		if err != nil {
			log.Fatalf("%s: parse error: %v", fname, err)
		}

		if *flagHeaders {
			printChunk(out, fname, &chunk)
		}
		if *flagDetails && validationErr == nil {
			if verr := v.Validate(&chunk); verr != nil {
				validationErr = fmt.Errorf("function %d (or later): %w", funcIndex, verr)
			}
			if chunk.Kind == parser.ChunkSection {
				if cr, ok := chunk.Section.(*parser.CodeSectionReader); ok {
					funcIndex += cr.Count()
				}
			}
		}

		buf = buf[n:]
		if chunk.Kind == parser.ChunkDone {
			break
		}
	}

	if *flagDetails {
		if validationErr != nil {
			fmt.Fprintf(out, "%s: %v\n", fname, validationErr)
		} else {
			fmt.Fprintf(out, "%s: ok\n", fname)
		}
	}
}

func printChunk(out io.Writer, fname string, chunk *parser.Chunk) {
	switch chunk.Kind {
	case parser.ChunkPreamble:
		fmt.Fprintf(out, "%s: module version: %#x\n\nsections:\n\n", fname, chunk.Version)
	case parser.ChunkSection:
		switch r := chunk.Section.(type) {
		case *parser.CustomSectionReader:
			fmt.Fprintf(out, "%9s %q (%d bytes)\n", chunk.SectionID, r.Name, len(r.Data))
		case *parser.UnknownSectionReader:
			fmt.Fprintf(out, "%9s id=%d (%d bytes)\n", "unknown", r.ID, len(r.Data))
		default:
			if n := chunk.Section.Count(); n >= 0 {
				fmt.Fprintf(out, "%9s count: %d\n", chunk.SectionID, n)
			} else {
				fmt.Fprintf(out, "%9s\n", chunk.SectionID)
			}
		}
	}
}
