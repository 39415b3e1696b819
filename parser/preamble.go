// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser implements the section-oriented streaming parser (L1/L2):
// the module preamble reader, the eleven numbered section sub-readers (ids
// 1-11) plus custom and unknown sections, the instruction reader, and the
// 3-state parser state machine that drives them and reports how many bytes
// of the caller's buffer each step consumed.
package parser

import "github.com/tinywasm/core/decode"

// ReadPreamble decodes the 8-byte module preamble (4 magic bytes + a
// little-endian u32 version) without judging validity; the validator
// decides whether the magic/version are acceptable, so parse-only clients
// can still observe the preamble of a malformed module.
func ReadPreamble(c *decode.Cursor) (magic [4]byte, version uint32, err error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return magic, 0, err
	}
	copy(magic[:], b)

	version, err = c.ReadFixedU32LE()
	if err != nil {
		return magic, 0, err
	}
	return magic, version, nil
}
