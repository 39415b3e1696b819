// Copyright 2018 The go-interpreter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempModule(t *testing.T, buf []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.wasm")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestProcessHeaders(t *testing.T) {
	require.NoError(t, flag.CommandLine.Parse([]string{"-h"}))

	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x01, 0x04, 0x01, 0x60, 0x00, 0x00) // type section, one () -> () entry
	path := writeTempModule(t, buf)

	out := new(bytes.Buffer)
	process(out, path)

	require.Contains(t, out.String(), "module version: 0x1")
	require.Contains(t, out.String(), "type")
}

func TestProcessDetailsAcceptsValidModule(t *testing.T) {
	require.NoError(t, flag.CommandLine.Parse([]string{"-x"}))

	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	path := writeTempModule(t, buf)

	out := new(bytes.Buffer)
	process(out, path)

	require.Contains(t, out.String(), "ok")
}

func TestProcessDetailsRejectsBadMagic(t *testing.T) {
	require.NoError(t, flag.CommandLine.Parse([]string{"-x"}))

	buf := []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}
	path := writeTempModule(t, buf)

	out := new(bytes.Buffer)
	process(out, path)

	require.Contains(t, out.String(), "bad magic number")
}
