// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

// GlobalSegment is a global-section entry: a GlobalType plus a borrowed
// constant-expression initializer (instruction bytes up to and including
// the terminating `end`).
type GlobalSegment struct {
	Type GlobalType
	Init []byte
}

// ElementSegment describes a group of function indices to splice into a
// table, starting at an offset computed by a borrowed constant-expression
// initializer.
type ElementSegment struct {
	TableIndex TableIndex
	Offset     []byte
	Funcs      []FuncIndex
}

// DataSegment describes raw bytes to splice into a linear memory, starting
// at an offset computed by a borrowed constant-expression initializer.
type DataSegment struct {
	MemoryIndex MemoryIndex
	Offset      []byte
	Data        []byte
}
