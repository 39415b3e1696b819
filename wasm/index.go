// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

// Distinct index types so that, say, a FuncIndex cannot be passed where a
// TableIndex is expected without an explicit conversion. Design intent
// carried from the teacher's index-space bookkeeping, made nominal rather
// than relying on callers to keep plain uint32s straight.
type (
	TypeIndex   uint32
	FuncIndex   uint32
	TableIndex  uint32
	MemoryIndex uint32
	GlobalIndex uint32
	LocalIndex  uint32
	LabelIndex  uint32
)
