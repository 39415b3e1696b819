// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

// SectionID is the 1-byte code that tags both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom   SectionID = 0
	SectionIDType     SectionID = 1
	SectionIDImport   SectionID = 2
	SectionIDFunction SectionID = 3
	SectionIDTable    SectionID = 4
	SectionIDMemory   SectionID = 5
	SectionIDGlobal   SectionID = 6
	SectionIDExport   SectionID = 7
	SectionIDStart    SectionID = 8
	SectionIDElement  SectionID = 9
	SectionIDCode     SectionID = 10
	SectionIDData     SectionID = 11
)

var sectionIDNames = map[SectionID]string{
	SectionIDCustom:   "custom",
	SectionIDType:     "type",
	SectionIDImport:   "import",
	SectionIDFunction: "function",
	SectionIDTable:    "table",
	SectionIDMemory:   "memory",
	SectionIDGlobal:   "global",
	SectionIDExport:   "export",
	SectionIDStart:    "start",
	SectionIDElement:  "element",
	SectionIDCode:     "code",
	SectionIDData:     "data",
}

func (s SectionID) String() string {
	if n, ok := sectionIDNames[s]; ok {
		return n
	}
	return "unknown"
}

// KnownSectionID reports whether id names one of the twelve numbered
// sections (as opposed to an id reserved for a future extension, surfaced
// by the parser as Unknown(id)).
func KnownSectionID(id byte) (SectionID, bool) {
	_, ok := sectionIDNames[SectionID(id)]
	return SectionID(id), ok
}
