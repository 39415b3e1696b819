// Copyright 2020 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command conformance_runner drives the official Wasm spec testsuite's
// per-module JSON scripts against the streaming parser and validator. Only
// the commands that exercise parsing/validation are checked: "module" (must
// parse and validate), and "assert_malformed"/"assert_invalid" (must fail,
// for binary-format scripts). Commands that require actually running code
// ("assert_return", "action", "assert_trap", "get") are outside this
// module's scope and are reported as skipped rather than attempted.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/validate"
)

// this file is based on github.com/perlin-network/life/spec/test_runner/runner.go

type Config struct {
	SourceFilename string    `json:"source_filename"`
	Commands       []Command `json:"commands"`
}

type Command struct {
	Type       string      `json:"type"`
	Line       int         `json:"line"`
	Filename   string      `json:"filename"`
	Name       string      `json:"name"`
	Action     CmdAction   `json:"action"`
	Text       string      `json:"text"`
	ModuleType string      `json:"module_type"`
	Expected   []ValueInfo `json:"expected"`
}

type CmdAction struct {
	Type     string      `json:"type"`
	Module   string      `json:"module"`
	Field    string      `json:"field"`
	Args     []ValueInfo `json:"args"`
	Expected []ValueInfo `json:"expected"`
}

type ValueInfo struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func LoadConfigFromFile(filename string) *Config {
	raw, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// parseAndValidate runs a module's bytes through the full streaming
// pipeline and returns the first error encountered, if any.
func parseAndValidate(buf []byte) error {
	p := parser.NewParser()
	v := validate.NewValidator()
	for {
		n, chunk, err := p.Parse(buf)
		if err != nil {
			return err
		}
		if err := v.Validate(&chunk); err != nil {
			return err
		}
		buf = buf[n:]
		if chunk.Kind == parser.ChunkDone {
			return nil
		}
	}
}

func (c *Config) Run(cfgPath string) {
	dir, _ := filepath.Split(cfgPath)

	for _, cmd := range c.Commands {
		switch cmd.Type {
		case "module":
			input, err := os.ReadFile(path.Join(dir, cmd.Filename))
			if err != nil {
				panic(err)
			}
			if err := parseAndValidate(input); err != nil {
				panic(fmt.Errorf("l%d: %s: expected module to validate, got: %v", cmd.Line, cfgPath, err))
			}

		case "assert_malformed", "assert_invalid":
			if cmd.ModuleType != "binary" {
				fmt.Printf("skipping %s (module_type=%s)\n", cmd.Type, cmd.ModuleType)
				continue
			}
			input, err := os.ReadFile(path.Join(dir, cmd.Filename))
			if err != nil {
				panic(err)
			}
			if err := parseAndValidate(input); err == nil {
				panic(fmt.Errorf("l%d: %s: expected %q (%s), module validated cleanly", cmd.Line, cfgPath, cmd.Text, cmd.Type))
			}

		case "assert_return", "action", "assert_trap", "get", "assert_exhaustion",
			"assert_unlinkable", "assert_return_canonical_nan", "assert_return_arithmetic_nan":
			fmt.Printf("skipping %s (requires execution)\n", cmd.Type)
			continue

		default:
			panic(cmd.Type)
		}
		fmt.Printf("PASS L%d: %s\n", cmd.Line, cfgPath)
	}
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: conformance_runner <script.json>")
	}
	cfg := LoadConfigFromFile(os.Args[1])
	cfg.Run(os.Args[1])
}
