// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package auxbuf

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/oxenfxc/lxclua/lang/dump"
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// binarySignature is the dump format's 4-byte marker, spec.md §6:
// "Begins with a 4-byte signature (ESC + \"Lua\")".
const binarySignature = "\x1bLua"

// Reader streams successive chunks of source bytes, the role lua_Reader
// plays: a zero-length chunk with a nil error signals end of input.
type Reader func() (chunk []byte, err error)

// ErrNoTextParser is returned by Load when fed a text chunk and no
// ParseText hook has been installed.
var ErrNoTextParser = errors.New("auxbuf: text chunk loaded but no parser is installed")

// ParseText compiles Lua source text into a prototype. No compiler
// front-end ships in this revision (C1-C10 cover the runtime, not a
// lexer/parser); a caller embedding a compiler installs this hook before
// calling Load on anything but pre-dumped binary chunks.
var ParseText func(source string, text []byte) (*proto.Proto, error)

// ReadAll drains read to completion into a single byte slice, accumulating
// through a Buffer so repeated small reads don't each allocate.
func ReadAll(read Reader) ([]byte, error) {
	var buf Buffer
	for {
		chunk, err := read()
		if len(chunk) > 0 {
			buf.PushBytes(chunk)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
	}
	return buf.Bytes(), nil
}

// Load drains read, then dispatches on the binary-chunk signature: a
// dump-format prefix goes to dump.Undump, anything else goes to the
// installed ParseText hook. source names the chunk for error messages
// and debug tracebacks.
func Load(source string, read Reader, interner *value.Interner) (*proto.Proto, error) {
	data, err := ReadAll(read)
	if err != nil {
		return nil, err
	}
	if len(data) >= len(binarySignature) && string(data[:len(binarySignature)]) == binarySignature {
		return dump.Undump(data, interner)
	}
	if ParseText == nil {
		return nil, ErrNoTextParser
	}
	return ParseText(source, data)
}

// LoadString loads a chunk directly from an in-memory string; file and
// string loading differ only in which reader closure is handed to Load.
func LoadString(source, text string, interner *value.Interner) (*proto.Proto, error) {
	done := false
	read := func() ([]byte, error) {
		if done {
			return nil, nil
		}
		done = true
		return []byte(text), nil
	}
	return Load(source, read, interner)
}

// LoadFile loads a chunk by streaming it from disk in fixed-size chunks.
func LoadFile(path string, interner *value.Interner) (*proto.Proto, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	read := func() ([]byte, error) {
		chunk := make([]byte, 4096)
		n, err := r.Read(chunk)
		if n == 0 {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		return chunk[:n], nil
	}
	return Load(path, read, interner)
}
