// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package dump

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// Wire-format constants. A dump begins with a 4-byte signature (ESC +
// "Lua") followed by a 7-byte header: major version, minor version,
// format tag, native integer size, native float size, flag bits, and a
// strip flag. The header is not padded to eight bytes.
const (
	signature = "\x1bLua"

	formatVersionMajor = 1
	formatVersionMinor = 0
	formatTag          = 0 // 0 = uncompressed, reserved for future passes

	nativeIntSize   = 8 // bytes; this VM's Value.AsInt is always int64
	nativeFloatSize = 8

	constKindNil    = 0
	constKindFalse  = 1
	constKindTrue   = 2
	constKindInt    = 3
	constKindFloat  = 4
	constKindString = 5
)

// flagBits records endianness and integer-vs-float encoding choices so a
// reader can reject an incompatible build before touching payload bytes.
// This implementation always writes little-endian, always distinguishes
// integer/float constants by tag rather than by value inspection.
const flagBits = 0x01 // bit0: little-endian

// Dump serializes p and its transitive nested prototypes with full debug
// info. DumpStripped omits the debug info (line numbers, upvalue names) —
// the loose reconstruction spec.md §4.7 allows for a stripped reload (line
// info decodes as empty, names as empty strings).
func Dump(p *proto.Proto) []byte {
	return dumpStripped(p, false)
}

// DumpStripped is Dump with debug info omitted, shrinking the payload for
// distribution builds that don't need tracebacks.
func DumpStripped(p *proto.Proto) []byte {
	return dumpStripped(p, true)
}

func dumpStripped(p *proto.Proto, strip bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(signature)
	buf.WriteByte(formatVersionMajor)
	buf.WriteByte(formatVersionMinor)
	buf.WriteByte(formatTag)
	buf.WriteByte(nativeIntSize)
	buf.WriteByte(nativeFloatSize)
	buf.WriteByte(flagBits)
	if strip {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeProto(&buf, p, strip)
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeProto(buf *bytes.Buffer, p *proto.Proto, strip bool) {
	writeString(buf, p.Source)
	writeUvarint(buf, uint64(p.LineDefined))
	writeUvarint(buf, uint64(p.NumParams))
	if p.IsVararg {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeUvarint(buf, uint64(p.MaxStack))

	writeUvarint(buf, uint64(len(p.Code)))
	for _, instr := range p.Code {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], instr)
		buf.Write(word[:])
	}

	writeUvarint(buf, uint64(len(p.Constants)))
	for _, c := range p.Constants {
		writeConstant(buf, c)
	}

	writeUvarint(buf, uint64(len(p.UpvalNames)))
	for i := range p.UpvalNames {
		if p.UpvalInStack[i] {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		writeUvarint(buf, uint64(p.UpvalIndex[i]))
		if !strip {
			writeString(buf, p.UpvalNames[i])
		}
	}

	if !strip {
		writeUvarint(buf, uint64(len(p.LineInfo)))
		for _, l := range p.LineInfo {
			writeUvarint(buf, uint64(l))
		}
	} else {
		writeUvarint(buf, 0)
	}

	writeUvarint(buf, uint64(len(p.Protos)))
	for _, child := range p.Protos {
		writeProto(buf, child, strip)
	}
}

func writeConstant(buf *bytes.Buffer, v value.Value) {
	switch v.Kind() {
	case value.KNil:
		buf.WriteByte(constKindNil)
	case value.KFalse:
		buf.WriteByte(constKindFalse)
	case value.KTrue:
		buf.WriteByte(constKindTrue)
	case value.KInt:
		buf.WriteByte(constKindInt)
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], uint64(v.AsInt()))
		buf.Write(word[:])
	case value.KFloat:
		buf.WriteByte(constKindFloat)
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(v.AsFloat()))
		buf.Write(word[:])
	case value.KString:
		buf.WriteByte(constKindString)
		writeString(buf, v.Object().(*value.String).String())
	}
}
