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

// reader walks a dump byte slice; every method panics on short input and
// Undump recovers the panic into ErrTruncated, keeping the per-field
// decode code free of error-threading boilerplate (RLP-adjacent decoders
// follow this same read-or-panic-and-recover shape for nested
// variable-length structures).
type reader struct {
	data []byte
	pos  int
}

func (r *reader) byte() byte {
	if r.pos >= len(r.data) {
		panic(ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) bytes(n int) []byte {
	if r.pos+n > len(r.data) {
		panic(ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) uvarint() uint64 {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		panic(ErrTruncated)
	}
	r.pos += n
	return v
}

func (r *reader) str() string {
	n := int(r.uvarint())
	return string(r.bytes(n))
}

// Undump parses a dump produced by Dump/DumpStripped, interning its
// string constants through interner.
func Undump(data []byte, interner *value.Interner) (p *proto.Proto, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = ErrTruncated
		}
	}()

	r := &reader{data: data}
	if !bytes.Equal(r.bytes(4), []byte(signature)) {
		return nil, ErrBadSignature
	}
	major, minor := r.byte(), r.byte()
	if major != formatVersionMajor || minor > formatVersionMinor {
		return nil, ErrBadVersion
	}
	_ = r.byte() // format tag, reserved
	if r.byte() != nativeIntSize || r.byte() != nativeFloatSize {
		return nil, ErrBadVersion
	}
	if r.byte()&flagBits == 0 {
		return nil, ErrBadVersion
	}
	strip := r.byte() != 0

	p = readProto(r, interner, strip)
	return p, nil
}

func readProto(r *reader, interner *value.Interner, strip bool) *proto.Proto {
	p := &proto.Proto{}
	p.Source = r.str()
	p.LineDefined = int(r.uvarint())
	p.NumParams = int(r.uvarint())
	p.IsVararg = r.byte() != 0
	p.MaxStack = int(r.uvarint())

	codeLen := int(r.uvarint())
	p.Code = make([]uint32, codeLen)
	for i := range p.Code {
		p.Code[i] = binary.LittleEndian.Uint32(r.bytes(4))
	}

	constLen := int(r.uvarint())
	p.Constants = make([]value.Value, constLen)
	for i := range p.Constants {
		p.Constants[i] = readConstant(r, interner)
	}

	upvalLen := int(r.uvarint())
	p.UpvalInStack = make([]bool, upvalLen)
	p.UpvalIndex = make([]int, upvalLen)
	p.UpvalNames = make([]string, upvalLen)
	for i := 0; i < upvalLen; i++ {
		p.UpvalInStack[i] = r.byte() != 0
		p.UpvalIndex[i] = int(r.uvarint())
		if !strip {
			p.UpvalNames[i] = r.str()
		}
	}

	lineLen := int(r.uvarint())
	p.LineInfo = make([]int, lineLen)
	for i := range p.LineInfo {
		p.LineInfo[i] = int(r.uvarint())
	}

	childLen := int(r.uvarint())
	p.Protos = make([]*proto.Proto, childLen)
	for i := range p.Protos {
		p.Protos[i] = readProto(r, interner, strip)
	}
	return p
}

func readConstant(r *reader, interner *value.Interner) value.Value {
	switch r.byte() {
	case constKindNil:
		return value.Nil
	case constKindFalse:
		return value.Bool(false)
	case constKindTrue:
		return value.Bool(true)
	case constKindInt:
		return value.Int(int64(binary.LittleEndian.Uint64(r.bytes(8))))
	case constKindFloat:
		return value.Float(math.Float64frombits(binary.LittleEndian.Uint64(r.bytes(8))))
	case constKindString:
		return value.NewString(interner, []byte(r.str()))
	default:
		panic(ErrUnknownKind)
	}
}
