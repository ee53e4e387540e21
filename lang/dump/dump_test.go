// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package dump

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
)

func sampleProto() *proto.Proto {
	return &proto.Proto{
		Source:      "sample.lx",
		LineDefined: 3,
		Code: []uint32{
			uint32(vm.EncodeABC(vm.OpLoadConst, 0, 0, 0)),
			uint32(vm.EncodeABC(vm.OpReturn1, 0, 0, 0)),
		},
		Constants:    []value.Value{value.Int(42), value.Float(1.5)},
		NumParams:    1,
		IsVararg:     false,
		MaxStack:     2,
		UpvalNames:   []string{"up0"},
		UpvalInStack: []bool{true},
		UpvalIndex:   []int{0},
		LineInfo:     []int{3, 4},
	}
}

func TestDumpUndumpRoundTrip(t *testing.T) {
	p := sampleProto()
	blob := Dump(p)
	interner := value.NewInterner()

	got, err := Undump(blob, interner)
	require.NoError(t, err)
	require.Equal(t, p.Source, got.Source)
	require.Equal(t, p.LineDefined, got.LineDefined)
	require.Equal(t, p.Code, got.Code)
	require.Len(t, got.Constants, len(p.Constants))
	require.Equal(t, int64(42), got.Constants[0].AsInt())
	require.Equal(t, 1.5, got.Constants[1].AsFloat())
	require.Equal(t, p.UpvalNames, got.UpvalNames)
	require.Equal(t, p.LineInfo, got.LineInfo)
}

func TestDumpStrippedOmitsDebugInfo(t *testing.T) {
	p := sampleProto()
	blob := DumpStripped(p)
	interner := value.NewInterner()

	got, err := Undump(blob, interner)
	if err != nil {
		t.Fatalf("Undump: %v", err)
	}
	if len(got.LineInfo) != 0 {
		t.Fatalf("stripped dump kept line info: %v", got.LineInfo)
	}
	if got.UpvalNames[0] != "" {
		t.Fatalf("stripped dump kept an upvalue name: %q", got.UpvalNames[0])
	}
}

func TestUndumpRejectsBadSignature(t *testing.T) {
	_, err := Undump([]byte("not a dump at all"), value.NewInterner())
	if err != ErrBadSignature {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestUndumpRejectsTruncated(t *testing.T) {
	p := sampleProto()
	blob := Dump(p)
	_, err := Undump(blob[:len(blob)-20], value.NewInterner())
	if err == nil {
		t.Fatalf("expected an error on truncated input")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	p := sampleProto()
	blob := Dump(p)

	enveloped, err := EncodeEnvelope(blob, 1700000000)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	if enveloped[:len(nirithyMarker)] != nirithyMarker {
		t.Fatalf("missing Nirithy marker")
	}

	payload, ok, err := DecodeEnvelope(enveloped)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if !ok {
		t.Fatalf("DecodeEnvelope did not recognize its own marker")
	}
	if string(payload) != string(blob) {
		t.Fatalf("round-tripped payload mismatch")
	}
}

func TestDecodeEnvelopeIgnoresPlainDumps(t *testing.T) {
	p := sampleProto()
	blob := Dump(p)
	_, ok, err := DecodeEnvelope(string(blob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("DecodeEnvelope claimed a plain dump was enveloped")
	}
}

func TestObfuscationPassesPreserveCodeLength(t *testing.T) {
	p := sampleProto()
	before := len(p.Code)
	Apply(p, ShuffleBasicBlocks)
	if len(p.Code) != before {
		t.Fatalf("ShuffleBasicBlocks changed instruction count: got %d want %d", len(p.Code), before)
	}
}

func TestEncodeDecodeConstantRoundTrip(t *testing.T) {
	p := sampleProto()
	original := p.Constants[0]
	Apply(p, EncodeConstants)
	if p.Constants[0].AsInt() == original.AsInt() {
		t.Fatalf("EncodeConstants left the integer constant unchanged")
	}
	decoded := DecodeConstant(0, p.Constants[0])
	if decoded.AsInt() != original.AsInt() {
		t.Fatalf("DecodeConstant did not reverse EncodeConstants: got %d want %d", decoded.AsInt(), original.AsInt())
	}
}
