// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package jit

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/vm"
)

func protoWith(instrs ...vm.Instruction) *proto.Proto {
	code := make([]uint32, len(instrs))
	for i, ins := range instrs {
		code[i] = uint32(ins)
	}
	return &proto.Proto{Source: "test", Code: code, MaxStack: 4}
}

func TestCompileCachesSuccessfully(t *testing.T) {
	c := NewCache()
	p := protoWith(
		vm.EncodeABC(vm.OpMove, 0, 1, 0),
		vm.EncodeABC(vm.OpReturn0, 0, 0, 0),
	)
	if !c.Compile(p) {
		t.Fatalf("Compile failed unexpectedly on backend %q", c.Backend())
	}
	if _, ok := c.Lookup(p); !ok {
		t.Fatalf("Lookup missed a just-compiled prototype")
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpReturn0, 0, 0, 0))
	c.Compile(p)
	entry1, _ := c.Lookup(p)
	c.Compile(p)
	entry2, _ := c.Lookup(p)
	if entry1 != entry2 {
		t.Fatalf("recompiling an already-cached prototype changed its entry point")
	}
}

func TestUnsupportedInstructionBarriers(t *testing.T) {
	// OpNop has no inline emission anywhere; Compile must still succeed
	// by falling back to a barrier rather than failing outright.
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpNop, 0, 0, 0))
	if !c.Compile(p) {
		t.Fatalf("a barriered-only prototype should still compile")
	}
}

func TestReleaseDropsCacheEntry(t *testing.T) {
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpReturn0, 0, 0, 0))
	c.Compile(p)
	c.Release(p)
	if _, ok := c.Lookup(p); ok {
		t.Fatalf("Lookup found an entry after Release")
	}
}

func TestLookupMissOnUncompiled(t *testing.T) {
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpReturn0, 0, 0, 0))
	if _, ok := c.Lookup(p); ok {
		t.Fatalf("Lookup hit before Compile was ever called")
	}
}
