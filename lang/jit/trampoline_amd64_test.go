// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build amd64

package jit

import (
	"testing"
	"unsafe"

	"github.com/oxenfxc/lxclua/lang/vm"
)

// fakeCallInfo stands in for the prefix of a real CallInfo struct large
// enough to hold the saved-PC slot at savedPCOffset; Invoke's contract
// (see cache.go) only promises safety for addresses like this one, never
// a live interpreter frame.
func fakeCallInfo() uintptr {
	buf := make([]byte, 32)
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestInvokeReturn0ReportsCompletion(t *testing.T) {
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpReturn0, 0, 0, 0))
	if !c.Compile(p) {
		t.Fatalf("Compile failed unexpectedly on backend %q", c.Backend())
	}
	ci := fakeCallInfo()
	completed, savedPC, err := c.Invoke(p, 0, ci)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if !completed {
		t.Fatalf("RETURN0 should report completion, savedPC=%d", savedPC)
	}
	if savedPC != completedSentinel {
		t.Fatalf("savedPC = %d, want completedSentinel (%d)", savedPC, completedSentinel)
	}
}

func TestInvokeBarrierReportsResumePoint(t *testing.T) {
	c := NewCache()
	p := protoWith(
		vm.EncodeABC(vm.OpNop, 0, 0, 0), // pc 0: no inline emission, barriers
		vm.EncodeABC(vm.OpReturn0, 0, 0, 0),
	)
	if !c.Compile(p) {
		t.Fatalf("Compile failed unexpectedly on backend %q", c.Backend())
	}
	ci := fakeCallInfo()
	completed, savedPC, err := c.Invoke(p, 0, ci)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if completed {
		t.Fatalf("barriered entry should not report completion")
	}
	if savedPC != 0 {
		t.Fatalf("savedPC = %d, want 0 (the barriered instruction's own pc)", savedPC)
	}
}

func TestInvokeMissingEntryReturnsErrNotCompiled(t *testing.T) {
	c := NewCache()
	p := protoWith(vm.EncodeABC(vm.OpReturn0, 0, 0, 0))
	if _, _, err := c.Invoke(p, 0, fakeCallInfo()); err != ErrNotCompiled {
		t.Fatalf("err = %v, want ErrNotCompiled", err)
	}
}
