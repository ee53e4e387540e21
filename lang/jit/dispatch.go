// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package jit

import (
	"unsafe"

	"github.com/oxenfxc/lxclua/lang/vm"
)

func firstByteAddr(page []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(page)))
}

// Attach wires this cache into v as its JIT backend, mirroring the
// function-field hook pattern package hotpatch uses for OnSleepingCall:
// package vm must never import package jit (jit already imports vm for
// Instruction/Opcode), so the wiring direction is inverted — the JIT
// package reaches into the VM at startup instead of the VM reaching out
// to a package it cannot see.
func Attach(v *vm.VM, c *Cache) {
	v.JITCompile = c.Compile
	v.JITLookup = c.Lookup
}
