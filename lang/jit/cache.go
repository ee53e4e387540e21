// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package jit

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/vm"
)

// ErrNotCompiled is returned by Invoke when p has no cached native entry
// point, so a caller can fall back to interpreting without treating a
// cache miss as an error worth logging.
var ErrNotCompiled = errors.New("jit: prototype has no compiled entry point")

// readSavedPC reads the int32 CallInfo stores at savedPCOffset, the
// same slot amd64Emitter/arm64Emitter's EmitBarrier and RETURN0/RETURN1
// write through R12/X19 from native code.
func readSavedPC(ci uintptr) int32 {
	return *(*int32)(unsafe.Pointer(ci + savedPCOffset))
}

// compiled is the native artifact for one prototype: the executable page
// plus the byte offset of the entry point (always 0 in this revision,
// kept as a field since a future multi-entry design — e.g. one entry per
// loop header — would need it).
type compiled struct {
	page  []byte
	entry uintptr
}

// Cache owns the native-code side table for a set of prototypes. Proto
// itself carries no JIT-related field: keeping the mapping here rather
// than on proto.Proto means lang/proto (C3) stays free of any C6
// dependency, at the cost of Cache needing its own liveness tracking
// (Release, called when a prototype is collected) instead of piggy-backing
// on the GC's own finalizer slot.
type Cache struct {
	mu      sync.Mutex
	byProto map[*proto.Proto]*compiled
	emitter Emitter
}

func NewCache() *Cache {
	return &Cache{
		byProto: make(map[*proto.Proto]*compiled),
		emitter: newArchEmitter(),
	}
}

// Compile attempts to emit native code for p. On success it caches the
// result and returns true; on any failure (unsupported backend, no
// executable memory available) it leaves p to run interpreted and returns
// false — spec.md §4.6: "there is no fatal condition."
func (c *Cache) Compile(p *proto.Proto) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byProto[p]; ok {
		return true
	}

	w := NewCodeWriter()
	c.emitter.EmitPrologue(w)
	for pc, instr := range p.Code {
		if !c.emitter.EmitInstruction(w, vm.Instruction(instr), pc) {
			c.emitter.EmitBarrier(w, pc)
		}
	}
	c.emitter.EmitEpilogue(w)

	page, err := allocExecPage(w.Code())
	if err != nil {
		return false
	}
	c.byProto[p] = &compiled{page: page, entry: firstByteAddr(page)}
	return true
}

// Lookup reports whether p has a cached native entry point, and its
// address, for the dispatcher to branch to on function entry.
func (c *Cache) Lookup(p *proto.Proto) (uintptr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byProto[p]
	if !ok {
		return 0, false
	}
	return e.entry, true
}

// Invoke transfers control to p's compiled entry point, if any. thread
// and ci are the raw addresses of the already-bound Thread and CallInfo
// callNative's assembly stub passes through to the native code under the
// host's C calling convention (see trampoline.go). completed reports
// whether the call ran to completion rather than hitting a barrier;
// callers read it off the saved-PC slot this call itself wrote, not off
// callNative's bare return value, since a RETURN1 result and a barrier's
// "zero" both arrive in the same register.
//
// Invoke is deliberately not called anywhere in package vm's dispatch
// loop yet: thread and ci here must be plain addresses with no live
// lang/value.Value embedded in the slice the native code can reach,
// because a Value carries a Go interface (a fat pointer plus a type
// descriptor) that only the Go runtime's precise GC can walk safely --
// handing raw machine code a pointer into a real interpreter register
// window risks the collector misreading or relocating memory mid-call.
// Exercise this entry point only against a CallInfo/thread pair known to
// hold no GC-managed Value, e.g. the synthetic frames
// trampoline_amd64_test.go builds.
func (c *Cache) Invoke(p *proto.Proto, thread, ci uintptr) (completed bool, savedPC int32, err error) {
	entry, ok := c.Lookup(p)
	if !ok {
		return false, 0, ErrNotCompiled
	}
	callNative(entry, thread, ci)
	savedPC = readSavedPC(ci)
	return savedPC == completedSentinel, savedPC, nil
}

// Release frees p's native page, called once the owning prototype is
// collected (spec.md §5: "Executable JIT pages are owned by the
// prototype and freed in its finaliser").
func (c *Cache) Release(p *proto.Proto) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byProto[p]
	if !ok {
		return
	}
	freeExecPage(e.page)
	delete(c.byProto, p)
}

// Backend reports which architecture emitter this cache is using
// ("amd64", "arm64", or "stub"), for diagnostics.
func (c *Cache) Backend() string { return c.emitter.Name() }
