// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package vm implements the stack/call dispatcher (C4) and the bytecode
// interpreter (C5): a register-based virtual machine operating over
// lang/value.Value and lang/proto.Closure, generalizing a flat
// uint64-register VM to a tagged
// value stack with full metamethod dispatch, coroutines, and the
// class/concept/namespace OOP opcode family spec.md §4.5 describes.
package vm

import (
	"github.com/oxenfxc/lxclua/lang/gc"
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// Well-known metamethod names, interned once and reused on every dispatch.
const (
	mmAdd      = "__add"
	mmSub      = "__sub"
	mmMul      = "__mul"
	mmDiv      = "__div"
	mmIDiv     = "__idiv"
	mmMod      = "__mod"
	mmPow      = "__pow"
	mmBAnd     = "__band"
	mmBOr      = "__bor"
	mmBXor     = "__bxor"
	mmShl      = "__shl"
	mmShr      = "__shr"
	mmUnm      = "__unm"
	mmBNot     = "__bnot"
	mmConcat   = "__concat"
	mmLen      = "__len"
	mmEq       = "__eq"
	mmLt       = "__lt"
	mmLe       = "__le"
	mmIndex    = "__index"
	mmNewIndex = "__newindex"
	mmCall     = "__call"
	mmContains = "__contains"
	mmClose    = "__close"
	mmInit     = "__init__"
	mmMethods  = "__methods"
	mmStatics  = "__statics"
	mmParent   = "__parent"
)

// VM is one top-level interpreter instance: the globals table, registry,
// string interner, garbage collector, and the set of threads it owns.
// (spec.md §4.2's root set: "registry, main thread, globals, every live
// thread's stack and open upvalues").
type VM struct {
	Globals  *value.Table
	Registry *value.Table
	Strings  *value.Interner
	GC       *gc.Collector

	main    *Thread
	threads []*Thread
	current *Thread

	// StringMeta, when set by package stdlib, supplies __index for string
	// values so `s:upper()`-style method calls resolve into the string
	// library without strings needing their own per-value metatable.
	StringMeta *value.Table

	// OnSleepingCall, when set by package hotpatch, intercepts calls
	// against a closure whose prototype is currently sleeping (spec.md §6:
	// "arriving calls are not executed; their arguments are copied into a
	// queued node and the call returns a suspended marker"). Left nil,
	// such a call fails with ErrSleepingFunction instead. This is a
	// function field rather than an interface so package vm never needs
	// to import package hotpatch, which itself imports vm for Closure
	// dispatch.
	OnSleepingCall func(cl *proto.Closure, args []value.Value) ([]value.Value, error)

	// JITCompile and JITLookup, when set by package jit, back the native
	// code fast path spec.md §4.6 describes: "On function entry the
	// dispatcher checks Proto.jit_code; if present, control transfers to
	// it." JITCompile requests compilation of a prototype (idempotent,
	// best-effort); JITLookup returns a cached entry point's address.
	// Left nil, every call runs interpreted — there is no fatal
	// condition either way. Function fields for the same reason as
	// OnSleepingCall: package jit imports vm, so vm cannot import jit.
	JITCompile func(p *proto.Proto) bool
	JITLookup  func(p *proto.Proto) (uintptr, bool)

	maxMetaDepth int // cycle breaker for __index/__newindex chains

	// gasLimit is the budget a host sets via WithGasLimit; 0 means
	// unlimited. gasUsed accumulates whatever callers report through
	// ConsumeGas. Metering stays opt-in: the interpreter's own opcode
	// dispatch never calls ConsumeGas itself (see DESIGN.md), since
	// charging a fixed cost per instruction belongs to the embedder's
	// gas schedule, not to this package.
	gasLimit uint64
	gasUsed  uint64
}

var _ gc.RootProvider = (*VM)(nil)

// New constructs a VM with a fresh globals table, registry, intern table,
// and collector, and one running main thread, applying each opt in order.
func New(opts ...Option) *VM {
	vm := &VM{
		Globals:      value.NewTable(0, 16),
		Registry:     value.NewTable(0, 4),
		Strings:      value.NewInterner(),
		maxMetaDepth: 100,
	}
	vm.GC = gc.New(vm.Strings, vm)
	vm.main = NewThread(64)
	vm.main.status = StRunning
	vm.threads = append(vm.threads, vm.main)
	vm.current = vm.main
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// MainThread returns the VM's initial, always-present thread.
func (vm *VM) MainThread() *Thread { return vm.main }

// Current returns the thread presently executing (the target of the
// innermost active resume).
func (vm *VM) Current() *Thread { return vm.current }

// GCRoots implements gc.RootProvider: the globals table, the registry, and
// every thread's live stack/open-upvalue contents (traced transitively
// through each Thread's own Trace method).
func (vm *VM) GCRoots() []value.Value {
	roots := make([]value.Value, 0, len(vm.threads)+2)
	roots = append(roots, value.FromObject(value.KTable, vm.Globals))
	roots = append(roots, value.FromObject(value.KTable, vm.Registry))
	for _, t := range vm.threads {
		roots = append(roots, value.FromObject(value.KThread, t))
	}
	return roots
}

// intern is a small convenience around Strings.intern via NewString, used
// throughout the interpreter to build metamethod-name keys.
func (vm *VM) intern(s string) value.Value {
	return value.NewString(vm.Strings, []byte(s))
}

// metatableOf returns the metatable governing v's metamethod dispatch, or
// nil: tables and full userdata carry their own; strings share the VM-wide
// StringMeta; every other kind has none.
func (vm *VM) metatableOf(v value.Value) *value.Table {
	switch v.Kind() {
	case value.KTable:
		return v.Object().(*value.Table).Metatable()
	case value.KUserdataFull:
		return v.Object().(*value.Userdata).Metatable()
	case value.KString:
		return vm.StringMeta
	default:
		return nil
	}
}

func (vm *VM) metamethod(v value.Value, name string) (value.Value, bool) {
	mt := vm.metatableOf(v)
	if mt == nil {
		return value.Nil, false
	}
	return mt.HasMetamethod(vm.Strings, name)
}

// reg reads/writes a base-relative register on the current CallInfo's
// frame, i.e. thread.stack[ci.Base+n].
func (vm *VM) reg(ci *proto.CallInfo, n int) value.Value {
	return vm.current.Get(ci.Base + n)
}

func (vm *VM) setReg(ci *proto.CallInfo, n int, v value.Value) {
	vm.current.Set(ci.Base+n, v)
}

func (vm *VM) constant(cl *proto.Closure, idx int) value.Value {
	return cl.Proto.Constants[idx]
}

// barrierWrite runs the GC write barrier whenever holder (already on the
// heap) is made to reference v, and additionally remembers the old->young
// edge when the collector is in generational mode.
func (vm *VM) barrierWrite(holder value.Object, v value.Value) {
	vm.GC.WriteBarrier(holder, v)
	if vm.GC.Mode() == gc.ModeGenerational {
		vm.GC.RememberOld(holder)
	}
}
