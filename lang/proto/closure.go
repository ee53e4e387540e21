// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package proto

import "github.com/oxenfxc/lxclua/lang/value"

// GoFunc is the signature of a Go-native (non-Lua) closure body, the
// equivalent of a C function pointer bound into a Closure.
type GoFunc func(args []value.Value) ([]value.Value, error)

// Closure binds either a compiled Proto or a GoFunc to a vector of upvalue
// cells. Exactly one of Proto/Go is non-nil; callers branch on which before
// dispatching.
//
// spec.md §3 calls for "distinct variant tags ... for closures that are
// 'hotfixed' and for closures that are 'sleeping'": those tags live on the
// value.Value wrapping this Closure (value.KFunctionHotfixed /
// value.KFunctionSleeping), while hotfixedFrom below carries the
// bookkeeping the debug and hotpatch surfaces report back to callers.
type Closure struct {
	value.Header

	Proto  *Proto
	Go     GoFunc
	Upvals []*Upvalue

	// hotfixedFrom records the Proto this closure's code was swapped away
	// from, so tracebacks and the debug API can report "running patched
	// code originally compiled from X" (spec.md §6).
	hotfixedFrom *Proto
}

var _ value.Object = (*Closure)(nil)

// NewLuaClosure allocates a closure over a compiled prototype with nups
// (initially nil) upvalue slots, one per p.UpvalNames entry.
func NewLuaClosure(p *Proto) *Closure {
	return &Closure{Proto: p, Upvals: make([]*Upvalue, len(p.UpvalNames))}
}

// NewGoClosure wraps a native function as a callable value with its own
// upvalue slots (used to implement closures over Go-side state, the way a
// stdlib iterator factory captures its cursor).
func NewGoClosure(fn GoFunc, nups int) *Closure {
	return &Closure{Go: fn, Upvals: make([]*Upvalue, nups)}
}

// IsLua reports whether the closure runs compiled bytecode rather than a Go
// function.
func (c *Closure) IsLua() bool { return c.Proto != nil }

// MarkHotfixed records that from was the Proto this closure pointed at
// before hotpatch reassigned its Proto pointer.
func (c *Closure) MarkHotfixed(from *Proto) { c.hotfixedFrom = from }

// HotfixedFrom returns the original prototype this closure ran before a
// hotreplace, or nil if it has never been patched.
func (c *Closure) HotfixedFrom() *Proto { return c.hotfixedFrom }
