// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package proto implements function prototypes, closures, upvalues, and the
// call-frame chain: the compiled, reusable half of a function (Proto) versus
// the runtime, per-closure half (Closure binds a Proto to an upvalue set).
//
// This generalizes a single flat frame{returnPC, returnReg, baseReg} struct
// into a full call-frame chain carrying a base stack register, varargs, and
// a to-be-closed list per spec.md §3-§4.3.
package proto

import "github.com/oxenfxc/lxclua/lang/value"

// Proto is a compiled function prototype: bytecode, constant pool, and the
// static metadata needed to build a Closure over it. Package hotpatch
// never mutates a Proto; it points a Closure at a different Proto instead.
type Proto struct {
	Source   string // short source name, for tracebacks ("shortsrc:line")
	LineDefined int

	Code      []uint32     // fixed-width encoded instructions
	Constants []value.Value
	Protos    []*Proto // nested function prototypes, indexed by CLOSURE's Bx

	NumParams   int
	IsVararg    bool
	MaxStack    int // number of registers this function needs

	UpvalNames []string // debug names, parallel to Closure.Upvals
	UpvalInStack []bool // true if upvalue index N captures the enclosing frame's stack, false if its enclosing closure's upvalue list
	UpvalIndex   []int  // stack slot or parent-upvalue index, per UpvalInStack

	// LineInfo maps each instruction index to a source line, for
	// tracebacks and breakpoint lookups (spec.md §7).
	LineInfo []int

	// sleeping marks a prototype as parked by hotpatch's sleep/wake queue
	// (spec.md §6): vm.Call does not run a sleeping closure; it hands the
	// call to the VM's OnSleepingCall hook, or fails with
	// ErrSleepingFunction when no hook is set.
	sleeping bool
}

// SetSleeping and Sleeping implement the sleep/wake half of the hotpatch
// surface; package hotpatch is the only intended caller of SetSleeping.
func (p *Proto) SetSleeping(v bool) { p.sleeping = v }
func (p *Proto) Sleeping() bool     { return p.sleeping }

// Replace overwrites p's code, constants, and stack shape with src's, one
// field at a time, so existing closures over p run src's code without
// being re-linked. Hotreplace does not use it: it reassigns the closure's
// Proto pointer.
func (p *Proto) Replace(src *Proto) {
	p.Code = src.Code
	p.Constants = src.Constants
	p.Protos = src.Protos
	p.NumParams = src.NumParams
	p.IsVararg = src.IsVararg
	p.MaxStack = src.MaxStack
	p.UpvalNames = src.UpvalNames
	p.UpvalInStack = src.UpvalInStack
	p.UpvalIndex = src.UpvalIndex
	p.LineInfo = src.LineInfo
}

// LineAt returns the source line for instruction index pc, or 0 if unknown.
func (p *Proto) LineAt(pc int) int {
	if pc < 0 || pc >= len(p.LineInfo) {
		return 0
	}
	return p.LineInfo[pc]
}
