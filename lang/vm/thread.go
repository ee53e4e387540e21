// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// RunState is a coroutine's run-state, spec.md §4.4: "one of {suspended,
// running, normal (resumed another), dead}".
type RunState uint8

const (
	StSuspended RunState = iota
	StRunning
	StNormal
	StDead
)

func (s RunState) String() string {
	switch s {
	case StSuspended:
		return "suspended"
	case StRunning:
		return "running"
	case StNormal:
		return "normal"
	case StDead:
		return "dead"
	default:
		return "unknown"
	}
}

// extraStack is the fixed reserve above top that permits metamethod calls
// without a bounds re-check on every push (spec.md §4.4: "EXTRA_STACK").
const extraStack = 8

// Thread is a coroutine: its own value stack, call-frame chain, and open
// upvalue list. The main thread is a Thread like any other, created by
// New.
type Thread struct {
	value.Header

	stack []value.Value
	top   int

	ci         *proto.CallInfo
	ciDepth    int
	openUpvals proto.OpenUpvalues

	status  RunState
	resumer *Thread // who resumed this thread, set while status == StNormal on the resumer

	// yieldable is false inside a C/Go call that must not be crossed by a
	// yield (spec.md §4.4: "no un-yieldable C frame is on the chain").
	yieldable bool
}

var _ value.Object = (*Thread)(nil)
var _ value.Traceable = (*Thread)(nil)

// NewThread allocates a fresh, suspended thread with an initial stack of
// stackHint slots (grown on demand).
func NewThread(stackHint int) *Thread {
	if stackHint < 16 {
		stackHint = 16
	}
	return &Thread{
		stack:     make([]value.Value, stackHint+extraStack),
		status:    StSuspended,
		yieldable: true,
	}
}

// Status reports the coroutine's current run-state.
func (t *Thread) Status() RunState { return t.status }

// Top returns the current stack top (index of the first free slot).
func (t *Thread) Top() int { return t.top }

// Get and Set perform direct, unchecked stack slot access; callers (the VM
// dispatch loop) are responsible for keeping indices within [0, top).
func (t *Thread) Get(i int) value.Value  { return t.stack[i] }
func (t *Thread) Set(i int, v value.Value) { t.stack[i] = v }

// Push appends v at top, growing the stack (and relocating every open
// CallInfo/upvalue pointer) if needed.
func (t *Thread) Push(v value.Value) {
	t.ensure(t.top + 1)
	t.stack[t.top] = v
	t.top++
}

// Pop removes and returns the top value.
func (t *Thread) Pop() value.Value {
	t.top--
	v := t.stack[t.top]
	t.stack[t.top] = value.Nil
	return v
}

// SetTop truncates or extends (with nils) the stack to exactly n slots.
func (t *Thread) SetTop(n int) {
	t.ensure(n)
	for i := t.top; i < n; i++ {
		t.stack[i] = value.Nil
	}
	for i := n; i < t.top; i++ {
		t.stack[i] = value.Nil
	}
	t.top = n
}

// ensure grows the backing array so slot n-1 is addressable, relocating
// every open upvalue's stack pointer to the new backing array (spec.md
// §4.4: "Growth reallocates and relocates every CallInfo window, every open
// upvalue, and the TBC list").
func (t *Thread) ensure(n int) {
	if n+extraStack <= len(t.stack) {
		return
	}
	newCap := len(t.stack) * 2
	if newCap < n+extraStack {
		newCap = n + extraStack
	}
	grown := make([]value.Value, newCap)
	copy(grown, t.stack)
	t.stack = grown
	t.relocateUpvalues()
}

// relocateUpvalues is a no-op by construction: every open upvalue aliases
// &t.stack (a pointer to the Thread's slice header), not the backing array
// directly, so growing the backing array and copying into it leaves every
// open upvalue's alias valid without a second fix-up pass. CallInfo windows
// are base/top integer offsets into t.stack, not raw pointers, so they need
// no relocation either.
func (t *Thread) relocateUpvalues() {}

// FindOrCreateUpvalue returns (creating if needed) the open upvalue
// aliasing stack slot index.
func (t *Thread) FindOrCreateUpvalue(index int) *proto.Upvalue {
	return t.openUvals().FindOrCreate(&t.stack, index)
}

func (t *Thread) openUvals() *proto.OpenUpvalues { return &t.openUpvals }

// CloseUpvaluesFrom closes every open upvalue at or above level, per
// luaF_closeupval (spec.md §4.3).
func (t *Thread) CloseUpvaluesFrom(level int) {
	t.openUpvals.CloseFrom(level)
}

// PushCall links a new CallInfo for cl onto this thread's call chain,
// enforcing the too-many-nested-calls guard.
func (t *Thread) PushCall(cl *proto.Closure, base, numResults int) (*proto.CallInfo, error) {
	if t.ciDepth >= maxCallDepth {
		return nil, ErrTooManyCalls
	}
	ci := &proto.CallInfo{Prev: t.ci, Closure: cl, Base: base, NumResultsWanted: numResults}
	if t.ci != nil {
		t.ci.Next = ci
	}
	t.ci = ci
	t.ciDepth++
	return ci, nil
}

// PopCall unlinks the current CallInfo, returning to the caller's frame.
func (t *Thread) PopCall() {
	if t.ci == nil {
		return
	}
	t.ci = t.ci.Prev
	if t.ci != nil {
		t.ci.Next = nil
	}
	t.ciDepth--
}

const maxCallDepth = 200

// CurrentCall returns the thread's innermost active CallInfo, or nil if
// it isn't running anything, for package debugctl's traceback generation
// and line-hook support (spec.md §4.9: "Traceback generation walks the
// CallInfo chain of a given thread").
func (t *Thread) CurrentCall() *proto.CallInfo { return t.ci }

// Depth reports the number of CallInfo frames currently on the chain.
func (t *Thread) Depth() int { return t.ciDepth }

// Trace visits every live stack slot and every open upvalue, the thread's
// contribution to the garbage collector's root set (spec.md §4.2: "every
// live thread's stack and open upvalues").
func (t *Thread) Trace(mark func(value.Object)) {
	for i := 0; i < t.top; i++ {
		v := t.stack[i]
		if v.IsGCObject() {
			mark(v.Object())
		}
	}
	for uv := t.openUpvals.Head(); uv != nil; uv = uv.Next() {
		mark(uv)
	}
}
