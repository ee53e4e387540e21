// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package proto

import "github.com/oxenfxc/lxclua/lang/value"

// Upvalue is a shared variable cell. While its owning stack slot is still
// live, the upvalue is "open" and aliases that slot directly; once the slot
// goes out of scope, close moves ("closes") the value into the
// upvalue's own storage so the cell keeps working after the stack frame is
// gone (spec.md §3: "open (pointing into a live stack slot) ... closed
// (owning its value once the frame is gone)").
type Upvalue struct {
	value.Header

	stack *[]value.Value // the owning frame's register stack, while open
	index int            // slot within *stack, while open

	closed value.Value // owned value, once closed
	isOpen bool

	// next links open upvalues for one stack in descending stack-index
	// order, the shape OpenUpvalues.FindOrCreate/CloseFrom walk.
	next *Upvalue
}

var _ value.Object = (*Upvalue)(nil)

// Get reads the upvalue's current value, whether open or closed.
func (u *Upvalue) Get() value.Value {
	if u.isOpen {
		return (*u.stack)[u.index]
	}
	return u.closed
}

// Set writes the upvalue's current value, whether open or closed.
func (u *Upvalue) Set(v value.Value) {
	if u.isOpen {
		(*u.stack)[u.index] = v
		return
	}
	u.closed = v
}

// close moves the aliased stack value into the upvalue's own storage and
// detaches it from the owning stack, per luaF_closeupval.
func (u *Upvalue) close() {
	if !u.isOpen {
		return
	}
	u.closed = (*u.stack)[u.index]
	u.isOpen = false
	u.stack = nil
	u.next = nil
}

// Next returns the next open upvalue in its owning thread's descending-
// stack-index list, or nil past the end / once closed.
func (u *Upvalue) Next() *Upvalue { return u.next }

// OpenUpvalues is the per-thread ordered list of currently-open upvalues,
// kept sorted by descending stack index so FindOrCreate and CloseFrom can
// walk it in one linear pass, mirroring luaF_findupval/luaF_close.
type OpenUpvalues struct {
	head *Upvalue
}

// Head returns the first (highest stack index) open upvalue, for callers
// that need to walk the whole list (the GC root-marking pass).
func (l *OpenUpvalues) Head() *Upvalue { return l.head }

// FindOrCreate returns the open upvalue already aliasing stack[index],
// creating and inserting a new one in sorted position if none exists yet
// (spec.md §4.3: "closures sharing a variable ... share one upvalue object").
func (l *OpenUpvalues) FindOrCreate(stack *[]value.Value, index int) *Upvalue {
	var prev *Upvalue
	cur := l.head
	for cur != nil && cur.index > index {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.isOpen && cur.index == index {
		return cur
	}
	uv := &Upvalue{stack: stack, index: index, isOpen: true, next: cur}
	if prev == nil {
		l.head = uv
	} else {
		prev.next = uv
	}
	return uv
}

// CloseFrom closes every open upvalue whose stack index is >= level,
// detaching them from the list, as the VM does when a block or function
// returns (luaF_close) or when the TBC/CLOSE opcode runs (spec.md §4.3).
func (l *OpenUpvalues) CloseFrom(level int) {
	var prev *Upvalue
	cur := l.head
	for cur != nil && cur.index >= level {
		next := cur.next
		cur.close()
		cur = next
	}
	if prev == nil {
		l.head = cur
	} else {
		prev.next = cur
	}
}
