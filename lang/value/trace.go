// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

// Traceable is implemented by every GC object that holds references to
// other GC objects. Package gc's mark phase type-asserts each gray object
// to Traceable and calls Trace to discover its children, the same
// "scanning... produces pointers to grey objects" step the Go runtime's own
// mgcwork.go documents, but expressed as an interface instead of a
// pointer-scanning bitmap since this heap is Go-typed, not Go-GC-opaque.
type Traceable interface {
	Trace(mark func(Object))
}

var _ Traceable = (*Table)(nil)
var _ Traceable = (*Userdata)(nil)

// Trace visits the table's metatable and every GC-object key/value in both
// the array and hash parts, skipping whichever side is configured weak:
// weak references are resolved separately by package gc's weak-table pass,
// not kept alive by ordinary marking (spec.md §3: weak keys/values).
func (t *Table) Trace(mark func(Object)) {
	if t.metatable != nil {
		mark(t.metatable)
	}
	if !t.weakValues {
		for _, v := range t.array {
			if v.IsGCObject() {
				mark(v.Object())
			}
		}
	}
	for k, v := range t.hash {
		if !t.weakKeys && k.IsGCObject() {
			mark(k.Object())
		}
		if !t.weakValues && v.IsGCObject() {
			mark(v.Object())
		}
	}
}

// Trace visits the userdata's metatable and user-value slots.
func (u *Userdata) Trace(mark func(Object)) {
	if u.metatable != nil {
		mark(u.metatable)
	}
	for _, v := range u.uservals {
		if v.IsGCObject() {
			mark(v.Object())
		}
	}
}
