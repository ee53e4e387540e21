// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

// Color is the tri-color mark used by the incremental/generational
// collector in package gc. It lives on the object header (not in package gc
// itself) so every heap kind — string, table, closure, upvalue, userdata,
// and thread — shares one allocation-list node shape, the way the Go
// runtime's own mgcwork.go keeps a single work-buffer shape for every
// pointer kind it traces.
type Color uint8

const (
	// White objects are candidates for sweeping; two white shades
	// alternate across GC cycles so that objects allocated mid-cycle are
	// not mistaken for garbage from the previous one.
	White0 Color = iota
	White1
	Gray
	Black
)

// Age buckets support the generational GC mode (spec.md §4.2): objects
// surviving enough minor collections are promoted out of the young set.
type Age uint8

const (
	AgeYoung Age = iota
	AgeOld
)

// Header is embedded by every GC-managed object. It carries the fields
// spec.md §3's invariants talk about directly: "Every GC object carries a
// single color in the current epoch" and the allocation-list linkage the
// sweeper walks.
type Header struct {
	Color Color
	Age   Age
	Kind  Kind
	next  Object // next object in the allocator's intrusive list

	// Finalizable marks objects with a __gc metamethod (tables/userdata);
	// the GC queues these instead of freeing them outright on first
	// unreachability, per spec.md §4.2.
	Finalizable bool
	// finalized is set once a finalizer has run so a resurrected-then-
	// collected-again object is freed directly the second time.
	finalized bool
}

// Header satisfies Object by returning itself; every concrete GC type
// embeds Header and so gets Header() for free via Go's embedding promotion
// — only the ones that need to override it (none do today) would add their
// own method.
func (h *Header) Header() *Header { return h }

// Next returns the next object in the allocator's intrusive linked list.
func (h *Header) Next() Object { return h.next }

// SetNext links h to the next object in the allocator's list. Only package
// gc calls this, during allocation and sweeping.
func (h *Header) SetNext(o Object) { h.next = o }

// Finalized reports whether this object's finalizer has already run once,
// so the sweeper can free a resurrected-then-collected-again object
// directly instead of queuing it a second time.
func (h *Header) Finalized() bool { return h.finalized }

// MarkFinalized records that the finalizer has run. Only package gc calls
// this, from the sweep phase.
func (h *Header) MarkFinalized() { h.finalized = true }

// IsWhite reports whether the header is colored with either white shade:
// both shades are "not yet marked in this cycle", and only the GC's own
// currentWhite bookkeeping distinguishes "allocated this cycle" from
// "garbage from last cycle" when deciding whether a fresh allocation needs
// to dodge an in-progress sweep.
func (h *Header) IsWhite() bool {
	return h.Color == White0 || h.Color == White1
}
