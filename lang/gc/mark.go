// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package gc

import "github.com/oxenfxc/lxclua/lang/value"

// startCycle begins a new mark phase: every root is shaded gray and pushed
// onto the worklist.
func (c *Collector) startCycle() {
	c.phase = PhasePropagate
	c.gray = c.gray[:0]
	c.bytesAllocated = 0
	if c.roots != nil {
		for _, v := range c.roots.GCRoots() {
			if v.IsGCObject() {
				c.shade(v.Object())
			}
		}
	}
}

// shade moves a white object to gray and enqueues it for scanning; it is a
// no-op for objects already gray or black, matching the tri-color
// invariant that a black object never points at a white one once a cycle
// finishes.
func (c *Collector) shade(o value.Object) {
	h := o.Header()
	if h.Color == value.Gray || h.Color == value.Black {
		return
	}
	h.Color = value.Gray
	c.gray = append(c.gray, o)
}

// propagateOne pops one gray object, blackens it, and shades every object it
// references, the "scanning... produces new pointers to grey objects" step.
func (c *Collector) propagateOne() bool {
	if len(c.gray) == 0 {
		return false
	}
	n := len(c.gray)
	o := c.gray[n-1]
	c.gray = c.gray[:n-1]
	o.Header().Color = value.Black

	if t, ok := o.(value.Traceable); ok {
		t.Trace(c.shade)
	}
	return true
}

// WriteBarrier must be called whenever a black object b is made to point at
// value v: it re-shades v so the invariant "no black object points at a
// white one" holds even though b has already been scanned this cycle
// (spec.md §5's incremental-collector write-barrier requirement).
func (c *Collector) WriteBarrier(holder value.Object, v value.Value) {
	if c.phase != PhasePropagate {
		return
	}
	if !v.IsGCObject() {
		return
	}
	if holder.Header().Color != value.Black {
		return
	}
	child := v.Object()
	if child.Header().IsWhite() {
		c.shade(child)
	}
}
