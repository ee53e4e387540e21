// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package gc

import "github.com/oxenfxc/lxclua/lang/value"

// sweep walks the intrusive allocation list once the mark phase has
// finished (the gray worklist is empty): anything still colored with this
// cycle's "dead" white shade is unreachable. Finalizable objects are
// resurrected one extra cycle onto the finalizer queue instead of being
// freed outright; everything else is unlinked and, for strings, evicted
// from the intern table and destructed.
func (c *Collector) sweep() {
	deadWhite := c.currentWhite
	newWhite := otherWhite(c.currentWhite)

	var survivors value.Object
	var tail value.Object
	freed := 0
	live := 0

	cur := c.allocHead
	for cur != nil {
		next := cur.Header().Next()
		h := cur.Header()

		if h.Color == deadWhite {
			if h.Finalizable && !h.Finalized() {
				h.MarkFinalized()
				h.Color = newWhite
				c.finalizerQueue = append(c.finalizerQueue, cur)
				appendSurvivor(&survivors, &tail, cur)
				live++
			} else {
				c.free(cur)
				freed++
			}
		} else {
			h.Color = newWhite
			appendSurvivor(&survivors, &tail, cur)
			live++
		}
		cur = next
	}

	c.allocHead = survivors
	c.allocCount = live
	c.currentWhite = newWhite
	c.phase = PhasePause

	c.Stats.Cycles++
	c.Stats.ObjectsFreed += freed
	c.Stats.ObjectsLive = live
}

func appendSurvivor(head, tail *value.Object, o value.Object) {
	o.Header().SetNext(nil)
	if *head == nil {
		*head = o
	} else {
		(*tail).Header().SetNext(o)
	}
	*tail = o
}

func otherWhite(c value.Color) value.Color {
	if c == value.White0 {
		return value.White1
	}
	return value.White0
}

// free releases a dead object's non-Go-GC-managed resources: string
// interning entries and external-string destructors. Everything else is
// simply unlinked and left for Go's own allocator to reclaim.
func (c *Collector) free(o value.Object) {
	if s, ok := o.(*value.String); ok {
		if s.Form() == value.FormShort && c.Strings != nil {
			c.Strings.Remove(s)
		}
		s.RunDestructor()
	}
}

// PendingFinalizers returns and clears the objects resurrected this cycle
// whose __gc metamethod (or Go finalizer hook) has not yet run. The caller
// (package vm) is responsible for invoking the finalizer; once it has, the
// object is a normal part of the heap again and will be freed for real on
// its next unreachable sweep.
func (c *Collector) PendingFinalizers() []value.Object {
	q := c.finalizerQueue
	c.finalizerQueue = nil
	return q
}

// Collect runs one full, non-incremental mark-sweep cycle to completion:
// the stop-the-world form of collectgarbage() (spec.md §4.2).
func (c *Collector) Collect() {
	c.startCycle()
	for c.propagateOne() {
	}
	c.clearWeak()
	c.sweep()
}

// Step performs a bounded amount of incremental work and reports whether
// the current cycle is still running (true) or has reached PhasePause
// (false), for callers that want to amortize collection across many small
// steps (spec.md §4.2: "step(n) (incremental progress)").
func (c *Collector) Step(n int) bool {
	if c.phase == PhasePause {
		c.startCycle()
	}
	for i := 0; i < n && len(c.gray) > 0; i++ {
		c.propagateOne()
	}
	if len(c.gray) == 0 {
		c.clearWeak()
		c.sweep()
		return false
	}
	return true
}
