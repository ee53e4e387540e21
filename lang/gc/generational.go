// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package gc

import "github.com/oxenfxc/lxclua/lang/value"

// RememberOld records that an old-generation object now points at a
// young-generation one, so the next minor collection treats holder as an
// extra root even though it would otherwise be skipped as already-promoted
// (spec.md §4.2's generational mode needs an old->young remembered set, the
// same role WriteBarrier plays for the incremental collector's black->white
// invariant). Package vm's write-barrier hook calls this alongside
// WriteBarrier whenever the mode is ModeGenerational.
func (c *Collector) RememberOld(holder value.Object) {
	if holder.Header().Age != value.AgeOld {
		return
	}
	for _, o := range c.remembered {
		if o == holder {
			return
		}
	}
	c.remembered = append(c.remembered, holder)
}

// MinorCollect traces only from roots and the remembered set, then sweeps
// (frees or promotes) young-generation objects: old objects are left
// untouched entirely, bounding pause time to the size of the young
// generation rather than the whole heap.
func (c *Collector) MinorCollect() {
	deadWhite := c.currentWhite
	newWhite := otherWhite(c.currentWhite)

	c.gray = c.gray[:0]
	if c.roots != nil {
		for _, v := range c.roots.GCRoots() {
			if v.IsGCObject() {
				c.shade(v.Object())
			}
		}
	}
	for _, o := range c.remembered {
		c.shade(o)
	}
	for c.propagateOne() {
	}
	c.remembered = c.remembered[:0]

	var survivors value.Object
	var tail value.Object
	freed, live := 0, 0

	cur := c.allocHead
	for cur != nil {
		next := cur.Header().Next()
		h := cur.Header()

		switch {
		case h.Age == value.AgeOld:
			// untouched by a minor cycle; keep as-is.
			appendSurvivor(&survivors, &tail, cur)
			live++
		case h.Color == deadWhite:
			if h.Finalizable && !h.Finalized() {
				h.MarkFinalized()
				h.Color = newWhite
				h.Age = value.AgeOld
				c.finalizerQueue = append(c.finalizerQueue, cur)
				appendSurvivor(&survivors, &tail, cur)
				live++
			} else {
				c.free(cur)
				freed++
			}
		default:
			// survived a minor cycle: promote to the old generation, the
			// same "objects surviving enough minor collections are
			// promoted" rule spec.md §4.2 calls for.
			h.Color = newWhite
			h.Age = value.AgeOld
			appendSurvivor(&survivors, &tail, cur)
			live++
		}
		cur = next
	}

	c.allocHead = survivors
	c.allocCount = live
	c.currentWhite = newWhite
	c.phase = PhasePause
	c.minorCollections++

	c.Stats.Cycles++
	c.Stats.ObjectsFreed += freed
	c.Stats.ObjectsLive = live
}
