// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package gc

import "github.com/oxenfxc/lxclua/lang/value"

// RegisterWeak adds t to the set of tables whose weak sides are purged
// each cycle. A table's weak sides are purged only once it has been
// registered here; package vm does not call this.
func (c *Collector) RegisterWeak(t *value.Table) {
	c.weakTables = append(c.weakTables, t)
}

// clearWeak runs after the mark phase completes (gray worklist empty) and
// before sweep frees anything: it deletes weak-side entries pointing at
// objects that ordinary marking left white, i.e. objects with no other,
// strong path keeping them alive.
func (c *Collector) clearWeak() {
	deadWhite := c.currentWhite
	isDead := func(o value.Object) bool { return o.Header().Color == deadWhite }
	live := c.weakTables[:0]
	for _, t := range c.weakTables {
		if t.Header().Color == deadWhite {
			// the table itself is garbage; drop it from the registry
			// instead of purging its doomed contents.
			continue
		}
		t.PurgeDead(isDead)
		live = append(live, t)
	}
	c.weakTables = live
}
