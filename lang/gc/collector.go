// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package gc implements the incremental tri-color mark-sweep collector and
// its generational mode, operating over the object graph defined in
// lang/value and lang/proto.
//
// This generalizes the Go runtime's own producer/consumer gcWork pattern
// (see the mgcwork.go-derived grounding note in DESIGN.md) down to a single
// goroutine's worklist: spec.md §5 is explicit that a thread state's heap
// and collector are private, so there is no concurrent mutator to race
// against and no write-barrier shading beyond the one a single-threaded
// incremental collector needs to stay correct across Step calls.
package gc

import "github.com/oxenfxc/lxclua/lang/value"

// Mode selects between the two collection strategies spec.md §4.2 names.
type Mode uint8

const (
	// ModeIncremental runs one tri-color mark-sweep cycle across many Step
	// calls, bounding per-step pause time.
	ModeIncremental Mode = iota
	// ModeGenerational collects the young generation every cycle and only
	// occasionally promotes a full mark-sweep over the whole heap.
	ModeGenerational
)

// Phase tracks where an incremental cycle currently stands.
type Phase uint8

const (
	PhasePause Phase = iota
	PhasePropagate
	PhaseSweep
)

// RootProvider supplies the collector's root set: every Value directly
// reachable without going through another GC object (VM register stacks,
// the globals table, the registry). Package vm implements this over its
// Thread and VM types.
type RootProvider interface {
	GCRoots() []value.Value
}

// Collector is the single per-VM-state garbage collector instance (spec.md
// §5: "a heap and a garbage collector state" per thread state).
type Collector struct {
	mode  Mode
	phase Phase

	currentWhite value.Color

	allocHead  value.Object // intrusive singly-linked list of every live/white object
	allocCount int

	gray []value.Object // gray worklist; LIFO like gcWork's wbuf stack

	roots RootProvider
	Strings *value.Interner

	bytesAllocated uint64
	threshold      uint64
	stepSize       int // objects scanned per Step call, for ModeIncremental

	finalizerQueue []value.Object // objects with __gc pending, awaiting RunFinalizers
	minorCollections int

	weakTables []*value.Table
	remembered []value.Object

	stopped bool

	Stats Stats
}

// Stats are cumulative counters exposed to the debug/introspection surface
// (spec.md §4.2: "count (heap size estimate)").
type Stats struct {
	Cycles       int
	ObjectsFreed int
	ObjectsLive  int
}

// New creates a collector in incremental mode with a conservative default
// step size and byte threshold.
func New(interner *value.Interner, roots RootProvider) *Collector {
	return &Collector{
		mode:      ModeIncremental,
		currentWhite: value.White0,
		roots:     roots,
		Strings:   interner,
		threshold: 1 << 20,
		stepSize:  256,
	}
}

// SetMode switches collection strategy. Switching mid-cycle forces a pause:
// any in-flight mark is abandoned and the next allocation starts a fresh
// cycle in the new mode, which is simpler and safer than trying to carry
// gray state across a strategy change.
func (c *Collector) SetMode(m Mode) {
	c.mode = m
	c.phase = PhasePause
	c.gray = nil
}

// Mode reports the active collection strategy.
func (c *Collector) Mode() Mode { return c.mode }

// SetThreshold overrides the byte-allocation threshold that triggers a new
// incremental cycle, the collector analogue of `collectgarbage("setpause")`.
func (c *Collector) SetThreshold(bytes uint64) { c.threshold = bytes }

// SetStepSize overrides how many objects a single incremental Step call
// scans, the analogue of `collectgarbage("setstepmul")`.
func (c *Collector) SetStepSize(n int) { c.stepSize = n }

// Count returns the estimated live heap size in objects, the collector's
// analogue of `collectgarbage("count")`.
func (c *Collector) Count() int { return c.allocCount }

// Allocate registers a freshly created object with the collector: it is
// linked into the allocation list and colored the current white shade, so a
// sweep already in progress does not mistake it for garbage from the
// previous cycle (spec.md §4.2's "no live object is ever collected"
// invariant).
func (c *Collector) Allocate(o value.Object) {
	h := o.Header()
	h.Color = c.currentWhite
	h.SetNext(c.allocHead)
	c.allocHead = o
	c.allocCount++
	c.bytesAllocated += objectCost(o)

	if !c.stopped && c.mode == ModeIncremental && c.bytesAllocated >= c.threshold && c.phase == PhasePause {
		c.startCycle()
	}
}

// objectCost is a coarse per-kind size estimate used only to pace the
// incremental collector's trigger threshold, not an exact accounting.
func objectCost(o value.Object) uint64 {
	switch o.Header().Kind {
	case value.KString:
		return 48
	case value.KTable:
		return 96
	default:
		return 64
	}
}

// Stop disables automatic cycle triggering from Allocate; Step and Collect
// still work when called explicitly (spec.md §4.2: "stop/restart").
func (c *Collector) Stop() { c.stopped = true }

// Restart re-enables automatic cycle triggering from Allocate.
func (c *Collector) Restart() { c.stopped = false }

// Stopped reports whether automatic triggering is currently disabled.
func (c *Collector) Stopped() bool { return c.stopped }
