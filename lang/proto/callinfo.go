// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package proto

import "github.com/oxenfxc/lxclua/lang/value"

// CallInfo is one activation record in a thread's call chain: it generalizes
// a flat frame{returnPC, returnReg, baseReg} record with a base register, a
// varargs slice, and a to-be-closed (TBC) register list, per spec.md
// §4.3-§4.4.
type CallInfo struct {
	Prev *CallInfo
	Next *CallInfo

	Closure *Closure
	Base    int // first stack slot belonging to this frame
	PC      int // next instruction to execute, within Closure.Proto.Code

	NumResultsWanted int // -1 means "all results" (LUA_MULTRET)
	Varargs          []value.Value

	// TBCRegisters holds the base-relative register indices marked
	// to-be-closed in this frame, in declaration order, so CLOSE and
	// normal frame exit can run their __close metamethods in reverse
	// order (spec.md §4.4: "to-be-closed (TBC) variables ... closed in
	// reverse order of declaration").
	TBCRegisters []int
}

// MarkTBC appends a base-relative register index to this frame's
// to-be-closed list.
func (ci *CallInfo) MarkTBC(reg int) {
	ci.TBCRegisters = append(ci.TBCRegisters, reg)
}

// PopTBC removes and returns the most recently marked TBC register not yet
// below floor, or ok=false if none remain, so callers close them one at a
// time in reverse declaration order.
func (ci *CallInfo) PopTBC(floor int) (reg int, ok bool) {
	n := len(ci.TBCRegisters)
	if n == 0 {
		return 0, false
	}
	last := ci.TBCRegisters[n-1]
	if last < floor {
		return 0, false
	}
	ci.TBCRegisters = ci.TBCRegisters[:n-1]
	return last, true
}
