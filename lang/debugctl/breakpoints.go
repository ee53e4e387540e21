// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package debugctl implements the debug controller (C9): a breakpoint
// registry, a run/step/next/finish state machine driven by a line hook,
// and traceback generation over a thread's call-frame chain.
package debugctl

import (
	"fmt"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// Breakpoint is one entry in the BREAKPOINTKEY registry table spec.md
// §4.9 describes: "{ source, line, enabled, condition? }".
type Breakpoint struct {
	Source    string
	Line      int
	Enabled   bool
	Condition *proto.Closure // evaluated in a fresh protected call; nil means unconditional
}

func breakpointKey(source string, line int) string {
	return fmt.Sprintf("%s:%d", source, line)
}

// SetBreakpoint installs or replaces the breakpoint at source:line.
func (c *Controller) SetBreakpoint(bp Breakpoint) {
	strKey := breakpointKey(bp.Source, bp.Line)
	key := c.intern(strKey)
	ud := value.NewUserdata(bp, 0)
	c.breakpoints.Set(key, value.FromObject(value.KUserdataFull, ud))
	if c.lookupCache != nil {
		c.lookupCache.Add(strKey, bp)
	}
}

// ClearBreakpoint removes the breakpoint at source:line, if any.
func (c *Controller) ClearBreakpoint(source string, line int) {
	strKey := breakpointKey(source, line)
	key := c.intern(strKey)
	c.breakpoints.Set(key, value.Nil)
	if c.lookupCache != nil {
		c.lookupCache.Remove(strKey)
	}
}

// lookupBreakpoint returns the breakpoint registered at source:line,
// consulting the bounded LRU cache before falling back to the
// authoritative registry table (the line hook calls this once per
// executed line, so the cache matters on hot loops).
func (c *Controller) lookupBreakpoint(source string, line int) (Breakpoint, bool) {
	strKey := breakpointKey(source, line)
	if c.lookupCache != nil {
		if bp, ok := c.lookupCache.Get(strKey); ok {
			return bp, true
		}
	}

	key := c.intern(strKey)
	v := c.breakpoints.Get(key)
	if v.IsNil() {
		return Breakpoint{}, false
	}
	bp, ok := v.Object().(*value.Userdata).Payload.(Breakpoint)
	if ok && c.lookupCache != nil {
		c.lookupCache.Add(strKey, bp)
	}
	return bp, ok
}
