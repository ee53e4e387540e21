// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package debugctl

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oxenfxc/lxclua/lang/value"
)

// breakpointCacheSize bounds the lookup cache fronting the breakpoint
// registry table: a running script may visit far more distinct lines
// than it has active breakpoints, so the cache stays small and cold
// entries fall back to the authoritative value.Table lookup.
const breakpointCacheSize = 256

// Mode is the debug controller's run mode, spec.md §4.9: "one of
// {run, step, next, finish}".
type Mode int

const (
	ModeRun Mode = iota
	ModeStep
	ModeNext
	ModeFinish
)

// Controller is one thread's debug session: its breakpoint table, its
// current stepping mode, and its installed hooks. A Controller is bound
// to a single *vm.VM's registry-scoped interner so breakpoint keys and
// global names intern consistently with the running scripts.
type Controller struct {
	interner *value.Interner

	breakpoints *value.Table        // BREAKPOINTKEY: "source:line" -> *Userdata(Breakpoint)
	lookupCache *lru.Cache[string, Breakpoint]
	hooks       *value.Table // weak-keyed, thread -> *Userdata(*hookState)

	// DEBUGSTATEKEY fields: mode, target_level, break_level.
	mode        Mode
	targetLevel int
	breakLevel  int

	// output is the single debug output callback spec.md §6 describes:
	// "invoked as (event, source, line)". Single-assignment per thread
	// state; nil means write to stderr.
	output OutputFunc
}

// SetOutput installs the debug output callback used for breakpoint/step/
// next/finish events. Passing nil reverts to writing to stderr.
func (c *Controller) SetOutput(fn OutputFunc) { c.output = fn }

// New builds a Controller using interner to intern breakpoint keys.
func New(interner *value.Interner) *Controller {
	cache, _ := lru.New[string, Breakpoint](breakpointCacheSize)
	c := &Controller{
		interner:    interner,
		breakpoints: value.NewTable(0, 4),
		lookupCache: cache,
		hooks:       value.NewTable(0, 2),
	}
	c.hooks.SetWeak(true, false)
	return c
}

func (c *Controller) intern(s string) value.Value {
	return value.NewString(c.interner, []byte(s))
}

// Continue resumes free-running execution: no line stops until a
// breakpoint is hit.
func (c *Controller) Continue() {
	c.mode = ModeRun
	c.targetLevel = 0
	c.breakLevel = 0
}

// Step arms a stop at the very next line, regardless of call depth.
func (c *Controller) Step() {
	c.mode = ModeStep
}

// Next arms a stop at the next line executed at or above the current
// call level, stepping over nested calls.
func (c *Controller) Next(currentLevel int) {
	c.mode = ModeNext
	c.targetLevel = currentLevel
}

// Finish arms a stop when control returns to the caller of the current
// frame (current level drops below currentLevel).
func (c *Controller) Finish(currentLevel int) {
	c.mode = ModeFinish
	c.targetLevel = currentLevel
}

// Mode reports the controller's current stepping mode.
func (c *Controller) Mode() Mode { return c.mode }

// BreakLevel reports the call depth recorded at the last stop.
func (c *Controller) BreakLevel() int { return c.breakLevel }
