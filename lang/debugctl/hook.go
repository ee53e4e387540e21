// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package debugctl

import (
	"fmt"
	"os"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
)

// HookMask selects which events a registered hook fires on, spec.md §4.9:
// "call/return/line mask and optional instruction count".
type HookMask uint8

const (
	MaskCall HookMask = 1 << iota
	MaskReturn
	MaskLine
	MaskCount
)

// OutputFunc receives one debug event: the event name (the debug output
// callback's "breakpoint"/"step"/"next"/"finish", or a sethook callback's
// "line"/"call"/"return"/"count"), the short source name, and the line
// number. A nil OutputFunc makes the controller write to stderr instead.
type OutputFunc func(event, source string, line int)

type hookState struct {
	mask      HookMask
	count     int // MaskCount: fire every `count` instructions
	remaining int
	output    OutputFunc
}

// SetHook installs a hook for t, replacing any previous one. count is only
// consulted when mask includes MaskCount.
func (c *Controller) SetHook(t *vm.Thread, mask HookMask, count int, output OutputFunc) {
	hs := &hookState{mask: mask, count: count, remaining: count, output: output}
	key := value.FromObject(value.KThread, t)
	c.hooks.Set(key, value.FromObject(value.KUserdataFull, value.NewUserdata(hs, 0)))
}

// ClearHook removes any hook installed on t.
func (c *Controller) ClearHook(t *vm.Thread) {
	key := value.FromObject(value.KThread, t)
	c.hooks.Set(key, value.Nil)
}

func (c *Controller) hookFor(t *vm.Thread) *hookState {
	key := value.FromObject(value.KThread, t)
	v := c.hooks.Get(key)
	if v.IsNil() {
		return nil
	}
	hs, _ := v.Object().(*value.Userdata).Payload.(*hookState)
	return hs
}

// emit delivers one debug event, via the installed OutputFunc if any, else
// to stderr.
func (c *Controller) emit(out OutputFunc, event, source string, line int) {
	if out != nil {
		out(event, source, line)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s:%d\n", event, source, line)
}

// evalCondition runs a breakpoint's condition closure in a protected call
// and reports whether it returned a truthy first result.
func evalCondition(caller func(cl *proto.Closure, args []value.Value) ([]value.Value, error), cl *proto.Closure) (bool, error) {
	results, err := caller(cl, nil)
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, nil
	}
	return results[0].IsTruthy(), nil
}

// OnLine is the line hook the VM's dispatch loop calls before executing
// the first instruction of a new source line (spec.md §4.9: "a single
// line hook installed on the running thread"). source/line describe the
// instruction about to run; call is used to evaluate breakpoint
// conditions via a fresh protected call.
func (c *Controller) OnLine(t *vm.Thread, source string, line int, call func(cl *proto.Closure, args []value.Value) ([]value.Value, error)) error {
	level := t.Depth()

	if bp, ok := c.lookupBreakpoint(source, line); ok && bp.Enabled {
		stop := true
		if bp.Condition != nil {
			var err error
			stop, err = evalCondition(call, bp.Condition)
			if err != nil {
				return err
			}
		}
		if stop {
			c.breakLevel = level
			c.emit(c.output, "breakpoint", source, line)
		}
	}

	switch c.mode {
	case ModeStep:
		c.breakLevel = level
		c.emit(c.output, "step", source, line)
	case ModeNext:
		if level <= c.targetLevel {
			c.breakLevel = level
			c.emit(c.output, "next", source, line)
		}
	case ModeFinish:
		if level <= c.targetLevel-1 {
			c.breakLevel = level
			c.emit(c.output, "finish", source, line)
			c.mode = ModeRun
		}
	}

	if hs := c.hookFor(t); hs != nil && hs.mask&MaskLine != 0 {
		c.emit(hs.output, "line", source, line)
	}
	return nil
}

// OnCall fires a registered call hook, if one is installed on t.
func (c *Controller) OnCall(t *vm.Thread, source string, line int) {
	if hs := c.hookFor(t); hs != nil && hs.mask&MaskCall != 0 {
		c.emit(hs.output, "call", source, line)
	}
}

// OnReturn fires a registered return hook, if one is installed on t.
func (c *Controller) OnReturn(t *vm.Thread, source string, line int) {
	if hs := c.hookFor(t); hs != nil && hs.mask&MaskReturn != 0 {
		c.emit(hs.output, "return", source, line)
	}
}

// OnInstruction ticks a registered instruction-count hook, firing once
// every hs.count instructions.
func (c *Controller) OnInstruction(t *vm.Thread, source string, line int) {
	hs := c.hookFor(t)
	if hs == nil || hs.mask&MaskCount == 0 {
		return
	}
	hs.remaining--
	if hs.remaining <= 0 {
		hs.remaining = hs.count
		c.emit(hs.output, "count", source, line)
	}
}
