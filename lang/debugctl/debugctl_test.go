// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package debugctl

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
)

func TestSetAndLookupBreakpoint(t *testing.T) {
	c := New(value.NewInterner())
	c.SetBreakpoint(Breakpoint{Source: "main.lua", Line: 10, Enabled: true})

	bp, ok := c.lookupBreakpoint("main.lua", 10)
	if !ok {
		t.Fatalf("expected breakpoint to be found")
	}
	if !bp.Enabled || bp.Line != 10 {
		t.Fatalf("unexpected breakpoint: %+v", bp)
	}

	if _, ok := c.lookupBreakpoint("main.lua", 11); ok {
		t.Fatalf("did not expect a breakpoint at a different line")
	}
}

func TestClearBreakpoint(t *testing.T) {
	c := New(value.NewInterner())
	c.SetBreakpoint(Breakpoint{Source: "a.lua", Line: 3, Enabled: true})
	c.ClearBreakpoint("a.lua", 3)
	if _, ok := c.lookupBreakpoint("a.lua", 3); ok {
		t.Fatalf("expected breakpoint to be cleared")
	}
}

func TestOnLineStopsAtUnconditionalBreakpoint(t *testing.T) {
	c := New(value.NewInterner())
	c.SetBreakpoint(Breakpoint{Source: "x.lua", Line: 5, Enabled: true})
	th := vm.NewThread(16)

	var events []string
	noop := func(cl *proto.Closure, args []value.Value) ([]value.Value, error) { return nil, nil }
	if err := c.OnLine(th, "x.lua", 5, noop); err != nil {
		t.Fatalf("OnLine: %v", err)
	}
	if c.BreakLevel() != th.Depth() {
		t.Fatalf("expected break level to record current depth")
	}
	_ = events
}

func TestStepModeStopsEveryLine(t *testing.T) {
	c := New(value.NewInterner())
	c.Step()
	th := vm.NewThread(16)
	noop := func(cl *proto.Closure, args []value.Value) ([]value.Value, error) { return nil, nil }
	if err := c.OnLine(th, "x.lua", 1, noop); err != nil {
		t.Fatalf("OnLine: %v", err)
	}
	if c.Mode() != ModeStep {
		t.Fatalf("Step mode should persist across single-stops")
	}
}

func TestFinishModeClearsAfterStop(t *testing.T) {
	c := New(value.NewInterner())
	c.Finish(1)
	th := vm.NewThread(16)
	noop := func(cl *proto.Closure, args []value.Value) ([]value.Value, error) { return nil, nil }
	if err := c.OnLine(th, "x.lua", 1, noop); err != nil {
		t.Fatalf("OnLine: %v", err)
	}
	if c.Mode() != ModeRun {
		t.Fatalf("expected Finish to revert to run mode once its target level was reached, got %v", c.Mode())
	}
}

func TestSetHookFiresOnLineMask(t *testing.T) {
	c := New(value.NewInterner())
	th := vm.NewThread(16)
	var got []string
	c.SetHook(th, MaskLine, 0, func(event, source string, line int) {
		got = append(got, event)
	})
	noop := func(cl *proto.Closure, args []value.Value) ([]value.Value, error) { return nil, nil }
	if err := c.OnLine(th, "x.lua", 2, noop); err != nil {
		t.Fatalf("OnLine: %v", err)
	}
	if len(got) != 1 || got[0] != "line" {
		t.Fatalf("expected one line event, got %v", got)
	}
}

func TestClearHookStopsDelivery(t *testing.T) {
	c := New(value.NewInterner())
	th := vm.NewThread(16)
	fired := false
	c.SetHook(th, MaskLine, 0, func(event, source string, line int) { fired = true })
	c.ClearHook(th)
	noop := func(cl *proto.Closure, args []value.Value) ([]value.Value, error) { return nil, nil }
	if err := c.OnLine(th, "x.lua", 2, noop); err != nil {
		t.Fatalf("OnLine: %v", err)
	}
	if fired {
		t.Fatalf("expected no hook delivery after ClearHook")
	}
}

func TestTracebackOnEmptyThreadHasHeaderOnly(t *testing.T) {
	th := vm.NewThread(16)
	tb := Traceback(th, "boom")
	if want := "boom\nstack traceback:"; tb != want {
		t.Fatalf("Traceback on empty thread = %q, want %q", tb, want)
	}
}
