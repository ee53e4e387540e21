// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hotpatch

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

func lua(nups int) *proto.Closure {
	p := &proto.Proto{UpvalNames: make([]string, nups)}
	return proto.NewLuaClosure(p)
}

func TestHotreplacePreservesUpvaluesAndMarksHotfixed(t *testing.T) {
	old := lua(2)
	old.Upvals[0] = &proto.Upvalue{}
	newProto := &proto.Proto{MaxStack: 5}

	originalProto := old.Proto
	if err := Hotreplace(old, newProto); err != nil {
		t.Fatalf("Hotreplace: %v", err)
	}
	if old.Proto != newProto {
		t.Fatalf("Hotreplace did not swap the prototype pointer")
	}
	if old.Upvals[0] == nil {
		t.Fatalf("Hotreplace dropped the upvalue array")
	}
	if old.HotfixedFrom() != originalProto {
		t.Fatalf("HotfixedFrom should report the pre-patch prototype")
	}
}

func TestHotreplaceRejectsGoClosures(t *testing.T) {
	goCl := proto.NewGoClosure(func(args []value.Value) ([]value.Value, error) { return nil, nil }, 0)
	if err := Hotreplace(goCl, &proto.Proto{}); err != ErrNotAFunction {
		t.Fatalf("expected ErrNotAFunction, got %v", err)
	}
}

func TestHotfixRejectsUpvalueCountMismatch(t *testing.T) {
	old := lua(1)
	newFn := lua(2)
	globals := value.NewTable(0, 1)
	_, err := Hotfix(globals, value.FromObject(value.KFunctionLua, old), newFn)
	if err != ErrUpvalueCountMismatch {
		t.Fatalf("expected ErrUpvalueCountMismatch, got %v", err)
	}
}

func TestHotfixByGlobalName(t *testing.T) {
	interner := value.NewInterner()
	name := value.NewString(interner, []byte("greet"))
	old := lua(0)
	newFn := lua(0)

	globals := value.NewTable(0, 1)
	globals.Set(name, value.FromObject(value.KFunctionLua, old))

	got, err := Hotfix(globals, name, newFn)
	if err != nil {
		t.Fatalf("Hotfix: %v", err)
	}
	if got != old {
		t.Fatalf("Hotfix did not return the pre-patch closure")
	}
	installed := globals.Get(name)
	if installed.Object().(*proto.Closure) != old {
		t.Fatalf("Hotfix should leave the global bound to the same *Closure (patched in place), got a different object")
	}
}

func TestHotfixRejectsUnknownGlobal(t *testing.T) {
	interner := value.NewInterner()
	name := value.NewString(interner, []byte("missing"))
	globals := value.NewTable(0, 1)
	_, err := Hotfix(globals, name, lua(0))
	if err != ErrGlobalNotFound {
		t.Fatalf("expected ErrGlobalNotFound, got %v", err)
	}
}

func TestQueueParksAndReplaysInOrder(t *testing.T) {
	var replayed [][]value.Value
	q := NewQueue(func(cl *proto.Closure, args []value.Value) ([]value.Value, error) {
		replayed = append(replayed, args)
		return nil, nil
	})

	p := &proto.Proto{}
	cl := proto.NewLuaClosure(p)
	q.Sleep(p)
	if !p.Sleeping() {
		t.Fatalf("Sleep did not set the sleeping flag")
	}

	first := []value.Value{value.Int(1)}
	second := []value.Value{value.Int(2)}
	if _, err := q.OnCall(cl, first); err != nil {
		t.Fatalf("OnCall: %v", err)
	}
	if _, err := q.OnCall(cl, second); err != nil {
		t.Fatalf("OnCall: %v", err)
	}
	if q.Pending(p) != 2 {
		t.Fatalf("expected 2 pending calls, got %d", q.Pending(p))
	}

	q.Wake(p, cl)
	if p.Sleeping() {
		t.Fatalf("Wake left the sleeping flag set")
	}
	if q.Pending(p) != 0 {
		t.Fatalf("Wake left calls pending")
	}
	if len(replayed) != 2 || replayed[0][0].AsInt() != 1 || replayed[1][0].AsInt() != 2 {
		t.Fatalf("replay order mismatch: %v", replayed)
	}
}
