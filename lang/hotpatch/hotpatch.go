// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package hotpatch implements live code replacement and function
// sleep/wake (C8): swapping a running closure's prototype in place, and a
// per-prototype call queue that parks arriving calls while their target
// is marked sleeping.
package hotpatch

import (
	"errors"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

var (
	ErrUpvalueCountMismatch = errors.New("hotpatch: new function's upvalue count does not match the old function's")
	ErrNotAFunction         = errors.New("hotpatch: target is not a function")
	ErrGlobalNotFound       = errors.New("hotpatch: no global by that name")
)

// Hotreplace swaps old's prototype pointer for new's, preserving old's
// upvalue array and marking it hotfixed (spec.md §4.8: "swaps the
// prototype pointer of an existing Lua closure in place, preserves its
// upvalue array, and sets the closure's is_hotfixed mark bit"). Callers
// holding old observe the new behavior on their next invocation; any
// in-flight call already running old's previous body keeps running it,
// since lang/vm's run() reads cl.Proto into a local once at frame entry —
// reassigning the field here never affects a frame already past that
// read.
func Hotreplace(old *proto.Closure, newProto *proto.Proto) error {
	if !old.IsLua() {
		return ErrNotAFunction
	}
	previous := old.Proto
	old.Proto = newProto
	old.MarkHotfixed(previous)
	return nil
}

// Hotfix accepts either a function value or a global name, validates that
// the replacement's upvalue count matches, installs it, and returns the
// old function for rollback (spec.md §4.8).
func Hotfix(globals *value.Table, nameOrOldFn value.Value, newFn *proto.Closure) (*proto.Closure, error) {
	if !newFn.IsLua() {
		return nil, ErrNotAFunction
	}

	var old *proto.Closure
	var globalName value.Value
	switch nameOrOldFn.Kind() {
	case value.KFunctionLua, value.KFunctionGo, value.KFunctionHotfixed, value.KFunctionSleeping:
		old = nameOrOldFn.Object().(*proto.Closure)
	case value.KString:
		globalName = nameOrOldFn
		v := globals.Get(globalName)
		if v.Kind() != value.KFunctionLua && v.Kind() != value.KFunctionGo &&
			v.Kind() != value.KFunctionHotfixed && v.Kind() != value.KFunctionSleeping {
			return nil, ErrGlobalNotFound
		}
		old = v.Object().(*proto.Closure)
	default:
		return nil, ErrNotAFunction
	}

	if !old.IsLua() {
		return nil, ErrNotAFunction
	}
	if len(old.Upvals) != len(newFn.Upvals) {
		return nil, ErrUpvalueCountMismatch
	}
	if err := Hotreplace(old, newFn.Proto); err != nil {
		return nil, err
	}
	return old, nil
}
