// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hotpatch

import (
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
)

// Attach builds a Queue bound to v's own Call dispatcher and wires it in
// as v.OnSleepingCall, the same function-field hook pattern package jit
// uses for JITCompile/JITLookup.
func Attach(v *vm.VM) *Queue {
	q := NewQueue(func(cl *proto.Closure, args []value.Value) ([]value.Value, error) {
		return v.Call(cl, args, -1)
	})
	v.OnSleepingCall = q.OnCall
	return q
}
