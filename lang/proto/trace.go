// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package proto

import "github.com/oxenfxc/lxclua/lang/value"

var _ value.Traceable = (*Closure)(nil)
var _ value.Traceable = (*Upvalue)(nil)

// Trace visits every open upvalue cell (kept alive so a still-running
// closure's shared variables survive) and any GC object among the
// prototype's constants (nested closures are created fresh by CLOSURE and
// traced independently once they land on the stack or in another upvalue).
func (c *Closure) Trace(mark func(value.Object)) {
	for _, uv := range c.Upvals {
		if uv != nil {
			mark(uv)
		}
	}
	if c.Proto != nil {
		for _, k := range c.Proto.Constants {
			if k.IsGCObject() {
				mark(k.Object())
			}
		}
	}
}

// Trace visits the upvalue's current value, whether it is still aliasing a
// live stack slot or has already been closed into its own storage.
func (u *Upvalue) Trace(mark func(value.Object)) {
	v := u.Get()
	if v.IsGCObject() {
		mark(v.Object())
	}
}
