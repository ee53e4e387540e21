// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

// Userdata is a full (owned) userdata block: an opaque Go payload plus an
// optional metatable and a small vector of user-values, per spec.md §3
// ("full = owned block with metatable and user-values").
type Userdata struct {
	Header

	Payload   any
	metatable *Table
	uservals  []Value
}

var _ Object = (*Userdata)(nil)

// NewUserdata wraps payload in a full-userdata object with n user-value
// slots, all initialized to nil.
func NewUserdata(payload any, uservalCount int) *Userdata {
	u := &Userdata{Payload: payload}
	if uservalCount > 0 {
		u.uservals = make([]Value, uservalCount)
	}
	return u
}

// Metatable returns the userdata's metatable, or nil.
func (u *Userdata) Metatable() *Table { return u.metatable }

// SetMetatable installs mt as the userdata's metatable.
func (u *Userdata) SetMetatable(mt *Table) { u.metatable = mt }

// UserValue returns the i'th user-value slot (0-based).
func (u *Userdata) UserValue(i int) Value {
	if i < 0 || i >= len(u.uservals) {
		return Nil
	}
	return u.uservals[i]
}

// SetUserValue writes the i'th user-value slot.
func (u *Userdata) SetUserValue(i int, v Value) {
	if i >= 0 && i < len(u.uservals) {
		u.uservals[i] = v
	}
}
