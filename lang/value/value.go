// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package value implements the tagged value representation and
// garbage-collected object graph shared by every other execution-core
// package: strings, tables, closures, userdata, and threads.
//
// Unlike a flat register of 64-bit words, a Value here is a small
// tagged union: a Kind byte, a 64-bit payload (integer bits, float bits, or
// a light-userdata pointer encoded as uintptr), and an Object reference for
// every garbage-collected kind. This is the generalization spec.md §3 asks
// for: "a value is a tagged union over: nil, boolean ... integer ... float
// ... string ... table ... function ... userdata ... thread ... raw pointer".
package value

import (
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KNil Kind = iota
	KFalse
	KTrue
	KInt
	KFloat
	KString       // short or long string; distinguished on the *String object
	KTable
	KFunctionLua      // Lua closure (proto + upvalues)
	KFunctionGo       // C-style (Go-native) closure
	KFunctionHotfixed // a Lua closure whose prototype was replaced via hotreplace
	KFunctionSleeping // a Lua closure whose prototype is currently sleeping
	KUserdataFull     // owned block with metatable and user-values
	KUserdataLight    // opaque pointer, no metatable, no GC header
	KThread
	KPointer // raw, non-owning pointer (no GC header)
)

func (k Kind) String() string {
	switch k {
	case KNil:
		return "nil"
	case KFalse, KTrue:
		return "boolean"
	case KInt:
		return "integer"
	case KFloat:
		return "float"
	case KString:
		return "string"
	case KTable:
		return "table"
	case KFunctionLua, KFunctionGo, KFunctionHotfixed, KFunctionSleeping:
		return "function"
	case KUserdataFull, KUserdataLight:
		return "userdata"
	case KThread:
		return "thread"
	case KPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Object is implemented by every garbage-collected heap value: *String,
// *Table, and *Userdata in this package, and *proto.Closure,
// *proto.Upvalue, and *vm.Thread, which embed Header the same way.
type Object interface {
	Header() *Header
}

// Value is the VM's universal tagged value. The zero Value is nil.
type Value struct {
	kind Kind
	num  uint64 // integer bits (two's complement) or float64 bits
	obj  Object // non-nil for every GC-managed kind; nil otherwise
}

// Nil is the canonical nil value.
var Nil = Value{kind: KNil}

// True and False are the two distinct boolean variants spec.md §3 calls for
// ("boolean (two distinct truthy/falsy variants)").
var (
	True  = Value{kind: KTrue}
	False = Value{kind: KFalse}
)

// Bool returns True or False for a Go bool.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int wraps a 64-bit signed integer.
func Int(n int64) Value { return Value{kind: KInt, num: uint64(n)} }

// Float wraps an IEEE-754 double.
func Float(f float64) Value { return Value{kind: KFloat, num: math.Float64bits(f)} }

// FromObject wraps any GC object kind. The kind must match the object's
// dynamic type; callers should use the typed constructors in strings.go,
// table.go, and userdata.go, where one exists, instead of calling this
// directly.
func FromObject(kind Kind, obj Object) Value { return Value{kind: kind, obj: obj} }

// LightUserdata wraps an opaque, GC-untracked pointer value.
func LightUserdata(ptr uintptr) Value { return Value{kind: KUserdataLight, num: uint64(ptr)} }

// RawPointer wraps a raw, non-owning pointer value (distinct from light
// userdata: it carries no userdata semantics, only an address).
func RawPointer(addr uint64) Value { return Value{kind: KPointer, num: addr} }

// Kind returns the value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.kind == KNil }

// IsFalsy reports Lua truthiness: only nil and false are falsy.
func (v Value) IsFalsy() bool { return v.kind == KNil || v.kind == KFalse }

// IsTruthy is the negation of IsFalsy.
func (v Value) IsTruthy() bool { return !v.IsFalsy() }

// AsInt returns the integer payload. Callers must check Kind() == KInt.
func (v Value) AsInt() int64 { return int64(v.num) }

// AsFloat returns the float payload. Callers must check Kind() == KFloat.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.num) }

// AsLightUserdata returns the light-userdata pointer payload.
func (v Value) AsLightUserdata() uintptr { return uintptr(v.num) }

// AsPointer returns the raw pointer payload.
func (v Value) AsPointer() uint64 { return v.num }

// Object returns the GC object backing a table/function/userdata/thread/
// string value, or nil for every other kind.
func (v Value) Object() Object { return v.obj }

// IsGCObject reports whether v carries a heap-allocated, GC-traced object.
func (v Value) IsGCObject() bool { return v.obj != nil }

// RawEquals implements pointer-equality-for-strings, value-equality-for-
// numbers-and-booleans, and identity-equality-for-everything-else, per
// spec.md §4.1 ("shallow equality (pointer for interned strings; structural
// for tables only via metatable __eq)"). It does not consult metamethods;
// the VM's EQ opcode layers __eq dispatch on top of this for tables.
func RawEquals(a, b Value) bool {
	if a.kind != b.kind {
		// Lua's number tower treats ints and floats as comparable when
		// both represent the same mathematical value.
		if a.kind == KInt && b.kind == KFloat {
			return float64(a.AsInt()) == b.AsFloat()
		}
		if a.kind == KFloat && b.kind == KInt {
			return a.AsFloat() == float64(b.AsInt())
		}
		return false
	}
	switch a.kind {
	case KNil, KFalse, KTrue:
		return true
	case KInt:
		return a.num == b.num
	case KFloat:
		return a.AsFloat() == b.AsFloat()
	case KUserdataLight, KPointer:
		return a.num == b.num
	default:
		// Strings compare by identity too: the intern table guarantees two
		// equal short strings share one object, and long strings are never
		// interned so identity is the only correct comparison here (the
		// VM's concat/compare opcodes do byte-wise comparison separately).
		return a.obj == b.obj
	}
}

// TypeName returns the Lua-visible type name, matching type(v) semantics.
func TypeName(v Value) string { return v.Kind().String() }
