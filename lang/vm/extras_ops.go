// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// stepExtras implements the opcodes spec.md §4.5 groups as "Extras":
// SPACESHIP, IN, SLICE, IS/TESTNIL, ERRNNIL, NOP, CASE, SETIFACEFLAG.
func (vm *VM) stepExtras(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) error {
	a, b, c := int(instr.A()), int(instr.B()), int(instr.C())

	switch instr.Opcode() {
	case OpSpaceship:
		r, err := vm.spaceship(vm.reg(ci, b), vm.reg(ci, c))
		if err != nil {
			return err
		}
		vm.setReg(ci, a, value.Int(r))

	case OpIn:
		needle := vm.reg(ci, b)
		haystack := vm.reg(ci, c)
		found, err := vm.contains(haystack, needle)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, value.Bool(found))

	case OpSlice:
		src := vm.reg(ci, a)
		lo := vm.reg(ci, b)
		hi := vm.reg(ci, c)
		v, err := vm.slice(src, lo, hi)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpIs:
		vm.setReg(ci, a, value.Bool(vm.reg(ci, b).Kind() == vm.reg(ci, c).Kind()))

	case OpTestNil:
		vm.setReg(ci, a, value.Bool(vm.reg(ci, b).IsNil()))

	case OpErrNNil:
		if !vm.reg(ci, a).IsNil() {
			return ErrWrongType
		}

	case OpNop:
		// intentionally does nothing

	case OpCase:
		match := value.RawEquals(vm.reg(ci, a), vm.reg(ci, b))
		if match {
			ci.PC += int(instr.SBx())
		}

	case OpSetIfaceFlag:
		v := vm.reg(ci, a)
		if v.Kind() != value.KTable {
			return ErrWrongType
		}
		t := v.Object().(*value.Table)
		flag := vm.constant(cl, b)
		t.Set(flag, value.Bool(c != 0))
		vm.barrierWrite(t, value.Bool(c != 0))
	}
	return nil
}

// contains implements IN's dual dispatch: __contains first, else raw
// containment (table value scan, or substring for strings).
func (vm *VM) contains(haystack, needle value.Value) (bool, error) {
	if mm, ok := vm.metamethod(haystack, mmContains); ok {
		v, err := vm.call1(mm, []value.Value{haystack, needle})
		return v.IsTruthy(), err
	}
	switch haystack.Kind() {
	case value.KTable:
		t := haystack.Object().(*value.Table)
		for i := int64(1); i <= t.Len(); i++ {
			if value.RawEquals(t.Get(value.Int(i)), needle) {
				return true, nil
			}
		}
		return false, nil
	case value.KString:
		if needle.Kind() != value.KString {
			return false, nil
		}
		hs := haystack.Object().(*value.String).String()
		ns := needle.Object().(*value.String).String()
		return indexOf(hs, ns) >= 0, nil
	default:
		return false, ErrNotIndexable
	}
}

func indexOf(haystack, needle string) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// slice implements SLICE over strings and tables: [lo, hi) half-open,
// 1-indexed, per the language's array-slicing convention.
func (vm *VM) slice(src, lo, hi value.Value) (value.Value, error) {
	if lo.Kind() != value.KInt || hi.Kind() != value.KInt {
		return value.Nil, ErrWrongType
	}
	l, h := lo.AsInt(), hi.AsInt()
	l, h = l-1, h-1 // 1-indexed bounds to 0-based offsets
	switch src.Kind() {
	case value.KString:
		s := src.Object().(*value.String).Bytes()
		l, h = clampRange(l, h, int64(len(s)))
		if l >= h {
			return value.NewString(vm.Strings, nil), nil
		}
		return value.NewString(vm.Strings, s[l:h]), nil
	case value.KTable:
		t := src.Object().(*value.Table)
		l, h = clampRange(l, h, t.Len())
		out := value.NewTable(int(h-l), 0)
		vm.GC.Allocate(out)
		for i := l; i < h; i++ {
			out.Set(value.Int(i-l+1), t.Get(value.Int(i+1)))
		}
		return value.FromObject(value.KTable, out), nil
	default:
		return value.Nil, ErrNotIndexable
	}
}

func clampRange(lo, hi, n int64) (int64, int64) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}
