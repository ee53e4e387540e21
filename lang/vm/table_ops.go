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

// index implements the table-indexing protocol: raw lookup on a table,
// else follow __index (a table, recursively, or a callable) up to a depth
// limit that breaks cycles (spec.md §4.1: "it follows a chain capped by a
// depth limit to break cycles").
func (vm *VM) index(v value.Value, key value.Value) (value.Value, error) {
	for depth := 0; depth < vm.maxMetaDepth; depth++ {
		if v.Kind() == value.KTable {
			t := v.Object().(*value.Table)
			raw := t.Get(key)
			if !raw.IsNil() {
				return raw, nil
			}
			mm, ok := t.HasMetamethod(vm.Strings, mmIndex)
			if !ok {
				return value.Nil, nil
			}
			if mm.Kind() == value.KTable {
				v = mm
				continue
			}
			return vm.call1(mm, []value.Value{v, key})
		}
		mm, ok := vm.metamethod(v, mmIndex)
		if !ok {
			return value.Nil, ErrNotIndexable
		}
		if mm.Kind() == value.KTable {
			v = mm
			continue
		}
		return vm.call1(mm, []value.Value{v, key})
	}
	return value.Nil, ErrNotIndexable
}

// newindex implements the table-assignment protocol symmetrically with
// index: raw set if the key already exists or the table has no
// __newindex, else follow the chain.
func (vm *VM) newindex(v value.Value, key, val value.Value) error {
	for depth := 0; depth < vm.maxMetaDepth; depth++ {
		if v.Kind() == value.KTable {
			t := v.Object().(*value.Table)
			if !t.Get(key).IsNil() {
				t.Set(key, val)
				vm.barrierWrite(t, val)
				return nil
			}
			mm, ok := t.HasMetamethod(vm.Strings, mmNewIndex)
			if !ok {
				t.Set(key, val)
				vm.barrierWrite(t, val)
				return nil
			}
			if mm.Kind() == value.KTable {
				v = mm
				continue
			}
			_, err := vm.call1(mm, []value.Value{v, key, val})
			return err
		}
		mm, ok := vm.metamethod(v, mmNewIndex)
		if !ok {
			return ErrNotIndexable
		}
		if mm.Kind() == value.KTable {
			v = mm
			continue
		}
		_, err := vm.call1(mm, []value.Value{v, key, val})
		return err
	}
	return ErrNotIndexable
}

func (vm *VM) stepTable(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) error {
	a, b, c := int(instr.A()), int(instr.B()), int(instr.C())

	switch instr.Opcode() {
	case OpGetTable:
		v, err := vm.index(vm.reg(ci, b), vm.reg(ci, c))
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpSetTable:
		return vm.newindex(vm.reg(ci, a), vm.reg(ci, b), vm.reg(ci, c))

	case OpGetI:
		v, err := vm.index(vm.reg(ci, b), value.Int(int64(c)))
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpSetI:
		return vm.newindex(vm.reg(ci, a), value.Int(int64(b)), vm.reg(ci, c))

	case OpGetField:
		key := vm.constant(cl, c)
		v, err := vm.index(vm.reg(ci, b), key)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpSetField:
		key := vm.constant(cl, b)
		return vm.newindex(vm.reg(ci, a), key, vm.reg(ci, c))

	case OpSelf:
		recv := vm.reg(ci, b)
		key := vm.constant(cl, c)
		method, err := vm.index(recv, key)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, method)
		vm.setReg(ci, a+1, recv)

	case OpNewTable:
		nt := value.NewTable(b, c)
		vm.GC.Allocate(nt)
		vm.setReg(ci, a, value.FromObject(value.KTable, nt))

	case OpSetList:
		tbl := vm.reg(ci, a)
		if tbl.Kind() != value.KTable {
			return ErrNotIndexable
		}
		t := tbl.Object().(*value.Table)
		n := b
		if n == 0 {
			n = vm.current.Top() - (ci.Base + a + 1)
		}
		for i := 0; i < n; i++ {
			v := vm.reg(ci, a+1+i)
			t.Set(value.Int(int64(c+i+1)), v)
			vm.barrierWrite(t, v)
		}
	}
	return nil
}
