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

// stepOOP implements the class/concept/namespace opcode family spec.md
// §4.5 describes: "Classes are tables with well-known subtables __methods
// and __statics; inheritance copies a parent reference to a
// metatable-linked __parent; NEWOBJ allocates, installs the method table
// as metatable, and invokes __init__ with the given arguments; GETSUPER
// walks the parent chain starting above the current receiver's class."
func (vm *VM) stepOOP(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) error {
	a, b, c := int(instr.A()), int(instr.B()), int(instr.C())

	switch instr.Opcode() {
	case OpNewClass:
		class := vm.newClassTable()
		vm.setReg(ci, a, value.FromObject(value.KTable, class))

	case OpInherit:
		child := vm.reg(ci, a)
		parent := vm.reg(ci, b)
		if child.Kind() != value.KTable || parent.Kind() != value.KTable {
			return ErrWrongType
		}
		ct, pt := child.Object().(*value.Table), parent.Object().(*value.Table)
		ct.Set(vm.intern(mmParent), parent)
		vm.barrierWrite(ct, parent)
		vm.copyMethodTable(ct, pt)

	case OpSetMethod:
		class := vm.reg(ci, a)
		name := vm.constant(cl, b)
		fn := vm.reg(ci, c)
		return vm.setInSubtable(class, mmMethods, name, fn)

	case OpSetStatic:
		class := vm.reg(ci, a)
		name := vm.constant(cl, b)
		fn := vm.reg(ci, c)
		return vm.setInSubtable(class, mmStatics, name, fn)

	case OpAddMethod:
		// ADDMETHOD differs from SETMETHOD only in taking its name from a
		// register (dynamic method names) rather than the constant pool.
		class := vm.reg(ci, a)
		name := vm.reg(ci, b)
		fn := vm.reg(ci, c)
		return vm.setInSubtable(class, mmMethods, name, fn)

	case OpNewObj:
		class := vm.reg(ci, b)
		if class.Kind() != value.KTable {
			return ErrWrongType
		}
		ct := class.Object().(*value.Table)
		obj := value.NewTable(0, 4)
		vm.GC.Allocate(obj)
		methods, _ := ct.Get(vm.intern(mmMethods)).Object().(*value.Table)
		if methods != nil {
			obj.SetMetatable(methods)
		}
		objVal := value.FromObject(value.KTable, obj)
		args := vm.regsFrom(ci, a+1)
		if methods != nil {
			if init, ok := methods.Get(vm.intern(mmInit)).Object().(*proto.Closure); ok {
				if _, err := vm.Call(init, append([]value.Value{objVal}, args...), 0); err != nil {
					return err
				}
			}
		}
		vm.setReg(ci, a, objVal)

	case OpGetProp:
		recv := vm.reg(ci, b)
		name := vm.constant(cl, c)
		v, err := vm.index(recv, name)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpSetProp:
		recv := vm.reg(ci, a)
		name := vm.constant(cl, b)
		return vm.newindex(recv, name, vm.reg(ci, c))

	case OpInstanceOf:
		obj := vm.reg(ci, b)
		class := vm.reg(ci, c)
		vm.setReg(ci, a, value.Bool(vm.isInstanceOf(obj, class)))

	case OpImplement:
		class := vm.reg(ci, a)
		concept := vm.reg(ci, b)
		if class.Kind() != value.KTable || concept.Kind() != value.KTable {
			return ErrWrongType
		}
		ifaces, _ := class.Object().(*value.Table).Get(vm.intern("__implements")).Object().(*value.Table)
		if ifaces == nil {
			ifaces = value.NewTable(4, 0)
			vm.GC.Allocate(ifaces)
			class.Object().(*value.Table).Set(vm.intern("__implements"), value.FromObject(value.KTable, ifaces))
		}
		ifaces.Set(value.Int(ifaces.Len()+1), concept)

	case OpGetSuper:
		recv := vm.reg(ci, b)
		v, err := vm.getSuper(recv)
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)

	case OpNewConcept:
		concept := value.NewTable(0, 4)
		vm.GC.Allocate(concept)
		vm.setReg(ci, a, value.FromObject(value.KTable, concept))

	case OpNewNamespace:
		ns := value.NewTable(0, 8)
		vm.GC.Allocate(ns)
		vm.setReg(ci, a, value.FromObject(value.KTable, ns))

	case OpLinkNamespace:
		parentNs := vm.reg(ci, a)
		childNs := vm.reg(ci, b)
		name := vm.constant(cl, c)
		if parentNs.Kind() != value.KTable {
			return ErrWrongType
		}
		pt := parentNs.Object().(*value.Table)
		pt.Set(name, childNs)
		vm.barrierWrite(pt, childNs)
	}
	return nil
}

func (vm *VM) newClassTable() *value.Table {
	class := value.NewTable(0, 4)
	vm.GC.Allocate(class)
	methods := value.NewTable(0, 8)
	vm.GC.Allocate(methods)
	statics := value.NewTable(0, 4)
	vm.GC.Allocate(statics)
	class.Set(vm.intern(mmMethods), value.FromObject(value.KTable, methods))
	class.Set(vm.intern(mmStatics), value.FromObject(value.KTable, statics))
	methods.Set(vm.intern(mmIndex), value.FromObject(value.KTable, methods))
	return class
}

func (vm *VM) setInSubtable(class value.Value, subtable string, key, fn value.Value) error {
	if class.Kind() != value.KTable {
		return ErrWrongType
	}
	ct := class.Object().(*value.Table)
	sub, ok := ct.Get(vm.intern(subtable)).Object().(*value.Table)
	if !ok {
		return ErrNotIndexable
	}
	sub.Set(key, fn)
	vm.barrierWrite(sub, fn)
	return nil
}

// copyMethodTable implements INHERIT's method-table copy: every entry in
// the parent's __methods subtable becomes a default in the child's,
// unless the child already defines its own (an override).
func (vm *VM) copyMethodTable(child, parentTable *value.Table) {
	childMethods, _ := child.Get(vm.intern(mmMethods)).Object().(*value.Table)
	parentMethods, _ := parentTable.Get(vm.intern(mmMethods)).Object().(*value.Table)
	if childMethods == nil || parentMethods == nil {
		return
	}
	childMethods.SetMetatable(parentMethods)
}

func (vm *VM) isInstanceOf(obj, class value.Value) bool {
	if obj.Kind() != value.KTable || class.Kind() != value.KTable {
		return false
	}
	mt := obj.Object().(*value.Table).Metatable()
	target, _ := class.Object().(*value.Table).Get(vm.intern(mmMethods)).Object().(*value.Table)
	for mt != nil {
		if mt == target {
			return true
		}
		mt = mt.Metatable()
	}
	return false
}

// getSuper walks the parent chain starting above the receiver's own
// class: obj's metatable is its class's __methods table, whose own
// metatable (set by copyMethodTable) is the parent class's __methods.
func (vm *VM) getSuper(recv value.Value) (value.Value, error) {
	if recv.Kind() != value.KTable {
		return value.Nil, ErrNotIndexable
	}
	mt := recv.Object().(*value.Table).Metatable()
	if mt == nil {
		return value.Nil, nil
	}
	parentMethods := mt.Metatable()
	if parentMethods == nil {
		return value.Nil, nil
	}
	return value.FromObject(value.KTable, parentMethods), nil
}
