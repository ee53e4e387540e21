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

func (vm *VM) stepArith(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) error {
	a, b, c := int(instr.A()), int(instr.B()), int(instr.C())
	op := instr.Opcode()

	unary := func(fn func(value.Value) (value.Value, error)) error {
		v, err := fn(vm.reg(ci, b))
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)
		return nil
	}

	switch op {
	case OpUnm:
		return unary(vm.unaryMinus)
	case OpBNot:
		return unary(vm.bitwiseNot)
	case OpNot:
		vm.setReg(ci, a, value.Bool(vm.reg(ci, b).IsFalsy()))
		return nil
	case OpLen:
		return unary(vm.length)
	case OpConcat:
		v, err := vm.concat(vm.reg(ci, b), vm.reg(ci, c))
		if err != nil {
			return err
		}
		vm.setReg(ci, a, v)
		return nil
	}

	var lhs, rhs value.Value
	var kind arithKind
	switch op {
	case OpAdd:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithAdd
	case OpSub:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithSub
	case OpMul:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithMul
	case OpDiv:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithDiv
	case OpIDiv:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithIDiv
	case OpMod:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithMod
	case OpPow:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithPow
	case OpBAnd:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithBAnd
	case OpBOr:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithBOr
	case OpBXor:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithBXor
	case OpShl:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithShl
	case OpShr:
		lhs, rhs, kind = vm.reg(ci, b), vm.reg(ci, c), arithShr
	case OpAddK:
		lhs, rhs, kind = vm.reg(ci, b), vm.constant(cl, c), arithAdd
	case OpSubK:
		lhs, rhs, kind = vm.reg(ci, b), vm.constant(cl, c), arithSub
	case OpMulK:
		lhs, rhs, kind = vm.reg(ci, b), vm.constant(cl, c), arithMul
	default:
		return ErrInvalidOpcode
	}

	v, err := vm.arith(kind, lhs, rhs)
	if err != nil {
		return err
	}
	vm.setReg(ci, a, v)
	return nil
}

// stepCompare implements EQ/LT/LE. Per spec.md §4.5, each is "followed by
// a JMP; the k flag inverts the sense": when the comparison's truth value
// does not match k, the following JMP is skipped rather than taken.
func (vm *VM) stepCompare(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) error {
	a, b := int(instr.A()), int(instr.B())
	lhs, rhs := vm.reg(ci, a), vm.reg(ci, b)

	result, err := vm.compare(instr.Opcode(), lhs, rhs)
	if err != nil {
		return err
	}
	if result != instr.K() {
		ci.PC++ // skip the following JMP
	}
	return nil
}

func (vm *VM) compare(op Opcode, a, b value.Value) (bool, error) {
	switch op {
	case OpEq:
		if value.RawEquals(a, b) {
			return true, nil
		}
		if a.Kind() != value.KTable || b.Kind() != value.KTable {
			return false, nil
		}
		if mm, ok := vm.metamethod(a, mmEq); ok {
			v, err := vm.call1(mm, []value.Value{a, b})
			if err != nil {
				return false, err
			}
			return v.IsTruthy(), nil
		}
		return false, nil
	case OpLt:
		return vm.lessThan(a, b)
	case OpLe:
		return vm.lessEqual(a, b)
	default:
		return false, ErrInvalidOpcode
	}
}

func (vm *VM) lessThan(a, b value.Value) (bool, error) {
	if value.IsNumber(a) && value.IsNumber(b) {
		fa, _ := value.ToFloat(a)
		fb, _ := value.ToFloat(b)
		return fa < fb, nil
	}
	if a.Kind() == value.KString && b.Kind() == value.KString {
		return a.Object().(*value.String).String() < b.Object().(*value.String).String(), nil
	}
	if mm, ok := vm.metamethod(a, mmLt); ok {
		v, err := vm.call1(mm, []value.Value{a, b})
		return v.IsTruthy(), err
	}
	if mm, ok := vm.metamethod(b, mmLt); ok {
		v, err := vm.call1(mm, []value.Value{a, b})
		return v.IsTruthy(), err
	}
	return false, ErrWrongType
}

func (vm *VM) lessEqual(a, b value.Value) (bool, error) {
	if value.IsNumber(a) && value.IsNumber(b) {
		fa, _ := value.ToFloat(a)
		fb, _ := value.ToFloat(b)
		return fa <= fb, nil
	}
	if a.Kind() == value.KString && b.Kind() == value.KString {
		return a.Object().(*value.String).String() <= b.Object().(*value.String).String(), nil
	}
	if mm, ok := vm.metamethod(a, mmLe); ok {
		v, err := vm.call1(mm, []value.Value{a, b})
		return v.IsTruthy(), err
	}
	if mm, ok := vm.metamethod(b, mmLe); ok {
		v, err := vm.call1(mm, []value.Value{a, b})
		return v.IsTruthy(), err
	}
	return false, ErrWrongType
}

// spaceship implements a three-way compare built from lessThan, for
// OpSpaceship in extras_ops.go.
func (vm *VM) spaceship(a, b value.Value) (int64, error) {
	lt, err := vm.lessThan(a, b)
	if err != nil {
		return 0, err
	}
	if lt {
		return -1, nil
	}
	gt, err := vm.lessThan(b, a)
	if err != nil {
		return 0, err
	}
	if gt {
		return 1, nil
	}
	return 0, nil
}
