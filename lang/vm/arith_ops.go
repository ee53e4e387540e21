// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"math"
	"strconv"

	"github.com/oxenfxc/lxclua/lang/value"
)

type arithKind uint8

const (
	arithAdd arithKind = iota
	arithSub
	arithMul
	arithDiv
	arithIDiv
	arithMod
	arithPow
	arithBAnd
	arithBOr
	arithBXor
	arithShl
	arithShr
)

var arithMetamethod = [...]string{
	arithAdd: mmAdd, arithSub: mmSub, arithMul: mmMul, arithDiv: mmDiv,
	arithIDiv: mmIDiv, arithMod: mmMod, arithPow: mmPow, arithBAnd: mmBAnd,
	arithBOr: mmBOr, arithBXor: mmBXor, arithShl: mmShl, arithShr: mmShr,
}

// arith implements spec.md §4.5's arithmetic family: "integer operations
// wrap; shifts are modulo bit-width with negative amounts meaning the
// opposite direction; division is float; integer division floors; modulus
// follows the divisor's sign", falling back to a metamethod when either
// operand is not coercible to a number.
func (vm *VM) arith(op arithKind, a, b value.Value) (value.Value, error) {
	na, aok := value.CoerceNumber(a)
	nb, bok := value.CoerceNumber(b)

	if aok && bok {
		switch op {
		case arithBAnd, arithBOr, arithBXor, arithShl, arithShr:
			return vm.bitwise(op, na, nb)
		}
		if na.Kind() == value.KInt && nb.Kind() == value.KInt &&
			op != arithDiv && op != arithPow {
			return vm.intArith(op, na.AsInt(), nb.AsInt())
		}
		fa, _ := value.ToFloat(na)
		fb, _ := value.ToFloat(nb)
		return vm.floatArith(op, fa, fb)
	}

	if mm, ok := vm.metamethod(a, arithMetamethod[op]); ok {
		return vm.call1(mm, []value.Value{a, b})
	}
	if mm, ok := vm.metamethod(b, arithMetamethod[op]); ok {
		return vm.call1(mm, []value.Value{a, b})
	}
	return value.Nil, ErrWrongType
}

func (vm *VM) intArith(op arithKind, a, b int64) (value.Value, error) {
	switch op {
	case arithAdd:
		return value.Int(a + b), nil
	case arithSub:
		return value.Int(a - b), nil
	case arithMul:
		return value.Int(a * b), nil
	case arithIDiv:
		if b == 0 {
			return value.Nil, ErrDivideByZero
		}
		return value.Int(value.FloorDivInt(a, b)), nil
	case arithMod:
		if b == 0 {
			return value.Nil, ErrDivideByZero
		}
		return value.Int(value.ModInt(a, b)), nil
	default:
		fa, fb := float64(a), float64(b)
		return vm.floatArith(op, fa, fb)
	}
}

func (vm *VM) floatArith(op arithKind, a, b float64) (value.Value, error) {
	switch op {
	case arithAdd:
		return value.Float(a + b), nil
	case arithSub:
		return value.Float(a - b), nil
	case arithMul:
		return value.Float(a * b), nil
	case arithDiv:
		return value.Float(a / b), nil
	case arithIDiv:
		return value.Float(value.FloorDivFloat(a, b)), nil
	case arithMod:
		return value.Float(value.ModFloat(a, b)), nil
	case arithPow:
		return value.Float(math.Pow(a, b)), nil
	default:
		return value.Nil, ErrWrongType
	}
}

// bitwise requires both operands to have exact integer representations,
// per Lua's bitwise-operand rule (a float must round-trip through int64).
func (vm *VM) bitwise(op arithKind, a, b value.Value) (value.Value, error) {
	ai, aok := exactInt(a)
	bi, bok := exactInt(b)
	if !aok || !bok {
		return value.Nil, ErrWrongType
	}
	switch op {
	case arithBAnd:
		return value.Int(ai & bi), nil
	case arithBOr:
		return value.Int(ai | bi), nil
	case arithBXor:
		return value.Int(ai ^ bi), nil
	case arithShl:
		return value.Int(shiftLeft(ai, bi)), nil
	case arithShr:
		return value.Int(shiftLeft(ai, -bi)), nil
	default:
		return value.Nil, ErrWrongType
	}
}

// shiftLeft implements Lua's modulo-bit-width shift where a negative
// amount shifts the other direction, and any |amount| >= 64 yields zero.
func shiftLeft(a, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) << uint(n))
	}
	return int64(uint64(a) >> uint(-n))
}

func exactInt(v value.Value) (int64, bool) {
	switch v.Kind() {
	case value.KInt:
		return v.AsInt(), true
	case value.KFloat:
		f := v.AsFloat()
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// unaryMinus, bitwiseNot, logicalNot, and length implement the unary family
// spec.md §4.5 lists alongside the binary arithmetic ops.

func (vm *VM) unaryMinus(v value.Value) (value.Value, error) {
	if n, ok := value.CoerceNumber(v); ok {
		if n.Kind() == value.KInt {
			return value.Int(-n.AsInt()), nil
		}
		return value.Float(-n.AsFloat()), nil
	}
	if mm, ok := vm.metamethod(v, mmUnm); ok {
		return vm.call1(mm, []value.Value{v, v})
	}
	return value.Nil, ErrWrongType
}

func (vm *VM) bitwiseNot(v value.Value) (value.Value, error) {
	if i, ok := exactInt(v); ok {
		return value.Int(^i), nil
	}
	if mm, ok := vm.metamethod(v, mmBNot); ok {
		return vm.call1(mm, []value.Value{v, v})
	}
	return value.Nil, ErrWrongType
}

func (vm *VM) length(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KString:
		return value.Int(int64(v.Object().(*value.String).Len())), nil
	case value.KTable:
		t := v.Object().(*value.Table)
		if mm, ok := t.HasMetamethod(vm.Strings, mmLen); ok {
			return vm.call1(mm, []value.Value{v})
		}
		return value.Int(t.Len()), nil
	default:
		return value.Nil, ErrNotIndexable
	}
}

// concat implements string/number concatenation with __concat fallback.
func (vm *VM) concat(a, b value.Value) (value.Value, error) {
	sa, aok := concatOperand(a)
	sb, bok := concatOperand(b)
	if aok && bok {
		buf := make([]byte, 0, len(sa)+len(sb))
		buf = append(buf, sa...)
		buf = append(buf, sb...)
		return value.NewString(vm.Strings, buf), nil
	}
	if mm, ok := vm.metamethod(a, mmConcat); ok {
		return vm.call1(mm, []value.Value{a, b})
	}
	if mm, ok := vm.metamethod(b, mmConcat); ok {
		return vm.call1(mm, []value.Value{a, b})
	}
	return value.Nil, ErrWrongType
}

func concatOperand(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KString:
		return v.Object().(*value.String).String(), true
	case value.KInt:
		return formatInt(v.AsInt()), true
	case value.KFloat:
		return formatFloat(v.AsFloat()), true
	default:
		return "", false
	}
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

// formatFloat follows Lua's default %.14g number-to-string rule.
func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', 14, 64) }
