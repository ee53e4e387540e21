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

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// step executes a single decoded instruction against ci/cl. It returns
// (results, true, nil) on a RETURN family opcode, or (nil, false, err) on
// error; otherwise (nil, false, nil) to continue the loop in vm.run.
func (vm *VM) step(ci *proto.CallInfo, cl *proto.Closure, instr Instruction) ([]value.Value, bool, error) {
	t := vm.current
	a := int(instr.A())

	switch instr.Opcode() {

	// ---- move & loads ----------------------------------------------------
	case OpMove:
		vm.setReg(ci, a, vm.reg(ci, int(instr.B())))
	case OpLoadInt:
		vm.setReg(ci, a, value.Int(int64(instr.SBx())))
	case OpLoadFloat:
		vm.setReg(ci, a, value.Float(float64(instr.SBx())))
	case OpLoadConst:
		vm.setReg(ci, a, vm.constant(cl, int(instr.Bx())))
	case OpLoadNil:
		n := int(instr.B())
		for i := 0; i <= n; i++ {
			vm.setReg(ci, a+i, value.Nil)
		}
	case OpLoadTrue:
		vm.setReg(ci, a, value.True)
	case OpLoadFalse:
		vm.setReg(ci, a, value.False)
	case OpLoadFalseSkip:
		vm.setReg(ci, a, value.False)
		ci.PC++

	// ---- upvalues ----------------------------------------------------
	case OpGetUpval:
		vm.setReg(ci, a, cl.Upvals[instr.B()].Get())
	case OpSetUpval:
		cl.Upvals[instr.B()].Set(vm.reg(ci, a))
	case OpGetTabUp:
		uv := cl.Upvals[instr.B()]
		if uv.Get().Kind() != value.KTable {
			return nil, false, ErrNotIndexable
		}
		key := vm.constant(cl, int(instr.C()))
		v, err := vm.index(uv.Get(), key)
		if err != nil {
			return nil, false, err
		}
		vm.setReg(ci, a, v)

	// ---- table access, arithmetic, comparisons delegated -------------
	case OpGetTable, OpSetTable, OpGetI, OpSetI, OpGetField, OpSetField,
		OpSelf, OpNewTable, OpSetList:
		return nil, false, vm.stepTable(ci, cl, instr)

	case OpAdd, OpSub, OpMul, OpDiv, OpIDiv, OpMod, OpPow, OpBAnd, OpBOr,
		OpBXor, OpShl, OpShr, OpAddK, OpSubK, OpMulK, OpUnm, OpBNot, OpNot,
		OpLen, OpConcat:
		return nil, false, vm.stepArith(ci, cl, instr)

	case OpEq, OpLt, OpLe:
		return nil, false, vm.stepCompare(ci, cl, instr)

	// ---- control -------------------------------------------------------
	case OpJmp:
		ci.PC += int(instr.SBx())
	case OpForPrep:
		return nil, false, vm.forPrep(ci, instr)
	case OpForLoop:
		return nil, false, vm.forLoop(ci, instr)
	case OpTForPrep:
		ci.PC += int(instr.SBx())
	case OpTForCall:
		return nil, false, vm.tForCall(ci, instr)
	case OpTForLoop:
		return nil, false, vm.tForLoop(ci, instr)
	case OpTBC:
		ci.MarkTBC(a)
	case OpClose:
		t.CloseUpvaluesFrom(ci.Base + a)
		return nil, false, vm.runCloseHandlers(ci, ci.Base+a)

	// ---- calls -----------------------------------------------------
	case OpCall:
		return nil, false, vm.stepCall(ci, instr)
	case OpTailCall:
		results, err := vm.stepTailCall(ci, instr)
		return results, err == nil, err
	case OpReturn:
		return vm.stepReturn(ci, instr), true, nil
	case OpReturn0:
		return nil, true, nil
	case OpReturn1:
		return []value.Value{vm.reg(ci, a)}, true, nil
	case OpVarargPrep:
		// parameter/vararg split already performed in vm.run; nothing to do.
	case OpVararg:
		n := int(instr.B())
		if n == 0 {
			for i, v := range ci.Varargs {
				vm.setReg(ci, a+i, v)
			}
		} else {
			for i := 0; i < n-1; i++ {
				if i < len(ci.Varargs) {
					vm.setReg(ci, a+i, ci.Varargs[i])
				} else {
					vm.setReg(ci, a+i, value.Nil)
				}
			}
		}

	// ---- closures ----------------------------------------------------
	case OpClosure:
		vm.setReg(ci, a, vm.makeClosure(ci, cl, int(instr.Bx())))

	// ---- OOP family --------------------------------------------------
	case OpNewClass, OpInherit, OpSetMethod, OpSetStatic, OpNewObj, OpGetProp,
		OpSetProp, OpInstanceOf, OpImplement, OpGetSuper, OpAddMethod,
		OpNewConcept, OpNewNamespace, OpLinkNamespace:
		return nil, false, vm.stepOOP(ci, cl, instr)

	// ---- extras -------------------------------------------------------
	case OpSpaceship, OpIn, OpSlice, OpIs, OpTestNil, OpErrNNil, OpNop,
		OpCase, OpSetIfaceFlag:
		return nil, false, vm.stepExtras(ci, cl, instr)

	default:
		return nil, false, ErrInvalidOpcode
	}
	return nil, false, nil
}

// makeClosure builds a new Lua closure over nested prototype idx,
// populating its upvalues per the descriptor arrays on the parent
// prototype (spec.md §4.5: "capture upvalues per a descriptor table").
func (vm *VM) makeClosure(ci *proto.CallInfo, parent *proto.Closure, idx int) value.Value {
	child := parent.Proto.Protos[idx]
	nc := proto.NewLuaClosure(child)
	vm.GC.Allocate(nc)
	for i := range child.UpvalIndex {
		if child.UpvalInStack[i] {
			nc.Upvals[i] = vm.current.FindOrCreateUpvalue(ci.Base + child.UpvalIndex[i])
		} else {
			nc.Upvals[i] = parent.Upvals[child.UpvalIndex[i]]
		}
	}
	return value.FromObject(value.KFunctionLua, nc)
}

// stepCall implements CALL: registers A (function) through A+B-1 (args),
// results land back at A..A+C-2.
func (vm *VM) stepCall(ci *proto.CallInfo, instr Instruction) error {
	a, b, c := int(instr.A()), int(instr.B()), int(instr.C())
	fn := vm.reg(ci, a)
	var args []value.Value
	if b == 0 {
		args = vm.regsFrom(ci, a+1)
	} else {
		for i := 0; i < b-1; i++ {
			args = append(args, vm.reg(ci, a+1+i))
		}
	}
	nresults := c - 1
	results, err := vm.callValue(fn, args, nresults)
	if err != nil {
		return err
	}
	for i := range results {
		if nresults >= 0 && i >= nresults {
			break
		}
		vm.setReg(ci, a+i, results[i])
	}
	for i := len(results); nresults >= 0 && i < nresults; i++ {
		vm.setReg(ci, a+i, value.Nil)
	}
	return nil
}

// stepTailCall reuses the caller's frame (spec.md §4.4: "tailcall reuses
// the caller's frame"); this interpreter approximates that by running the
// call normally and returning its results directly as the current frame's
// return values, which preserves observable semantics at the cost of not
// bounding Go call-stack growth the way a true tail call would.
func (vm *VM) stepTailCall(ci *proto.CallInfo, instr Instruction) ([]value.Value, error) {
	a, b := int(instr.A()), int(instr.B())
	fn := vm.reg(ci, a)
	var args []value.Value
	if b == 0 {
		args = vm.regsFrom(ci, a+1)
	} else {
		for i := 0; i < b-1; i++ {
			args = append(args, vm.reg(ci, a+1+i))
		}
	}
	return vm.callValue(fn, args, -1)
}

func (vm *VM) stepReturn(ci *proto.CallInfo, instr Instruction) []value.Value {
	a, b := int(instr.A()), int(instr.B())
	if b == 0 {
		return vm.regsFrom(ci, a)
	}
	out := make([]value.Value, b-1)
	for i := range out {
		out[i] = vm.reg(ci, a+i)
	}
	return out
}

// regsFrom collects every register from a to the frame's current top, the
// "B==0 means up to top" convention CALL/RETURN/VARARG share.
func (vm *VM) regsFrom(ci *proto.CallInfo, a int) []value.Value {
	t := vm.current
	n := t.Top() - (ci.Base + a)
	if n <= 0 {
		return nil
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = vm.reg(ci, a+i)
	}
	return out
}

// forPrep and forLoop implement the numeric for loop's integer fast path
// when step/limit are exact integers, falling back to float otherwise
// (spec.md §4.5).
func (vm *VM) forPrep(ci *proto.CallInfo, instr Instruction) error {
	a := int(instr.A())
	init, limit, step := vm.reg(ci, a), vm.reg(ci, a+1), vm.reg(ci, a+2)
	if init.Kind() != value.KInt || limit.Kind() != value.KInt || step.Kind() != value.KInt {
		fi, ok1 := value.ToFloat(init)
		fl, ok2 := value.ToFloat(limit)
		fs, ok3 := value.ToFloat(step)
		if !ok1 || !ok2 || !ok3 {
			return ErrWrongType
		}
		vm.setReg(ci, a, value.Float(fi))
		vm.setReg(ci, a+1, value.Float(fl))
		vm.setReg(ci, a+2, value.Float(fs))
		vm.setReg(ci, a+3, value.Float(fi))
	} else {
		vm.setReg(ci, a+3, init)
	}
	if willLoopZeroTimes(vm.reg(ci, a), vm.reg(ci, a+1), vm.reg(ci, a+2)) {
		ci.PC += int(instr.SBx())
	}
	return nil
}

func willLoopZeroTimes(init, limit, step value.Value) bool {
	if init.Kind() == value.KInt {
		s := step.AsInt()
		if s > 0 {
			return init.AsInt() > limit.AsInt()
		}
		return init.AsInt() < limit.AsInt()
	}
	s := step.AsFloat()
	if s > 0 {
		return init.AsFloat() > limit.AsFloat()
	}
	return init.AsFloat() < limit.AsFloat()
}

func (vm *VM) forLoop(ci *proto.CallInfo, instr Instruction) error {
	a := int(instr.A())
	limit, step, ctrl := vm.reg(ci, a+1), vm.reg(ci, a+2), vm.reg(ci, a+3)
	if ctrl.Kind() == value.KInt {
		next := ctrl.AsInt() + step.AsInt()
		cont := next <= limit.AsInt()
		if step.AsInt() < 0 {
			cont = next >= limit.AsInt()
		}
		if cont {
			vm.setReg(ci, a+3, value.Int(next))
			vm.setReg(ci, a, value.Int(next))
			ci.PC += int(instr.SBx())
		}
		return nil
	}
	next := ctrl.AsFloat() + step.AsFloat()
	cont := next <= limit.AsFloat()
	if step.AsFloat() < 0 {
		cont = next >= limit.AsFloat()
	}
	if cont && !math.IsNaN(next) {
		vm.setReg(ci, a+3, value.Float(next))
		vm.setReg(ci, a, value.Float(next))
		ci.PC += int(instr.SBx())
	}
	return nil
}

// tForCall and tForLoop implement the generic for loop's iterator
// protocol: (state, control) -> next control plus values (spec.md §4.5).
func (vm *VM) tForCall(ci *proto.CallInfo, instr Instruction) error {
	a, c := int(instr.A()), int(instr.C())
	iter := vm.reg(ci, a)
	state := vm.reg(ci, a+1)
	control := vm.reg(ci, a+2)
	results, err := vm.callValue(iter, []value.Value{state, control}, c)
	if err != nil {
		return err
	}
	for i := 0; i < c; i++ {
		if i < len(results) {
			vm.setReg(ci, a+3+i, results[i])
		} else {
			vm.setReg(ci, a+3+i, value.Nil)
		}
	}
	return nil
}

func (vm *VM) tForLoop(ci *proto.CallInfo, instr Instruction) error {
	a := int(instr.A())
	first := vm.reg(ci, a+3)
	if first.IsNil() {
		return nil
	}
	vm.setReg(ci, a+2, first)
	ci.PC += int(instr.SBx())
	return nil
}

// runCloseHandlers invokes __close (in reverse declaration order) for
// every TBC slot at or above floor, per luaF_close (spec.md §4.3).
func (vm *VM) runCloseHandlers(ci *proto.CallInfo, floor int) error {
	for {
		reg, ok := ci.PopTBC(floor - ci.Base)
		if !ok {
			return nil
		}
		v := vm.reg(ci, reg)
		if v.IsNil() || v.Kind() == value.KFalse {
			continue
		}
		if mm, ok := vm.metamethod(v, mmClose); ok {
			if _, err := vm.call1(mm, []value.Value{v, value.Nil}); err != nil {
				return err
			}
		}
	}
}
