// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package jit

import "github.com/oxenfxc/lxclua/lang/vm"

// Emitter is implemented by each architecture backend (amd64, arm64, and a
// no-op stub for unsupported GOOS/GOARCH combinations). Compile walks a
// prototype's instructions in order; an Emitter need not support every
// instruction it's shown — returning false leaves that instruction as a
// barrier and the interpreter resumes from it (spec.md §4.6: "update
// CallInfo.saved_pc ... return zero to the dispatcher").
type Emitter interface {
	// Name identifies the backend for diagnostics ("amd64", "arm64", "stub").
	Name() string

	// EmitPrologue/EmitEpilogue wrap the function body: establishing and
	// tearing down the native stack frame under the target's calling
	// convention (System V AMD64 / AAPCS64).
	EmitPrologue(w *CodeWriter)
	EmitEpilogue(w *CodeWriter)

	// EmitInstruction attempts to inline one bytecode instruction's native
	// equivalent. ok is false for anything this backend declines to
	// inline (spec.md §4.6's minimum inline set: MOVE, loads, table access
	// via runtime helpers, arithmetic/bitwise, unary arith, JMP, EQ/LT/LE
	// and immediate forms, TEST, CALL, RETURN0/RETURN1 — everything else
	// barriers by construction since ok defaults false).
	EmitInstruction(w *CodeWriter, i vm.Instruction, pc int) (ok bool)

	// EmitBarrier emits the trap-to-interpreter sequence for an
	// instruction this backend does not inline: write pc into the
	// reserved saved-PC slot and return zero.
	EmitBarrier(w *CodeWriter, pc int)
}

// inlinable reports whether op is one a backend may try to inline: moves
// and loads, arithmetic and bitwise operators, EQ/LT/LE, JMP, CALL, and
// RETURN0/RETURN1. Table access (GETTABLE/SETTABLE) is not in the set and
// always compiles to a barrier. Backends consult this before attempting EmitInstruction so the
// "barrier everything else" fallback is centralized rather than
// per-backend.
func inlinable(op vm.Opcode) bool {
	switch op {
	case vm.OpMove, vm.OpLoadInt, vm.OpLoadFloat, vm.OpLoadConst,
		vm.OpLoadNil, vm.OpLoadTrue, vm.OpLoadFalse, vm.OpLoadFalseSkip,
		vm.OpAdd, vm.OpSub, vm.OpMul, vm.OpDiv, vm.OpIDiv, vm.OpMod, vm.OpPow,
		vm.OpBAnd, vm.OpBOr, vm.OpBXor, vm.OpShl, vm.OpShr,
		vm.OpAddK, vm.OpSubK, vm.OpMulK, vm.OpUnm, vm.OpBNot, vm.OpNot,
		vm.OpEq, vm.OpLt, vm.OpLe, vm.OpJmp,
		vm.OpCall, vm.OpReturn0, vm.OpReturn1:
		return true
	default:
		return false
	}
}
