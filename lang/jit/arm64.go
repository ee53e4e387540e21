// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build arm64

package jit

import "github.com/oxenfxc/lxclua/lang/vm"

// arm64Emitter targets AAPCS64: X0 holds the thread pointer, X1 the
// CallInfo pointer. Value slots are addressed through X19 (callee-saved,
// holds the CallInfo pointer across the function body) the same way the
// amd64 backend uses R12.
type arm64Emitter struct{}

func newArchEmitter() Emitter { return arm64Emitter{} }

func (arm64Emitter) Name() string { return "arm64" }

func (arm64Emitter) EmitPrologue(w *CodeWriter) {
	// stp x29, x30, [sp, #-32]!; mov x29, sp; str x19, [sp, #16]
	// (save the caller's x19 before clobbering it, paired with the
	// matching restore in EmitEpilogue -- AAPCS64 requires x19-x28 be
	// preserved across the call); mov x19, x1
	w.U32(0xa9be7bfd)
	w.U32(0x910003fd)
	w.U32(0xf9000bf3)
	w.U32(0xaa0103f3)
	emitARM64StoreSavedPC(w, completedSentinel)
}

func (arm64Emitter) EmitEpilogue(w *CodeWriter) {
	emitARM64EpilogueTail(w)
}

// emitARM64EpilogueTail restores x19 and the frame pointer/link register
// pair in reverse prologue order, then returns. Every exit out of
// compiled code shares this tail for the same reason the amd64 backend's
// emitAMD64EpilogueTail does: a bare "mov x0,#0; ret" unwinds nothing,
// leaving the caller's x19 and frame pointer clobbered.
func emitARM64EpilogueTail(w *CodeWriter) {
	w.U32(0xf9400bf3) // ldr x19, [sp, #16]
	w.U32(0xa8c27bfd) // ldp x29, x30, [sp], #32
	w.U32(0xd65f03c0) // ret
}

func (e arm64Emitter) EmitInstruction(w *CodeWriter, i vm.Instruction, pc int) bool {
	if !inlinable(i.Opcode()) {
		return false
	}
	switch i.Opcode() {
	case vm.OpMove:
		// ldr x2, [x19, #B*16]; str x2, [x19, #A*16]
		w.U32(0xf9400262 | uint32(i.B())*2<<10)
		w.U32(0xf9000262 | uint32(i.A())*2<<10)
	case vm.OpReturn0:
		emitARM64StoreSavedPC(w, completedSentinel)
		w.U32(0xd2800000) // mov x0, #0
		emitARM64EpilogueTail(w)
	case vm.OpReturn1:
		emitARM64StoreSavedPC(w, completedSentinel)
		// ldr x0, [x19, #A*16]
		w.U32(0xf9400260 | uint32(i.A())*2<<10)
		emitARM64EpilogueTail(w)
	default:
		return false
	}
	return true
}

func (arm64Emitter) EmitBarrier(w *CodeWriter, pc int) {
	// A general 32-bit pc doesn't fit AArch64's move-immediate encoding
	// in one instruction, so this backend assembles it as two 16-bit
	// halves (movz/movk) into w0 before storing -- worth the extra
	// instruction since the interpreter needs the real resume point, not
	// just "a barrier happened somewhere."
	emitARM64StoreSavedPC32(w, uint32(pc))
	w.U32(0xd2800000) // mov x0, #0
	emitARM64EpilogueTail(w)
}

// emitARM64StoreSavedPC writes the sentinel (always in [-1, 0] range in
// practice) into CallInfo's saved-PC slot through X19.
func emitARM64StoreSavedPC(w *CodeWriter, pc int32) {
	emitARM64StoreSavedPC32(w, uint32(pc))
}

// emitARM64StoreSavedPC32 assembles pc into W0 via movz/movk (low half,
// then high half) and stores it at [x19, #savedPCOffset].
func emitARM64StoreSavedPC32(w *CodeWriter, pc uint32) {
	lo := pc & 0xffff
	hi := (pc >> 16) & 0xffff
	w.U32(0x52800000 | (lo << 5)) // movz w0, #lo
	w.U32(0x72a00000 | (hi << 5)) // movk w0, #hi, lsl #16
	w.U32(0xb9000260 | uint32(savedPCOffset/4)<<10)
}

// savedPCOffset is the byte offset of CallInfo.PC within the struct the
// native trampoline receives; must stay numerically in step with the
// amd64 backend's constant of the same name, since both describe the
// same Go-side CallInfo layout.
const savedPCOffset = 8

// completedSentinel marks "ran to completion" in the saved-PC slot,
// distinguishing it from a real barrier pc the same way the amd64
// backend's constant of the same name does.
const completedSentinel = int32(-1)
