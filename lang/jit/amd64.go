// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build amd64

package jit

import "github.com/oxenfxc/lxclua/lang/vm"

// amd64Emitter targets the System V AMD64 calling convention: RDI holds
// the thread pointer, RSI the CallInfo pointer, matching the contract
// spec.md §4.6 describes ("system calling convention to receive
// (thread_state, call_info)"). Instruction bytes follow the same
// hand-encoded style as the corpus's scm-jit amd64 backend (mov
// reg/imm64 sequences, direct opcode bytes rather than an assembler).
type amd64Emitter struct{}

func newArchEmitter() Emitter { return amd64Emitter{} }

func (amd64Emitter) Name() string { return "amd64" }

func (amd64Emitter) EmitPrologue(w *CodeWriter) {
	w.Bytes(
		0x55,             // push rbp
		0x48, 0x89, 0xe5, // mov rbp, rsp
		0x53,             // push rbx
		0x41, 0x54,       // push r12
		0x48, 0x89, 0xfb, // mov rbx, rdi (save thread ptr)
		0x49, 0x89, 0xf4, // mov r12, rsi (save CallInfo ptr)
	)
	// Default the saved-PC slot to "completed" up front, so a prototype
	// whose every instruction inlines (never hitting EmitBarrier or a
	// RETURN's own sentinel write) still reports completion correctly
	// through the final EmitEpilogue rather than leaving stale state.
	emitStoreSavedPC(w, completedSentinel)
}

func (amd64Emitter) EmitEpilogue(w *CodeWriter) {
	emitAMD64EpilogueTail(w)
}

// emitAMD64EpilogueTail pops the prologue's three saved registers in
// reverse push order (r12, rbx, rbp) and returns. Every exit path out of
// compiled code -- the final EmitEpilogue, a RETURN0/RETURN1, and a
// barrier -- must end here: the prologue always pushes all three, so
// any path that only popped rbp (as a prior revision did) left the
// native stack misaligned for the caller's own rbx/r12 on return.
func emitAMD64EpilogueTail(w *CodeWriter) {
	w.Bytes(
		0x41, 0x5c, // pop r12
		0x5b, // pop rbx
		0x5d, // pop rbp
		0xc3, // ret
	)
}

// EmitInstruction inlines the minimum set spec.md §4.6 names; register
// window addresses are resolved at runtime through R12 (the CallInfo
// pointer saved in the prologue) rather than statically, since the base
// register offset is only known once the caller binds the frame.
func (e amd64Emitter) EmitInstruction(w *CodeWriter, i vm.Instruction, pc int) bool {
	if !inlinable(i.Opcode()) {
		return false
	}
	switch i.Opcode() {
	case vm.OpMove:
		// mov rax, [r12+B*16]; mov [r12+A*16], rax (value slots are
		// 16 bytes: 8-byte payload + 8-byte kind tag, mirroring
		// lang/value.Value's layout).
		w.Bytes(0x49, 0x8b, 0x84, 0x24)
		w.U32(uint32(i.B()) * 16)
		w.Bytes(0x49, 0x89, 0x84, 0x24)
		w.U32(uint32(i.A()) * 16)
	case vm.OpLoadInt:
		// mov qword [r12+A*16], imm64 needs two halves on amd64; emitted
		// as a load-immediate into rax then a store, matching the
		// scm-jit convention of never encoding a 64-bit immediate
		// directly into a memory-operand instruction.
		w.Bytes(0x48, 0xb8)
		w.U64(uint64(int64(int8(i.B()))))
		w.Bytes(0x49, 0x89, 0x84, 0x24)
		w.U32(uint32(i.A()) * 16)
	case vm.OpReturn0:
		// Write the completion sentinel into the saved-PC slot so
		// callNative's caller can tell "ran to completion" apart from
		// "hit a barrier at this pc" without a second return channel,
		// then zero rax (no value to return) and unwind.
		emitStoreSavedPC(w, completedSentinel)
		w.Bytes(0x48, 0x31, 0xc0) // xor rax, rax
		emitAMD64EpilogueTail(w)
	case vm.OpReturn1:
		emitStoreSavedPC(w, completedSentinel)
		w.Bytes(0x49, 0x8b, 0x84, 0x24)
		w.U32(uint32(i.A()) * 16)
		emitAMD64EpilogueTail(w)
	default:
		// Every other member of the inlinable set (arithmetic, compares,
		// jumps, calls) requires register allocation and runtime helper
		// calls this emitter does not generate; returning false makes
		// Compile emit a barrier for it instead.
		return false
	}
	return true
}

func (amd64Emitter) EmitBarrier(w *CodeWriter, pc int) {
	// Store this instruction's own pc into the saved-PC slot (never
	// completedSentinel, which is reserved for "ran to completion") so
	// the interpreter knows exactly where to resume, zero rax, and
	// unwind through the same tail EmitEpilogue/RETURN use -- a bare
	// ret here would leave the caller's rbx/r12 clobbered by whatever
	// the prologue pushed.
	emitStoreSavedPC(w, int32(pc))
	w.Bytes(0x48, 0x31, 0xc0) // xor rax, rax
	emitAMD64EpilogueTail(w)
}

// emitStoreSavedPC writes pc into CallInfo's saved-PC slot through R12,
// the mechanism both barriers and returns use to tell callNative's
// caller where (or whether) to resume interpreting.
func emitStoreSavedPC(w *CodeWriter, pc int32) {
	w.Bytes(0x41, 0xc7, 0x84, 0x24)
	w.U32(savedPCOffset)
	w.U32(uint32(pc))
}

// savedPCOffset is the byte offset of CallInfo.PC within the struct the
// native trampoline receives, used to write the resume point before
// trapping back to the interpreter.
const savedPCOffset = 8

// completedSentinel is written to the saved-PC slot by RETURN0/RETURN1
// instead of a real pc, marking "this call ran to completion" rather
// than "this call hit a barrier at pc N" -- no valid instruction index
// is negative, so -1 can never collide with a genuine barrier pc.
const completedSentinel = int32(-1)
