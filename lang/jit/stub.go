// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build !amd64 && !arm64

package jit

import "github.com/oxenfxc/lxclua/lang/vm"

// stubEmitter compiles nothing: every instruction barriers immediately.
// spec.md §4.6: "The backend has three sibling modules selected at build
// time: x86-64 ... ARM64, and a stub that compiles to no-ops." On
// unsupported GOARCH this keeps Compile's contract ("failure leaves
// jit_code null and the interpreter runs normally") true by construction
// rather than as a special case callers must detect.
type stubEmitter struct{}

func newArchEmitter() Emitter { return stubEmitter{} }

func (stubEmitter) Name() string { return "stub" }

func (stubEmitter) EmitPrologue(w *CodeWriter) {}
func (stubEmitter) EmitEpilogue(w *CodeWriter) {}

func (stubEmitter) EmitInstruction(w *CodeWriter, i vm.Instruction, pc int) bool {
	return false
}

func (stubEmitter) EmitBarrier(w *CodeWriter, pc int) {}

// savedPCOffset and completedSentinel mirror the amd64/arm64 backends'
// constants of the same name so cache.go's Invoke can read the saved-PC
// slot uniformly across architectures; the stub backend never writes
// either since it never emits a prologue, but Invoke's Lookup guard
// means callNative is never reached on this build anyway.
const savedPCOffset = 8
const completedSentinel = int32(-1)
