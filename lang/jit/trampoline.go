// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package jit

// callNative invokes a compiled native entry point directly, bridging
// Go's own calling convention to the target's C ABI -- System V AMD64
// (RDI/RSI, return in RAX) or AAPCS64 (X0/X1, return in X0), the exact
// pair ljit_emit_x64.h's and ljit_emit_arm64.h's prologues expect, and
// the same pair this package's own amd64Emitter/arm64Emitter prologues
// read. The return value is whatever the compiled body left in
// RAX/X0: nonzero only when the last write to CallInfo's saved-PC slot
// was completedSentinel (see amd64.go/arm64.go); the caller is expected
// to read that slot back to decide whether to resume interpreting, not
// to treat callNative's int32 alone as the completion signal, since
// RETURN1 legitimately returns zero as a value too.
//
// entry, thread, and ci are raw addresses, not Go pointers. callNative
// does no pointer-safety bookkeeping of its own -- exactly as a cgo call
// across this boundary would not -- so the caller must ensure whatever
// those addresses reference cannot move or be collected for the
// duration of the call. See Cache's package doc for why this keeps the
// trampoline's use narrow rather than wired into the interpreter's
// live, GC-managed register window.
func callNative(entry, thread, ci uintptr) int32
