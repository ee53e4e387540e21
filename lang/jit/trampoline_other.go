// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build !amd64 && !arm64

package jit

// callNative on an architecture stubEmitter covers never actually runs:
// Cache.Compile on this build never produces a page for allocExecPage to
// protect executable, so Invoke's Lookup guard rejects every call before
// reaching here. Kept so the package builds uniformly across GOARCH.
func callNative(entry, thread, ci uintptr) int32 {
	return 0
}
