// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build !linux && !darwin

package jit

import "errors"

// ErrUnsupportedOS is returned by allocExecPage on platforms this package
// has no mmap/mprotect binding for. Compile treats this exactly like any
// other emission failure (spec.md §4.6: "there is no fatal condition").
var ErrUnsupportedOS = errors.New("jit: executable memory not supported on this OS")

func allocExecPage(code []byte) ([]byte, error) {
	return nil, ErrUnsupportedOS
}

func freeExecPage(mem []byte) error {
	return nil
}
