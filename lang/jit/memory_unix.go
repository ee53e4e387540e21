// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

//go:build linux || darwin

package jit

import "golang.org/x/sys/unix"

// allocExecPage obtains a page-sized (or larger, rounded up) anonymous
// mapping and copies code into it, then tightens permissions to
// read+execute (spec.md §4.6: "Executable memory is obtained in
// page-sized chunks with RWX protection and released with the owning
// prototype"). Mapping RW then switching to RX rather than mapping RWX
// directly avoids a window where the same page is simultaneously
// writable and executable.
func allocExecPage(code []byte) ([]byte, error) {
	size := pageAlign(len(code))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, err
	}
	return mem[:len(code)], nil
}

func freeExecPage(mem []byte) error {
	size := pageAlign(cap(mem))
	return unix.Munmap(mem[:size])
}

func pageAlign(n int) int {
	const pageSize = 4096
	return (n + pageSize - 1) / pageSize * pageSize
}
