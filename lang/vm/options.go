// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import "github.com/oxenfxc/lxclua/lang/gc"

// Option configures a VM at construction time. No configuration files are
// read by this package (spec.md §6); every tunable is a functional option
// layered onto New, the same single-constructor-with-parameters shape the
// teacher's lang/vm/vm.New(code, constants, gasLimit) used, generalized to
// an options slice the way probeconfig layers config onto a base struct.
type Option func(*VM)

// WithGCMode selects the collector's incremental or generational strategy.
func WithGCMode(m gc.Mode) Option {
	return func(vm *VM) { vm.GC.SetMode(m) }
}

// WithGCThreshold overrides the collector's allocation-triggered cycle
// threshold, in bytes.
func WithGCThreshold(bytes uint64) Option {
	return func(vm *VM) { vm.GC.SetThreshold(bytes) }
}

// WithGCStepSize overrides how many objects one incremental Step call scans.
func WithGCStepSize(n int) Option {
	return func(vm *VM) { vm.GC.SetStepSize(n) }
}

// WithGasLimit bounds total gas consumption reported through ConsumeGas. A
// limit of 0 (the default) means unlimited.
func WithGasLimit(limit uint64) Option {
	return func(vm *VM) { vm.gasLimit = limit }
}

// GasLimit reports the configured gas budget, or 0 for unlimited.
func (vm *VM) GasLimit() uint64 { return vm.gasLimit }

// GasUsed reports cumulative gas consumed via ConsumeGas.
func (vm *VM) GasUsed() uint64 { return vm.gasUsed }

// ConsumeGas charges n units against the VM's gas budget, returning
// ErrOutOfGas once the limit is exceeded. Left uncalled by the
// interpreter's own dispatch loop (see the gasLimit field's doc comment);
// an embedder that wants metering calls this from its own GoFunc stdlib
// entries or from a JITCompile hook.
func (vm *VM) ConsumeGas(n uint64) error {
	if vm.gasLimit == 0 {
		return nil
	}
	vm.gasUsed += n
	if vm.gasUsed > vm.gasLimit {
		return ErrOutOfGas
	}
	return nil
}
