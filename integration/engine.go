// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package integration bridges the scripting runtime with a host chain:
// decoding a deployed contract's bytecode envelope, wiring the chain
// standard library against host-supplied block/transaction/state
// context, and running the contract to completion.
package integration

import (
	"errors"
	"fmt"

	"github.com/oxenfxc/lxclua/lang/dump"
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
	"github.com/oxenfxc/lxclua/stdlib/chain"
	"github.com/oxenfxc/lxclua/stdlib/common"
	stdjson "github.com/oxenfxc/lxclua/stdlib/json"
	stdmath "github.com/oxenfxc/lxclua/stdlib/math"
)

var (
	// ErrInvalidBytecode is returned when a contract envelope fails to
	// decode (bad magic or a malformed dump.Undump payload).
	ErrInvalidBytecode = errors.New("integration: invalid contract bytecode")
	// ErrExecutionFailed is returned when the VM raises an error while
	// running a contract to completion.
	ErrExecutionFailed = errors.New("integration: contract execution failed")
)

// MagicPrefix identifies a dumped prototype wrapped for on-chain storage,
// distinguishing it from any other bytecode format a host might route
// through the same storage slot.
var MagicPrefix = []byte{0x50, 0x52, 0x42, 0x45} // "PRBE"

// Contract is a deployed script, already compiled to a dump.Undump-able
// Proto.
type Contract struct {
	Address common.Address
	Proto   *proto.Proto
}

// ExecutionContext supplies the block/transaction/ledger context a
// running contract observes through the "chain" standard library.
type ExecutionContext struct {
	Block *chain.Block
	Tx    *chain.Transaction
	State chain.State
}

// ExecutionResult is a completed contract run's outcome.
type ExecutionResult struct {
	ReturnValues []value.Value
	Logs         []chain.Log
	Success      bool
}

// IsContract reports whether raw begins with MagicPrefix.
func IsContract(raw []byte) bool {
	if len(raw) < len(MagicPrefix) {
		return false
	}
	for i, b := range MagicPrefix {
		if raw[i] != b {
			return false
		}
	}
	return true
}

// DecodeContract strips MagicPrefix and undumps the remainder as a
// compiled prototype.
func DecodeContract(raw []byte, interner *value.Interner) (*Contract, error) {
	if !IsContract(raw) {
		return nil, ErrInvalidBytecode
	}
	p, err := dump.Undump(raw[len(MagicPrefix):], interner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBytecode, err)
	}
	return &Contract{Proto: p}, nil
}

// EncodeContract wraps a compiled prototype's dump for on-chain storage.
func EncodeContract(p *proto.Proto) []byte {
	out := make([]byte, 0, len(MagicPrefix))
	out = append(out, MagicPrefix...)
	out = append(out, dump.Dump(p)...)
	return out
}

// Execute runs contract's entry prototype to completion inside a fresh
// VM instance, with the "chain", "math", and "json" standard libraries
// wired against ctx. Each deployment gets its own VM rather than sharing
// one across calls, since a contract's globals table is not meant to
// persist state between transactions — the ledger behind State is.
func Execute(contract *Contract, ctx *ExecutionContext) (*ExecutionResult, error) {
	v := vm.New()

	lib := &chain.Library{State: ctx.State, Block: ctx.Block, Tx: ctx.Tx}
	lib.Register(v.Globals, v.Strings)
	stdmath.Register(v.Globals, v.Strings)
	stdjson.Register(v.Globals, v.Strings)

	cl := proto.NewLuaClosure(contract.Proto)
	results, err := v.Call(cl, nil, -1)

	result := &ExecutionResult{
		ReturnValues: results,
		Logs:         lib.Logs,
		Success:      err == nil,
	}
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}
	return result, nil
}
