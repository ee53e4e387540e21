// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package integration provides RPC API methods for scripted contracts.
package integration

import (
	"context"
	"fmt"

	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/stdlib/chain"
	"github.com/oxenfxc/lxclua/stdlib/common"
)

// API provides RPC methods for deploying and calling scripted contracts.
// No third-party RPC framework is wired here: spec.md §1 scopes the
// transport layer itself out ("Non-goals ... network transport"), so
// this stays a plain method-set a host's own RPC server registers.
// Fields here use plain []byte/int64 rather than a hex-wrapped byte
// type, which encoding/json already renders as base64/number without
// help.
type API struct {
	interner *value.Interner
}

// NewAPI constructs an API bound to interner, the string table every
// decoded contract's prototype shares with its host VM.
func NewAPI(interner *value.Interner) *API {
	return &API{interner: interner}
}

// CallResult is the outcome of a simulated or committed contract call.
type CallResult struct {
	ReturnValues []int64 `json:"returnValues"`
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
}

// IsContract reports whether code carries the contract bytecode envelope.
func (api *API) IsContract(_ context.Context, code []byte) bool {
	return IsContract(code)
}

// SimulateCall decodes and runs a contract against state (storage writes
// the contract makes go through to state), without requiring the caller to construct a Contract/
// ExecutionContext pair by hand.
func (api *API) SimulateCall(_ context.Context, code []byte, caller common.Address, state chain.State) (*CallResult, error) {
	contract, err := DecodeContract(code, api.interner)
	if err != nil {
		return &CallResult{Success: false, Error: fmt.Sprintf("decode error: %v", err)}, nil
	}

	result, err := Execute(contract, &ExecutionContext{
		Tx:    &chain.Transaction{From: caller},
		State: state,
	})
	if err != nil {
		return &CallResult{Success: false, Error: err.Error()}, nil
	}

	return &CallResult{
		ReturnValues: intResults(result.ReturnValues),
		Success:      true,
	}, nil
}

// Version reports the runtime's version string.
func (api *API) Version(_ context.Context) string {
	return "0.1.0"
}

func intResults(vs []value.Value) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		if v.Kind() == value.KInt {
			out = append(out, v.AsInt())
		}
	}
	return out
}
