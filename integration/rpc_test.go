// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package integration

import (
	"context"
	"testing"

	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/stdlib/common"
)

func TestAPIIsContractDelegatesToPackageFunc(t *testing.T) {
	api := NewAPI(value.NewInterner())
	raw := EncodeContract(constantReturnProto())
	if !api.IsContract(context.Background(), raw) {
		t.Fatalf("expected IsContract to recognize an encoded contract")
	}
}

func TestAPISimulateCallRunsDecodedContract(t *testing.T) {
	interner := value.NewInterner()
	api := NewAPI(interner)
	raw := EncodeContract(constantReturnProto())

	state := &fakeChainState{balances: map[common.Address]uint64{}}
	result, err := api.SimulateCall(context.Background(), raw, common.Address{}, state)
	if err != nil {
		t.Fatalf("SimulateCall: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if len(result.ReturnValues) != 1 || result.ReturnValues[0] != 42 {
		t.Fatalf("ReturnValues = %v, want [42]", result.ReturnValues)
	}
}

func TestAPISimulateCallReportsDecodeError(t *testing.T) {
	api := NewAPI(value.NewInterner())
	result, err := api.SimulateCall(context.Background(), []byte("garbage"), common.Address{}, nil)
	if err != nil {
		t.Fatalf("SimulateCall should not return a Go error for a decode failure: %v", err)
	}
	if result.Success {
		t.Fatalf("expected Success=false for undecodable bytecode")
	}
}
