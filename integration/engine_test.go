// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package integration

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/lang/vm"
	"github.com/oxenfxc/lxclua/stdlib/chain"
	"github.com/oxenfxc/lxclua/stdlib/common"
)

// constantReturnProto compiles to: return 42.
func constantReturnProto() *proto.Proto {
	return &proto.Proto{
		Source: "contract.lx",
		Code: []uint32{
			uint32(vm.EncodeABC(vm.OpLoadConst, 0, 0, 0)),
			uint32(vm.EncodeABC(vm.OpReturn1, 0, 0, 0)),
		},
		Constants: []value.Value{value.Int(42)},
		MaxStack:  1,
	}
}

type fakeChainState struct {
	balances map[common.Address]uint64
}

func (s *fakeChainState) GetBalance(addr common.Address) uint64    { return s.balances[addr] }
func (s *fakeChainState) SetBalance(addr common.Address, v uint64) { s.balances[addr] = v }
func (s *fakeChainState) GetStorage(common.Address, common.Hash) common.Hash { return common.Hash{} }
func (s *fakeChainState) SetStorage(common.Address, common.Hash, common.Hash) {}
func (s *fakeChainState) GetCode(common.Address) []byte { return nil }
func (s *fakeChainState) Exists(common.Address) bool     { return false }

func TestEncodeDecodeContractRoundTrip(t *testing.T) {
	p := constantReturnProto()
	raw := EncodeContract(p)

	if !IsContract(raw) {
		t.Fatalf("encoded contract should carry the magic prefix")
	}

	interner := value.NewInterner()
	contract, err := DecodeContract(raw, interner)
	if err != nil {
		t.Fatalf("DecodeContract: %v", err)
	}
	if contract.Proto.Source != p.Source {
		t.Fatalf("Source = %q, want %q", contract.Proto.Source, p.Source)
	}
}

func TestDecodeContractRejectsMissingMagic(t *testing.T) {
	interner := value.NewInterner()
	_, err := DecodeContract([]byte("not a contract"), interner)
	if err == nil {
		t.Fatalf("expected ErrInvalidBytecode")
	}
}

func TestExecuteRunsContractAndReturnsValue(t *testing.T) {
	p := constantReturnProto()
	contract := &Contract{Proto: p}

	state := &fakeChainState{balances: map[common.Address]uint64{}}
	result, err := Execute(contract, &ExecutionContext{
		Block: &chain.Block{Number: 10},
		Tx:    &chain.Transaction{Value: 5},
		State: state,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}
	if len(result.ReturnValues) != 1 || result.ReturnValues[0].AsInt() != 42 {
		t.Fatalf("ReturnValues = %v, want [42]", result.ReturnValues)
	}
}
