// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package chain

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/stdlib/common"
)

type fakeState struct {
	balances map[common.Address]uint64
}

func (s *fakeState) GetBalance(addr common.Address) uint64    { return s.balances[addr] }
func (s *fakeState) SetBalance(addr common.Address, v uint64) { s.balances[addr] = v }
func (s *fakeState) GetStorage(common.Address, common.Hash) common.Hash { return common.Hash{} }
func (s *fakeState) SetStorage(common.Address, common.Hash, common.Hash) {}
func (s *fakeState) GetCode(common.Address) []byte                     { return nil }
func (s *fakeState) Exists(addr common.Address) bool {
	_, ok := s.balances[addr]
	return ok
}

func callGlobal(t *testing.T, globals *value.Table, interner *value.Interner, libName, fnName string, args []value.Value) []value.Value {
	t.Helper()
	libVal := globals.Get(value.NewString(interner, []byte(libName)))
	tbl := libVal.Object().(*value.Table)
	fnVal := tbl.Get(value.NewString(interner, []byte(fnName)))
	cl := fnVal.Object().(*proto.Closure)
	results, err := cl.Go(args)
	if err != nil {
		t.Fatalf("%s.%s: %v", libName, fnName, err)
	}
	return results
}

func TestRegisterExposesBlockAndTxFields(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)

	addr := common.BytesToAddress([]byte{1, 2, 3})
	lib := &Library{
		Block: &Block{Number: 42, Timestamp: 1000},
		Tx:    &Transaction{From: addr, Value: 7},
	}
	lib.Register(globals, interner)

	if got := callGlobal(t, globals, interner, "chain", "blocknumber", nil); got[0].AsInt() != 42 {
		t.Fatalf("blocknumber = %d, want 42", got[0].AsInt())
	}
	if got := callGlobal(t, globals, interner, "chain", "callvalue", nil); got[0].AsInt() != 7 {
		t.Fatalf("callvalue = %d, want 7", got[0].AsInt())
	}
}

func TestBalanceReadsThroughState(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)

	addr := common.BytesToAddress([]byte{9, 9, 9})
	state := &fakeState{balances: map[common.Address]uint64{addr: 500}}
	lib := &Library{State: state}
	lib.Register(globals, interner)

	got := callGlobal(t, globals, interner, "chain", "balance", []value.Value{addressValue(addr)})
	if got[0].AsInt() != 500 {
		t.Fatalf("balance = %d, want 500", got[0].AsInt())
	}
}

func TestLogAccumulatesEntries(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)

	addr := common.BytesToAddress([]byte{1})
	lib := &Library{}
	lib.Register(globals, interner)

	callGlobal(t, globals, interner, "chain", "log", []value.Value{addressValue(addr)})
	if len(lib.Logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(lib.Logs))
	}
	if lib.Logs[0].Address != addr {
		t.Fatalf("logged address mismatch")
	}
}
