// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package chain provides blockchain-style execution context as a
// scripting-runtime standard library surface: block/transaction
// metadata and an injectable key-value State a host embeds its ledger
// behind. Addresses and hashes are surfaced to scripts as userdata
// wrapping stdlib/common's fixed-size value types (spec.md §1's
// "Third-party crypto ... primitives", generalized here to the
// execution-context values those primitives operate over).
package chain

import (
	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
	"github.com/oxenfxc/lxclua/stdlib/common"
)

// Block is the header context visible to a running script.
type Block struct {
	Number    uint64
	Timestamp uint64
	Hash      common.Hash
	Parent    common.Hash
	Validator common.Address
}

// Transaction is the calling transaction's context.
type Transaction struct {
	Hash     common.Hash
	From     common.Address
	To       common.Address
	Value    uint64
	GasPrice uint64
	GasLimit uint64
	Nonce    uint64
	Data     []byte
}

// State is the host-supplied ledger a script's chain.* calls read and
// write through. A host embedding the runtime implements State over
// whatever storage backs its own accounts; the stdlib surface never
// assumes a concrete store.
type State interface {
	GetBalance(addr common.Address) uint64
	SetBalance(addr common.Address, balance uint64)
	GetStorage(addr common.Address, key common.Hash) common.Hash
	SetStorage(addr common.Address, key, value common.Hash)
	GetCode(addr common.Address) []byte
	Exists(addr common.Address) bool
}

// Log is an event a script emits via chain.log.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Library binds a Block/Transaction/State triple to the Go closures
// registered as the globals' "chain" table.
type Library struct {
	Block *Block
	Tx    *Transaction
	State State
	Logs  []Log
}

func addressArg(args []value.Value, i int) (common.Address, bool) {
	if i >= len(args) {
		return common.Address{}, false
	}
	switch args[i].Kind() {
	case value.KUserdataFull:
		addr, ok := args[i].Object().(*value.Userdata).Payload.(common.Address)
		return addr, ok
	case value.KString:
		s, ok := args[i].Object().(*value.String)
		if !ok {
			return common.Address{}, false
		}
		addr, err := common.ParseAddress(string(s.Bytes()))
		return addr, err == nil
	default:
		return common.Address{}, false
	}
}

func addressValue(addr common.Address) value.Value {
	return value.FromObject(value.KUserdataFull, value.NewUserdata(addr, 0))
}

func hashValue(h common.Hash) value.Value {
	return value.FromObject(value.KUserdataFull, value.NewUserdata(h, 0))
}

func hashArg(args []value.Value, i int) (common.Hash, bool) {
	if i >= len(args) || args[i].Kind() != value.KUserdataFull {
		return common.Hash{}, false
	}
	h, ok := args[i].Object().(*value.Userdata).Payload.(common.Hash)
	return h, ok
}

// Register installs the "chain" library table into globals.
func (lib *Library) Register(globals *value.Table, interner *value.Interner) {
	tbl := value.NewTable(0, 12)

	bind := func(name string, fn proto.GoFunc) {
		tbl.Set(value.NewString(interner, []byte(name)), value.FromObject(value.KFunctionGo, proto.NewGoClosure(fn, 0)))
	}

	bind("blocknumber", func(args []value.Value) ([]value.Value, error) {
		if lib.Block == nil {
			return []value.Value{value.Int(0)}, nil
		}
		return []value.Value{value.Int(int64(lib.Block.Number))}, nil
	})
	bind("timestamp", func(args []value.Value) ([]value.Value, error) {
		if lib.Block == nil {
			return []value.Value{value.Int(0)}, nil
		}
		return []value.Value{value.Int(int64(lib.Block.Timestamp))}, nil
	})
	bind("validator", func(args []value.Value) ([]value.Value, error) {
		if lib.Block == nil {
			return []value.Value{value.Nil}, nil
		}
		return []value.Value{addressValue(lib.Block.Validator)}, nil
	})
	bind("caller", func(args []value.Value) ([]value.Value, error) {
		if lib.Tx == nil {
			return []value.Value{value.Nil}, nil
		}
		return []value.Value{addressValue(lib.Tx.From)}, nil
	})
	bind("callvalue", func(args []value.Value) ([]value.Value, error) {
		if lib.Tx == nil {
			return []value.Value{value.Int(0)}, nil
		}
		return []value.Value{value.Int(int64(lib.Tx.Value))}, nil
	})
	bind("address", func(args []value.Value) ([]value.Value, error) {
		if lib.Tx == nil {
			return []value.Value{value.Nil}, nil
		}
		return []value.Value{addressValue(lib.Tx.To)}, nil
	})
	bind("balance", func(args []value.Value) ([]value.Value, error) {
		addr, ok := addressArg(args, 0)
		if !ok || lib.State == nil {
			return []value.Value{value.Int(0)}, nil
		}
		return []value.Value{value.Int(int64(lib.State.GetBalance(addr)))}, nil
	})
	bind("exists", func(args []value.Value) ([]value.Value, error) {
		addr, ok := addressArg(args, 0)
		if !ok || lib.State == nil {
			return []value.Value{value.Bool(false)}, nil
		}
		return []value.Value{value.Bool(lib.State.Exists(addr))}, nil
	})
	bind("sload", func(args []value.Value) ([]value.Value, error) {
		addr, ok := addressArg(args, 0)
		key, ok2 := hashArg(args, 1)
		if !ok || !ok2 || lib.State == nil {
			return []value.Value{value.Nil}, nil
		}
		return []value.Value{hashValue(lib.State.GetStorage(addr, key))}, nil
	})
	bind("sstore", func(args []value.Value) ([]value.Value, error) {
		addr, ok := addressArg(args, 0)
		key, ok2 := hashArg(args, 1)
		val, ok3 := hashArg(args, 2)
		if ok && ok2 && ok3 && lib.State != nil {
			lib.State.SetStorage(addr, key, val)
		}
		return nil, nil
	})
	bind("log", func(args []value.Value) ([]value.Value, error) {
		addr, _ := addressArg(args, 0)
		var topics []common.Hash
		for i := 1; i < len(args); i++ {
			if h, ok := hashArg(args, i); ok {
				topics = append(topics, h)
			}
		}
		lib.Logs = append(lib.Logs, Log{Address: addr, Topics: topics})
		return nil, nil
	})

	globals.Set(value.NewString(interner, []byte("chain")), value.FromObject(value.KTable, tbl))
}
