// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package math

import (
	stdmath "math"
	"math/rand"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

// argFloat coerces an argument to a float64, defaulting to 0 when absent
// or non-numeric.
func argFloat(args []value.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	switch args[i].Kind() {
	case value.KInt:
		return float64(args[i].AsInt())
	case value.KFloat:
		return args[i].AsFloat()
	default:
		return 0
	}
}

// Register installs the "math" library table into globals: the standard
// floor/ceil/sqrt/abs/min/max/huge/pi/random/tointeger surface. The
// package's U64Array helpers (Iota, Sum, Dot) are not bound into the table.
func Register(globals *value.Table, interner *value.Interner) {
	tbl := value.NewTable(0, 16)

	bind := func(name string, fn proto.GoFunc) {
		tbl.Set(value.NewString(interner, []byte(name)), value.FromObject(value.KFunctionGo, proto.NewGoClosure(fn, 0)))
	}

	bind("floor", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Int(int64(stdmath.Floor(argFloat(args, 0))))}, nil
	})
	bind("ceil", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Int(int64(stdmath.Ceil(argFloat(args, 0))))}, nil
	})
	bind("sqrt", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Float(stdmath.Sqrt(argFloat(args, 0)))}, nil
	})
	bind("abs", func(args []value.Value) ([]value.Value, error) {
		if len(args) > 0 && args[0].Kind() == value.KInt {
			n := args[0].AsInt()
			if n < 0 {
				n = -n
			}
			return []value.Value{value.Int(n)}, nil
		}
		return []value.Value{value.Float(stdmath.Abs(argFloat(args, 0)))}, nil
	})
	bind("min", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return []value.Value{value.Nil}, nil
		}
		best := argFloat(args, 0)
		for i := 1; i < len(args); i++ {
			if v := argFloat(args, i); v < best {
				best = v
			}
		}
		return []value.Value{value.Float(best)}, nil
	})
	bind("max", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return []value.Value{value.Nil}, nil
		}
		best := argFloat(args, 0)
		for i := 1; i < len(args); i++ {
			if v := argFloat(args, i); v > best {
				best = v
			}
		}
		return []value.Value{value.Float(best)}, nil
	})
	bind("random", func(args []value.Value) ([]value.Value, error) {
		switch len(args) {
		case 0:
			return []value.Value{value.Float(rand.Float64())}, nil
		case 1:
			m := args[0].AsInt()
			return []value.Value{value.Int(1 + rand.Int63n(m))}, nil
		default:
			lo, hi := args[0].AsInt(), args[1].AsInt()
			return []value.Value{value.Int(lo + rand.Int63n(hi-lo+1))}, nil
		}
	})
	bind("tointeger", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return []value.Value{value.Nil}, nil
		}
		switch args[0].Kind() {
		case value.KInt:
			return []value.Value{args[0]}, nil
		case value.KFloat:
			f := args[0].AsFloat()
			if f == stdmath.Trunc(f) {
				return []value.Value{value.Int(int64(f))}, nil
			}
		}
		return []value.Value{value.Nil}, nil
	})

	tbl.Set(value.NewString(interner, []byte("huge")), value.Float(stdmath.MaxFloat64))
	tbl.Set(value.NewString(interner, []byte("pi")), value.Float(stdmath.Pi))

	globals.Set(value.NewString(interner, []byte("math")), value.FromObject(value.KTable, tbl))
}
