// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package math

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

func callMath(t *testing.T, globals *value.Table, interner *value.Interner, fnName string, args []value.Value) []value.Value {
	t.Helper()
	libVal := globals.Get(value.NewString(interner, []byte("math")))
	tbl := libVal.Object().(*value.Table)
	fnVal := tbl.Get(value.NewString(interner, []byte(fnName)))
	cl := fnVal.Object().(*proto.Closure)
	results, err := cl.Go(args)
	if err != nil {
		t.Fatalf("math.%s: %v", fnName, err)
	}
	return results
}

func TestFloorTruncatesTowardNegativeInfinity(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)
	Register(globals, interner)

	got := callMath(t, globals, interner, "floor", []value.Value{value.Float(1.9)})
	if got[0].AsInt() != 1 {
		t.Fatalf("floor(1.9) = %d, want 1", got[0].AsInt())
	}
}

func TestMaxPicksLargestArgument(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)
	Register(globals, interner)

	got := callMath(t, globals, interner, "max", []value.Value{value.Int(3), value.Int(7), value.Int(5)})
	if got[0].AsFloat() != 7 {
		t.Fatalf("max(3,7,5) = %v, want 7", got[0].AsFloat())
	}
}

func TestToIntegerRejectsFractional(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)
	Register(globals, interner)

	got := callMath(t, globals, interner, "tointeger", []value.Value{value.Float(1.5)})
	if got[0].Kind() != value.KNil {
		t.Fatalf("tointeger(1.5) should be nil, got kind %v", got[0].Kind())
	}
}

func TestHugeAndPiAreExposedAsFields(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 4)
	Register(globals, interner)

	tbl := globals.Get(value.NewString(interner, []byte("math"))).Object().(*value.Table)
	huge := tbl.Get(value.NewString(interner, []byte("huge")))
	if huge.Kind() != value.KFloat || huge.AsFloat() < 1e308 {
		t.Fatalf("huge = %v (kind %v), want math.MaxFloat64", huge.AsFloat(), huge.Kind())
	}
	pi := tbl.Get(value.NewString(interner, []byte("pi")))
	if pi.AsFloat() < 3.14 || pi.AsFloat() > 3.15 {
		t.Fatalf("pi = %v, want ~3.14159", pi.AsFloat())
	}
}

func TestIotaAndSumStillWork(t *testing.T) {
	arr := Iota(5)
	if arr.Sum() != 10 {
		t.Fatalf("Iota(5).Sum() = %d, want 10", arr.Sum())
	}
}
