// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package json

import (
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

func TestDecodeObjectBecomesTableWithStringKeys(t *testing.T) {
	interner := value.NewInterner()
	v, err := Decode(interner, []byte(`{"a": 1, "b": "two"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tbl := v.Object().(*value.Table)
	if got := tbl.Get(value.NewString(interner, []byte("a"))).AsInt(); got != 1 {
		t.Fatalf("a = %d, want 1", got)
	}
	bVal := tbl.Get(value.NewString(interner, []byte("b")))
	if bVal.Object().(*value.String).String() != "two" {
		t.Fatalf("b = %q, want \"two\"", bVal.Object().(*value.String).String())
	}
}

func TestDecodeArrayBecomesOneIndexedTable(t *testing.T) {
	interner := value.NewInterner()
	v, err := Decode(interner, []byte(`[10, 20, 30]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tbl := v.Object().(*value.Table)
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
	if got := tbl.Get(value.Int(1)).AsInt(); got != 10 {
		t.Fatalf("tbl[1] = %d, want 10", got)
	}
}

func TestDecodeWholeNumberBecomesInt(t *testing.T) {
	interner := value.NewInterner()
	v, err := Decode(interner, []byte(`42`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind() != value.KInt || v.AsInt() != 42 {
		t.Fatalf("got kind=%v val=%v, want KInt 42", v.Kind(), v)
	}
}

func TestDecodeFractionalNumberBecomesFloat(t *testing.T) {
	interner := value.NewInterner()
	v, err := Decode(interner, []byte(`1.5`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v.Kind() != value.KFloat || v.AsFloat() != 1.5 {
		t.Fatalf("got kind=%v val=%v, want KFloat 1.5", v.Kind(), v)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	interner := value.NewInterner()
	if _, err := Decode(interner, []byte(`{not json`)); err == nil {
		t.Fatalf("expected an error decoding malformed JSON")
	}
}

func TestDecodeNeverRoundTripsThroughSourceText(t *testing.T) {
	// A string containing characters that would need escaping if this
	// package spliced text into Lua source (quotes, backslashes,
	// newlines) must survive unchanged, since Decode never builds or
	// loads source text at all.
	interner := value.NewInterner()
	v, err := Decode(interner, []byte(`{"s": "a\"b\\c\nd"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tbl := v.Object().(*value.Table)
	got := tbl.Get(value.NewString(interner, []byte("s"))).Object().(*value.String).String()
	want := "a\"b\\c\nd"
	if got != want {
		t.Fatalf("s = %q, want %q", got, want)
	}
}

func TestRegisterExposesJSONDecodeToScripts(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 1)
	Register(globals, interner)

	libVal := globals.Get(value.NewString(interner, []byte("json")))
	tbl := libVal.Object().(*value.Table)
	fnVal := tbl.Get(value.NewString(interner, []byte("decode")))
	cl := fnVal.Object().(*proto.Closure)

	results, err := cl.Go([]value.Value{value.NewString(interner, []byte(`{"x": 1}`))})
	if err != nil {
		t.Fatalf("json.decode: %v", err)
	}
	got := results[0].Object().(*value.Table).Get(value.NewString(interner, []byte("x"))).AsInt()
	if got != 1 {
		t.Fatalf("x = %d, want 1", got)
	}
}

func TestRegisterDecodeReportsErrorOnNonString(t *testing.T) {
	interner := value.NewInterner()
	globals := value.NewTable(0, 1)
	Register(globals, interner)

	libVal := globals.Get(value.NewString(interner, []byte("json")))
	tbl := libVal.Object().(*value.Table)
	fnVal := tbl.Get(value.NewString(interner, []byte("decode")))
	cl := fnVal.Object().(*proto.Closure)

	results, err := cl.Go([]value.Value{value.Int(5)})
	if err != nil {
		t.Fatalf("json.decode: %v", err)
	}
	if !results[0].IsNil() || results[1].Kind() != value.KString {
		t.Fatalf("expected (nil, errmsg) results, got %v", results)
	}
}
