// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import (
	"math"
	"strconv"
	"strings"
)

// CoerceNumber implements the string<->number coercion laws spec.md §4.1
// requires arithmetic to fall back on before consulting a metamethod: a
// string that looks like a numeral coerces to int or float; anything else
// fails coercion (ok=false), which is the VM's cue to try __add/__sub/etc.
func CoerceNumber(v Value) (Value, bool) {
	switch v.Kind() {
	case KInt, KFloat:
		return v, true
	case KString:
		s := v.Object().(*String)
		return parseNumeral(strings.TrimSpace(s.String()))
	default:
		return Nil, false
	}
}

func parseNumeral(s string) (Value, bool) {
	if s == "" {
		return Nil, false
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return Int(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Nil, false
}

// ToFloat widens any numeric value to float64, for operations (division,
// exponentiation) that always produce a float result in the number tower.
func ToFloat(v Value) (float64, bool) {
	switch v.Kind() {
	case KInt:
		return float64(v.AsInt()), true
	case KFloat:
		return v.AsFloat(), true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is already an int or float, without attempting
// string coercion.
func IsNumber(v Value) bool { return v.Kind() == KInt || v.Kind() == KFloat }

// FloorDivInt and ModInt implement Lua's floor-division and floor-modulo for
// the integer case, where Go's truncating / and % differ from the language's
// floor semantics (spec.md §4.1: "// and % are floor-division/floor-modulo,
// not truncating").
func FloorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

// FloorDivFloat and ModFloat are the float counterparts, defined in terms of
// math.Floor the same way the integer forms are defined in terms of %.
func FloorDivFloat(a, b float64) float64 { return math.Floor(a / b) }

func ModFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
