// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import (
	"strconv"
	"strings"
)

// Table is the garbage-collected associative container: a dense,
// 1-indexed array part plus an open-addressed (map-backed) hash part, per
// spec.md §3.
type Table struct {
	Header

	array []Value       // array[i] holds key i+1
	hash  map[Value]Value

	metatable *Table

	// absentCache records metamethod names known to be absent so repeated
	// lookups (e.g. every arithmetic op probing __add) short-circuit
	// without walking the metatable. Invalidated on any metatable mutation
	// (spec.md §4.1).
	absentCache map[string]bool

	weakKeys   bool
	weakValues bool
}

// NewTable creates an empty table, optionally pre-sized the way NEWTABLE's
// extra-arg hints size it (spec.md §4.5).
func NewTable(arrayHint, hashHint int) *Table {
	t := &Table{}
	if arrayHint > 0 {
		t.array = make([]Value, 0, arrayHint)
	}
	if hashHint > 0 {
		t.hash = make(map[Value]Value, hashHint)
	} else {
		t.hash = make(map[Value]Value)
	}
	return t
}

var _ Object = (*Table)(nil)

// Metatable returns the table's metatable, or nil.
func (t *Table) Metatable() *Table { return t.metatable }

// SetMetatable installs mt as t's metatable and invalidates the
// absent-metamethod cache, per spec.md §4.1.
func (t *Table) SetMetatable(mt *Table) {
	t.metatable = mt
	t.absentCache = nil
}

// SetWeak configures weak-key/weak-value semantics (spec.md §3).
func (t *Table) SetWeak(keys, values bool) {
	t.weakKeys, t.weakValues = keys, values
}

// IsWeakKey and IsWeakValue report the table's weakness configuration.
func (t *Table) IsWeakKey() bool   { return t.weakKeys }
func (t *Table) IsWeakValue() bool { return t.weakValues }

// arrayIndex returns the 0-based array slot for an integer key, and ok=true
// iff key is a positive integer. It does not check the slot against
// len(array); Get and Set compare it themselves (Set appends when the slot
// equals len(array)).
func (t *Table) arrayIndex(key Value) (int, bool) {
	if key.Kind() != KInt {
		return 0, false
	}
	n := key.AsInt()
	if n < 1 {
		return 0, false
	}
	return int(n - 1), true
}

// Get performs a raw (non-metamethod) read.
func (t *Table) Get(key Value) Value {
	if idx, ok := t.arrayIndex(key); ok && idx < len(t.array) {
		return t.array[idx]
	}
	if v, ok := t.hash[key]; ok {
		return v
	}
	return Nil
}

// Set performs a raw (non-metamethod) write. Setting a key to Nil removes
// it from the hash part; removing from the array part leaves a nil hole
// (Lua's # operator is then a "border", not exact length, for such tables).
func (t *Table) Set(key, val Value) {
	if idx, ok := t.arrayIndex(key); ok {
		switch {
		case idx < len(t.array):
			t.array[idx] = val
		case idx == len(t.array) && !val.IsNil():
			t.array = append(t.array, val)
			t.migrateFromHash()
		default:
			if val.IsNil() {
				delete(t.hash, key)
			} else {
				t.hash[key] = val
			}
		}
		return
	}
	if val.IsNil() {
		delete(t.hash, key)
		return
	}
	t.hash[key] = val
}

// migrateFromHash pulls any now-contiguous integer keys out of the hash
// part and into the array part after an append grows the border.
func (t *Table) migrateFromHash() {
	for {
		next := Int(int64(len(t.array) + 1))
		v, ok := t.hash[next]
		if !ok {
			return
		}
		delete(t.hash, next)
		t.array = append(t.array, v)
	}
}

// Len implements the # length operator's array-part border: the array
// part's length with trailing nils dropped. Nil holes before the last
// non-nil element are counted.
func (t *Table) Len() int64 {
	n := len(t.array)
	for n > 0 && t.array[n-1].IsNil() {
		n--
	}
	return int64(n)
}

// HasMetamethod reports whether the table's metatable defines name,
// consulting and populating the absent-metamethod cache.
func (t *Table) HasMetamethod(intern *Interner, name string) (Value, bool) {
	if t.metatable == nil {
		return Nil, false
	}
	if t.absentCache != nil && t.absentCache[name] {
		return Nil, false
	}
	mm := t.metatable.Get(NewString(intern, []byte(name)))
	if mm.IsNil() {
		if t.absentCache == nil {
			t.absentCache = make(map[string]bool)
		}
		t.absentCache[name] = true
		return Nil, false
	}
	return mm, true
}

// PurgeDead clears weak-side entries whose referenced object isDead
// reports true for, per spec.md §3's weak-key/weak-value semantics. Package
// gc calls this once per cycle, after marking but before sweeping, for
// every table registered as weak.
func (t *Table) PurgeDead(isDead func(Object) bool) {
	if t.weakValues {
		for i, v := range t.array {
			if v.IsGCObject() && isDead(v.Object()) {
				t.array[i] = Nil
			}
		}
	}
	if !t.weakKeys && !t.weakValues {
		return
	}
	for k, v := range t.hash {
		if t.weakKeys && k.IsGCObject() && isDead(k.Object()) {
			delete(t.hash, k)
			continue
		}
		if t.weakValues && v.IsGCObject() && isDead(v.Object()) {
			delete(t.hash, k)
		}
	}
}

// ---- Access-log mode (spec.md §3) ------------------------------------------

// AccessOp identifies the operation an access-log record describes.
type AccessOp uint8

const (
	AccessRead AccessOp = iota
	AccessWrite
)

// AccessRecord is emitted by the global access logger when logging is
// enabled and a read/write passes the active filter set.
type AccessRecord struct {
	Table *Table
	Op    AccessOp
	Key   Value
	Value Value
}

// AccessFilter narrows which reads/writes produce a record. A nil field
// means "no constraint on that dimension".
type AccessFilter struct {
	KeyPattern   string // substring match against string keys; "" = no filter
	ValuePattern string
	Op           *AccessOp
	KeyKind      *Kind
	ValueKind    *Kind
	NumericMin   *int64
	NumericMax   *int64
}

func (f AccessFilter) matches(rec AccessRecord) bool {
	if f.Op != nil && *f.Op != rec.Op {
		return false
	}
	if f.KeyKind != nil && *f.KeyKind != rec.Key.Kind() {
		return false
	}
	if f.ValueKind != nil && *f.ValueKind != rec.Value.Kind() {
		return false
	}
	if f.KeyPattern != "" {
		if rec.Key.Kind() != KString {
			return false
		}
		if !strings.Contains(rec.Key.Object().(*String).String(), f.KeyPattern) {
			return false
		}
	}
	if f.ValuePattern != "" {
		if rec.Value.Kind() != KString {
			return false
		}
		if !strings.Contains(rec.Value.Object().(*String).String(), f.ValuePattern) {
			return false
		}
	}
	if f.NumericMin != nil || f.NumericMax != nil {
		if rec.Key.Kind() != KInt {
			return false
		}
		n := rec.Key.AsInt()
		if f.NumericMin != nil && n < *f.NumericMin {
			return false
		}
		if f.NumericMax != nil && n > *f.NumericMax {
			return false
		}
	}
	return true
}

// AccessLogger is the single global access-log sink, enabled/disabled as a
// unit ("A single access-log mode, when enabled globally" — spec.md §3).
type AccessLogger struct {
	Enabled  bool
	Filters  []AccessFilter // a record is emitted if it matches ANY filter, or if Filters is empty
	Dedup    bool
	records  []AccessRecord
	seen     map[string]bool
}

// NewAccessLogger creates a disabled logger ready to be configured.
func NewAccessLogger() *AccessLogger { return &AccessLogger{seen: make(map[string]bool)} }

// Log records an access if the logger is enabled and the record passes the
// filter set, deduplicating by a cheap string key when Dedup is set.
func (l *AccessLogger) Log(rec AccessRecord) {
	if !l.Enabled {
		return
	}
	if len(l.Filters) > 0 {
		matched := false
		for _, f := range l.Filters {
			if f.matches(rec) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
	}
	if l.Dedup {
		key := dedupKey(rec)
		if l.seen[key] {
			return
		}
		l.seen[key] = true
	}
	l.records = append(l.records, rec)
}

// Records returns every logged access so far.
func (l *AccessLogger) Records() []AccessRecord { return l.records }

func dedupKey(rec AccessRecord) string {
	var b strings.Builder
	b.WriteByte(byte(rec.Op))
	b.WriteByte(byte(rec.Key.Kind()))
	if rec.Key.Kind() == KString {
		b.WriteString(rec.Key.Object().(*String).String())
	} else if rec.Key.Kind() == KInt {
		b.WriteString(strconv.FormatInt(rec.Key.AsInt(), 10))
	}
	return b.String()
}
