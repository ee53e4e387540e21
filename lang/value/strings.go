// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import "github.com/cespare/xxhash/v2"

// shortStringLimit is the byte length at or below which a string is a
// candidate for interning (spec.md §3: "Short strings (bounded length) are
// interned process-wide; long strings are not").
const shortStringLimit = 40

// StringForm distinguishes the three string representations spec.md §3
// requires: interned short strings, uninterned long strings, and external
// strings backed by caller-owned memory.
type StringForm uint8

const (
	FormShort StringForm = iota
	FormLong
	FormExternal
)

// String is the garbage-collected, immutable byte-sequence object backing
// every KString value.
type String struct {
	Header
	data []byte
	hash uint64
	form StringForm

	// destructor runs when the GC reclaims an external string's header; it
	// is the caller's chance to free the backing buffer it still owns.
	destructor func()
}

var _ Object = (*String)(nil)

// Bytes returns the string's byte content. Callers must not mutate it:
// strings are immutable per spec.md §3.
func (s *String) Bytes() []byte { return s.data }

// Hash returns the cached hash used by table lookups and interning.
func (s *String) Hash() uint64 { return s.hash }

// Form reports which of the three string representations s is.
func (s *String) Form() StringForm { return s.form }

// Len returns the byte length.
func (s *String) Len() int { return len(s.data) }

// String satisfies fmt.Stringer for debug output.
func (s *String) String() string { return string(s.data) }

// Interner is the process-wide short-string intern table. Short strings
// equal in content always resolve to the same *String object, which makes
// RawEquals's pointer comparison correct (spec.md §8: "intern(s) = intern(s)
// (pointer equality) for any short string s"). Package gc holds the single
// live instance and sweeps dead entries out of it; every other package only
// ever sees it through NewString.
type Interner struct {
	entries map[uint64][]*String
}

// NewInterner creates an empty intern table.
func NewInterner() *Interner {
	return &Interner{entries: make(map[uint64][]*String)}
}

func (t *Interner) intern(data []byte) *String {
	h := xxhash.Sum64(data)
	for _, s := range t.entries[h] {
		if string(s.data) == string(data) {
			return s
		}
	}
	s := &String{data: append([]byte(nil), data...), hash: h, form: FormShort}
	t.entries[h] = append(t.entries[h], s)
	return s
}

// Remove drops a string from the intern table once the GC has determined it
// is unreachable, so the table itself does not keep it alive forever.
func (t *Interner) Remove(s *String) {
	bucket := t.entries[s.hash]
	for i, cand := range bucket {
		if cand == s {
			t.entries[s.hash] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// NewString creates a string value, routing through the intern table when
// data is short enough and long/uninterned otherwise.
func NewString(table *Interner, data []byte) Value {
	if len(data) <= shortStringLimit {
		return FromObject(KString, table.intern(data))
	}
	s := &String{data: append([]byte(nil), data...), hash: xxhash.Sum64(data), form: FormLong}
	return FromObject(KString, s)
}

// NewExternalString wraps caller-owned memory without copying it. destroy,
// if non-nil, is invoked exactly once when the GC reclaims the header
// (spec.md §3: "a destructor closure invoked when the GC reclaims the
// header").
func NewExternalString(data []byte, destroy func()) Value {
	s := &String{data: data, hash: xxhash.Sum64(data), form: FormExternal, destructor: destroy}
	return FromObject(KString, s)
}

// RunDestructor invokes an external string's destructor, if any. Package gc
// calls this from the sweep phase; it is a no-op for short/long strings.
func (s *String) RunDestructor() {
	if s.form == FormExternal && s.destructor != nil {
		s.destructor()
	}
}
