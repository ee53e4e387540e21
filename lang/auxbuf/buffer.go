// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package auxbuf implements the auxiliary buffer and loader plumbing
// (C10): a growable byte buffer used to accumulate string-building
// results a piece at a time, plus reader-based binary/text loading that
// feeds package dump's Undump or a parser.
package auxbuf

// inlineCap is the size of Buffer's inline array, sized so that typical
// string-building (a handful of concatenated fields) never touches the
// heap. Spec.md §4.10: "a growable byte buffer with inline small-buffer
// optimization".
const inlineCap = 64

// Buffer accumulates bytes pushed a piece at a time and commits them into
// a single string, the role luaL_Buffer plays for string.format, table.concat,
// and friends. The zero value is ready to use.
type Buffer struct {
	inline [inlineCap]byte
	buf    []byte // nil until the inline array overflows
	n      int
}

// Reset discards any accumulated bytes, returning the Buffer to its
// zero-value state.
func (b *Buffer) Reset() {
	b.buf = nil
	b.n = 0
}

// Len reports the number of bytes accumulated so far.
func (b *Buffer) Len() int { return b.n }

func (b *Buffer) ensure(extra int) {
	need := b.n + extra
	if b.buf != nil {
		if need <= cap(b.buf) {
			return
		}
		newCap := cap(b.buf) * 2
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, newCap)
		copy(grown, b.buf[:b.n])
		b.buf = grown
		return
	}
	if need <= inlineCap {
		return
	}
	// Overflow out of the inline array: promote to a heap slice, sized to
	// at least double the inline capacity or exactly what's needed.
	newCap := inlineCap * 2
	if newCap < need {
		newCap = need
	}
	b.buf = make([]byte, newCap)
	copy(b.buf, b.inline[:b.n])
}

func (b *Buffer) tail() []byte {
	if b.buf != nil {
		return b.buf
	}
	return b.inline[:]
}

// PushByte appends a single byte.
func (b *Buffer) PushByte(c byte) {
	b.ensure(1)
	b.tail()[b.n] = c
	b.n++
}

// PushString appends s verbatim.
func (b *Buffer) PushString(s string) {
	b.ensure(len(s))
	copy(b.tail()[b.n:], s)
	b.n += len(s)
}

// PushBytes appends bs verbatim.
func (b *Buffer) PushBytes(bs []byte) {
	b.ensure(len(bs))
	copy(b.tail()[b.n:], bs)
	b.n += len(bs)
}

// PushSub appends the substring of src from lo to hi, inclusive, both
// 1-indexed, clamping to src's bounds.
func (b *Buffer) PushSub(src string, lo, hi int) {
	if lo < 1 {
		lo = 1
	}
	if hi > len(src) {
		hi = len(src)
	}
	if lo > hi {
		return
	}
	b.PushString(src[lo-1 : hi])
}

// Commit finalizes the accumulated bytes into a string, the equivalent of
// luaL_pushresult pushing the built string onto the value stack (the
// caller performs the actual stack push; Commit only materializes the
// string and resets the buffer for reuse).
func (b *Buffer) Commit() string {
	s := string(b.tail()[:b.n])
	b.Reset()
	return s
}

// Bytes returns a copy of the accumulated bytes without committing or
// resetting the buffer.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.n)
	copy(out, b.tail()[:b.n])
	return out
}
