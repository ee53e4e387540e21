// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package auxbuf

import (
	"strings"
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/value"
)

func TestPushWithinInlineCapacity(t *testing.T) {
	var b Buffer
	b.PushString("hello ")
	b.PushString("world")
	if got := b.Commit(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if b.Len() != 0 {
		t.Fatalf("Commit should reset the buffer")
	}
}

func TestPushOverflowsInlineCapacity(t *testing.T) {
	var b Buffer
	for i := 0; i < inlineCap+10; i++ {
		b.PushByte('x')
	}
	got := b.Commit()
	if len(got) != inlineCap+10 {
		t.Fatalf("expected %d bytes, got %d", inlineCap+10, len(got))
	}
	if got != strings.Repeat("x", inlineCap+10) {
		t.Fatalf("overflowed buffer content mismatch")
	}
}

func TestPushSubClampsRange(t *testing.T) {
	var b Buffer
	b.PushSub("hello world", 1, 5)
	b.PushByte(' ')
	b.PushSub("hello world", 7, 999)
	if got := b.Commit(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestResetDiscardsBufferedBytes(t *testing.T) {
	var b Buffer
	b.PushString("discarded")
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after Reset")
	}
	if got := b.Commit(); got != "" {
		t.Fatalf("expected empty commit after Reset, got %q", got)
	}
}

func TestLoadStringDispatchesToParseText(t *testing.T) {
	old := ParseText
	defer func() { ParseText = old }()

	var gotSource, gotText string
	ParseText = func(source string, text []byte) (*proto.Proto, error) {
		gotSource = source
		gotText = string(text)
		return &proto.Proto{Source: source}, nil
	}

	interner := value.NewInterner()
	p, err := LoadString("chunk", "print('hi')", interner)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if p.Source != "chunk" {
		t.Fatalf("expected returned Proto.Source to be %q, got %q", "chunk", p.Source)
	}
	if gotSource != "chunk" || gotText != "print('hi')" {
		t.Fatalf("ParseText received source=%q text=%q", gotSource, gotText)
	}
}

func TestLoadStringWithoutParseTextFails(t *testing.T) {
	old := ParseText
	ParseText = nil
	defer func() { ParseText = old }()

	interner := value.NewInterner()
	if _, err := LoadString("chunk", "print('hi')", interner); err != ErrNoTextParser {
		t.Fatalf("expected ErrNoTextParser, got %v", err)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	interner := value.NewInterner()
	if _, err := LoadFile("/nonexistent/path/does/not/exist.lua", interner); err == nil {
		t.Fatalf("expected an error opening a nonexistent file")
	}
}
