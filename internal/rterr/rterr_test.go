// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package rterr

import (
	"errors"
	"fmt"
	"testing"
)

var errSentinel = errors.New("boom")

func TestNewWrapsSentinelForErrorsIs(t *testing.T) {
	e := New(ArithmeticError, errSentinel)
	if !errors.Is(e, errSentinel) {
		t.Fatalf("errors.Is should see through to the wrapped sentinel")
	}
}

func TestKindOfRecoversKindThroughFmtWrapping(t *testing.T) {
	e := At(IndexError, errSentinel, "chunk.lx", 12)
	wrapped := fmt.Errorf("while executing: %w", e)

	kind, ok := KindOf(wrapped)
	if !ok || kind != IndexError {
		t.Fatalf("KindOf = (%v,%v), want (IndexError,true)", kind, ok)
	}
}

func TestErrorStringIncludesSourcePosition(t *testing.T) {
	e := At(SyntaxError, errSentinel, "chunk.lx", 7)
	want := "chunk.lx:7: SyntaxError: boom"
	if got := e.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestKindOfReportsFalseForPlainErrors(t *testing.T) {
	if _, ok := KindOf(errSentinel); ok {
		t.Fatalf("expected KindOf to report false for a non-rterr error")
	}
}
