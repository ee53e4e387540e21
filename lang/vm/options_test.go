// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"errors"
	"testing"

	"github.com/oxenfxc/lxclua/lang/gc"
)

func TestWithGasLimitCapsConsumeGas(t *testing.T) {
	v := New(WithGasLimit(10))
	if err := v.ConsumeGas(6); err != nil {
		t.Fatalf("ConsumeGas(6): %v", err)
	}
	if err := v.ConsumeGas(6); !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("ConsumeGas(6) second call = %v, want ErrOutOfGas", err)
	}
}

func TestZeroGasLimitIsUnlimited(t *testing.T) {
	v := New()
	if err := v.ConsumeGas(1 << 40); err != nil {
		t.Fatalf("unlimited ConsumeGas returned %v", err)
	}
}

func TestWithGCModeAppliesToCollector(t *testing.T) {
	v := New(WithGCMode(gc.ModeGenerational))
	if v.GC.Mode() != gc.ModeGenerational {
		t.Fatalf("GC.Mode() = %v, want ModeGenerational", v.GC.Mode())
	}
}
