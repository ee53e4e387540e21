// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"strings"
	"testing"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/vm"
)

func TestParseBreakSpecSplitsOnLastColon(t *testing.T) {
	src, line, err := parseBreakSpec("contract.lx:12")
	if err != nil {
		t.Fatalf("parseBreakSpec: %v", err)
	}
	if src != "contract.lx" || line != 12 {
		t.Fatalf("got (%q,%d), want (contract.lx,12)", src, line)
	}
}

func TestParseBreakSpecRejectsMissingColon(t *testing.T) {
	if _, _, err := parseBreakSpec("contract.lx"); err == nil {
		t.Fatalf("expected an error for a spec with no colon")
	}
}

func TestDisassembleProtoListsEveryInstruction(t *testing.T) {
	p := &proto.Proto{
		Source: "t.lx",
		Code: []uint32{
			uint32(vm.EncodeABC(vm.OpLoadConst, 0, 0, 0)),
			uint32(vm.EncodeABC(vm.OpReturn1, 0, 0, 0)),
		},
		LineInfo: []int{1, 2},
	}
	out := disassembleProto(p)
	if !strings.Contains(out, "LOADK") || !strings.Contains(out, "RETURN1") {
		t.Fatalf("disassembly missing expected mnemonics: %s", out)
	}
}
