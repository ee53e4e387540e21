// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package debugctl

import (
	"fmt"
	"strings"

	"github.com/oxenfxc/lxclua/lang/proto"
	"github.com/oxenfxc/lxclua/lang/vm"
)

// Traceback walks t's CallInfo chain from innermost to outermost frame
// and formats one line per frame, spec.md §4.9: "Traceback generation
// walks the CallInfo chain of a given thread".
func Traceback(t *vm.Thread, message string) string {
	var b strings.Builder
	if message != "" {
		b.WriteString(message)
		b.WriteByte('\n')
	}
	b.WriteString("stack traceback:")

	level := t.Depth()
	for ci := t.CurrentCall(); ci != nil; ci = ci.Prev {
		b.WriteByte('\n')
		b.WriteString("\t")
		b.WriteString(frameDescription(ci, level))
		level--
	}
	return b.String()
}

func frameDescription(ci *proto.CallInfo, level int) string {
	cl := ci.Closure
	if cl == nil {
		return "[C]: in ?"
	}
	if !cl.IsLua() {
		return "[C]: in function"
	}
	p := cl.Proto
	line := p.LineAt(ci.PC)
	source := p.Source
	if source == "" {
		source = "?"
	}
	name := "function <anonymous>"
	if level == 0 {
		name = "in main chunk"
	} else {
		name = fmt.Sprintf("in function <%s:%d>", source, p.LineAt(0))
	}
	return fmt.Sprintf("%s:%d: %s", source, line, name)
}
