// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package debugctl

import "github.com/oxenfxc/lxclua/lang/vm"

// Attach builds a Controller that interns breakpoint keys through v's own
// string interner, the same pool every running script's strings share.
func Attach(v *vm.VM) *Controller {
	return New(v.Strings)
}
