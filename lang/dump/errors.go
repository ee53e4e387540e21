// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package dump implements prototype serialization (C7): a binary dump/
// undump format, a set of composable obfuscation passes applied before
// serialization, and the Nirithy envelope, an optional outer encryption
// wrapper (spec.md §4.7).
package dump

import "errors"

var (
	ErrBadSignature  = errors.New("dump: bad signature")
	ErrBadVersion    = errors.New("dump: incompatible version")
	ErrTruncated     = errors.New("dump: truncated input")
	ErrBadEnvelope   = errors.New("dump: invalid envelope")
	ErrUnknownKind   = errors.New("dump: unknown constant kind")
)
