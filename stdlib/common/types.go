// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package common holds the fixed-size hash and address value types
// stdlib/chain and stdlib/cryptoalgo surface to scripts as userdata,
// trimmed from the original common/types.go down to the byte-array
// core (no RLP/JSON/SQL-scan machinery, none of which a scripting
// runtime's stdlib needs).
package common

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// HashLength is the byte length of a Hash.
	HashLength = 32
	// AddressLength is the byte length of an Address.
	AddressLength = 20
)

// Hash represents a 32-byte Keccak256 hash of arbitrary data.
type Hash [HashLength]byte

// BytesToHash sets h to b, cropping b from the left if it's longer than
// HashLength.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// SetBytes sets the hash to the value of b, cropping from the left if b
// is larger than HashLength.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes returns the hash's byte representation.
func (h Hash) Bytes() []byte { return h[:] }

// Big converts the hash to a big-endian big integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether every byte of h is zero.
func (h Hash) IsZero() bool { return h == Hash{} }

// Address represents a 20-byte account or contract identity.
type Address [AddressLength]byte

// BytesToAddress sets a to b, cropping b from the left if it's longer
// than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// SetBytes sets the address to the value of b, cropping from the left
// if b is larger than AddressLength.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the address's byte representation.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether every byte of a is zero.
func (a Address) IsZero() bool { return a == Address{} }

// ParseAddress decodes a 0x-prefixed or bare hex string into an Address,
// rejecting anything that isn't exactly AddressLength bytes once decoded.
func ParseAddress(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("common: invalid address length %d, want %d", len(b), AddressLength)
	}
	return BytesToAddress(b), nil
}

// ParseHash decodes a 0x-prefixed or bare hex string into a Hash,
// rejecting anything that isn't exactly HashLength bytes once decoded.
func ParseHash(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, fmt.Errorf("common: invalid hash length %d, want %d", len(b), HashLength)
	}
	return BytesToHash(b), nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
