// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package crypto provides cryptographic primitives for the scripting
// runtime's standard library surface: post-quantum signature
// verification, Keccak/SHAKE hashing, secp256k1 ECDSA recovery, and
// CRC32 checksums (spec.md §1: "Third-party crypto, image, and resize
// routines used as primitives").
package crypto

import (
	"fmt"
	"hash/crc32"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cloudflare/circl/sign/dilithium/mode2"
	"github.com/cloudflare/circl/sign/schemes"
	"golang.org/x/crypto/sha3"

	"github.com/oxenfxc/lxclua/stdlib/common"
)

// KeccakState exposes the incremental-read Keccak API golang.org/x/crypto/sha3
// provides beyond the plain hash.Hash interface, the same wrapper shape the
// teacher's crypto/crypto.go builds around sha3.NewLegacyKeccak256.
type KeccakState interface {
	Write([]byte) (int, error)
	Read([]byte) (int, error)
	Reset()
}

// Keccak256 computes the Keccak-256 (not NIST SHA3-256) digest of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256().(KeccakState)
	for _, b := range data {
		d.Write(b)
	}
	out := make([]byte, 32)
	d.Read(out)
	return out
}

// Keccak256Hash is Keccak256 with its result wrapped as a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	return common.BytesToHash(Keccak256(data...))
}

// SHAKE256 computes a variable-length SHAKE256 extendable-output hash.
func SHAKE256(data []byte, outputLen int) []byte {
	d := sha3.NewShake256()
	d.Write(data)
	out := make([]byte, outputLen)
	d.Read(out)
	return out
}

// MLDSAVerify verifies an ML-DSA / Dilithium2 (circl mode2) signature,
// following the same Unpack-then-Verify shape as crypto/dilithium.Verify.
func MLDSAVerify(msg, sig, pubkey []byte) bool {
	if len(pubkey) != mode2.PublicKeySize || len(sig) != mode2.SignatureSize {
		return false
	}
	var buf [mode2.PublicKeySize]byte
	copy(buf[:], pubkey)
	pk := new(mode2.PublicKey)
	pk.Unpack(&buf)
	return mode2.Verify(pk, msg, sig)
}

// slhdsaScheme and falcon512Scheme are resolved once from circl's scheme
// registry; a missing scheme degrades Verify calls to "always reject"
// rather than panicking, since a registry miss means a build without the
// expected circl version rather than a malformed signature.
var (
	slhdsaScheme    = schemes.ByName("SLH-DSA-SHA2-128s")
	falcon512Scheme = schemes.ByName("Falcon-512")
)

// SLHDSAVerify verifies an SLH-DSA / SPHINCS+ signature via circl's
// generic sign.Scheme registry (no pack file demonstrates this call
// shape directly; modeled on circl's own documented Scheme contract:
// unmarshal the public key, then Verify(pk, msg, sig, nil)).
func SLHDSAVerify(msg, sig, pubkey []byte) bool {
	if slhdsaScheme == nil {
		return false
	}
	pk, err := slhdsaScheme.UnmarshalBinaryPublicKey(pubkey)
	if err != nil {
		return false
	}
	return slhdsaScheme.Verify(pk, msg, sig, nil)
}

// Falcon512Verify verifies a Falcon-512 signature, same registry pattern
// as SLHDSAVerify.
func Falcon512Verify(msg, sig, pubkey []byte) bool {
	if falcon512Scheme == nil {
		return false
	}
	pk, err := falcon512Scheme.UnmarshalBinaryPublicKey(pubkey)
	if err != nil {
		return false
	}
	return falcon512Scheme.Verify(pk, msg, sig, nil)
}

// Secp256k1Recover recovers the signer's address from a 65-byte
// [R || S || V] signature over hash, btcec/v2 standing in for the
// teacher's cgo-only secp256k1 package (not present in the retrieved
// pack) — same Keccak-then-truncate address derivation
// crypto/dilithium.PubkeyToAddress uses for its own post-quantum keys.
func Secp256k1Recover(hash [32]byte, sig [65]byte) (common.Address, error) {
	// btcec's RecoverCompact wants [V || R || S], the opposite byte order
	// from the Ethereum-style [R || S || V] layout callers pass in.
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])

	pub, _, err := btcecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return common.Address{}, fmt.Errorf("crypto: secp256k1 recover: %w", err)
	}

	// SerializeUncompressed returns [0x04 || X || Y]; Ethereum-style
	// addresses hash the X||Y portion only.
	pubBytes := pub.SerializeUncompressed()
	return common.BytesToAddress(Keccak256(pubBytes[1:])[12:]), nil
}

// CRC32 computes the IEEE CRC-32 checksum of data, spec.md §8's boundary
// behaviors expect a fixed, well-known checksum for bytecode integrity
// probes — no ecosystem replacement improves on the standard library
// here (see DESIGN.md).
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
