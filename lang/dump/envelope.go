// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package dump

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// nirithyMarker prefixes every enveloped dump (spec.md §6: "'Nirithy==' literal
// marker").
const nirithyMarker = "Nirithy=="

// nirithyAlphabet is the non-standard 64-character base64 alphabet spec.md
// §6 gives verbatim.
const nirithyAlphabet = "9876543210zyxwvutsrqponmlkjihgfedcbaZYXWVUTSRQPONMLKJIHGFEDCBA-_"

var nirithyEncoding = base64.NewEncoding(nirithyAlphabet).WithPadding('=')

// EncodeEnvelope wraps payload (a Dump/DumpStripped result) in the
// Nirithy envelope: an 8-byte little-endian timestamp, a 16-byte random
// IV, AES-128-CTR encryption under a key derived from both, then
// non-standard base64 with the literal marker prefix.
func EncodeEnvelope(payload []byte, timestamp int64) (string, error) {
	var header [24]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(timestamp))
	iv := header[8:24]
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	key := deriveKey(header[0:8])
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	ciphertext := make([]byte, len(payload))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, payload)

	blob := make([]byte, 0, 24+len(ciphertext))
	blob = append(blob, header[:]...)
	blob = append(blob, ciphertext...)

	return nirithyMarker + nirithyEncoding.EncodeToString(blob), nil
}

// DecodeEnvelope reverses EncodeEnvelope. If s does not carry the marker,
// ok is false and the caller should feed s to Undump directly — the
// envelope is optional (spec.md §4.7).
func DecodeEnvelope(s string) (payload []byte, ok bool, err error) {
	if !strings.HasPrefix(s, nirithyMarker) {
		return nil, false, nil
	}
	blob, err := nirithyEncoding.DecodeString(s[len(nirithyMarker):])
	if err != nil {
		return nil, true, ErrBadEnvelope
	}
	if len(blob) < 24 {
		return nil, true, ErrBadEnvelope
	}
	timestampBytes := blob[0:8]
	iv := blob[8:24]
	ciphertext := blob[24:]

	key := deriveKey(timestampBytes)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, true, ErrBadEnvelope
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return plaintext, true, nil
}

// deriveKey implements spec.md §6's "key = SHA-256(timestamp_le64 ‖
// 'NirithySalt')[0..16]".
func deriveKey(timestampLE []byte) []byte {
	sum := sha256.Sum256(append(append([]byte{}, timestampLE...), []byte("NirithySalt")...))
	return sum[:16]
}
