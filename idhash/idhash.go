// Package idhash builds deterministic, opaque identifiers from content
// using BLAKE2b-256, truncated to 64 bits and hex-rendered. This is the
// one construction used everywhere the spec asks for an "opaque unique"
// or deterministic identifier: stepdef IDs (sd-<16 hex>), pickle IDs,
// macro provenance IDs, and fuzzer failure-signature digests.
//
// Grounded on the teacher's content-hash identifier pattern in
// core/planfmt/writer.go and core/sdk/secret/idfactory.go, both of which
// derive deterministic identifiers from BLAKE2b digests of canonical
// byte content.
package idhash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hex64 returns the first 8 bytes (64 bits) of the BLAKE2b-256 digest of
// parts (concatenated with a NUL separator), rendered as 16 lowercase
// hex characters.
func Hex64(parts ...string) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on an oversized key; nil key never does.
		panic(err)
	}
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// ID renders a prefixed opaque identifier, e.g. ID("sd", patternSrc) ==
// "sd-0123456789abcdef".
func ID(prefix string, parts ...string) string {
	return prefix + "-" + Hex64(parts...)
}
