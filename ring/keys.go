//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package ring provides the ring-VRF context objects: rings of
// public keys, anonymous provers bound to one ring slot, and verifiers
// bound to a ring commitment.
package ring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
)

var (
	// ErrInvalidKey occurs when a ring key is not a canonical compressed point.
	ErrInvalidKey = errors.New("invalid ring public key")
	// ErrIndexOutOfRange occurs when a prover index does not address a ring slot.
	ErrIndexOutOfRange = errors.New("prover index out of range")
	// ErrVerificationFailed is the benign outcome of a failed signature check.
	ErrVerificationFailed = errors.New("signature verification failed")
)

// PublicKey is one ring slot: either a decoded curve point or the
// padding sentinel. The all-zero 32-byte key is reserved as padding and
// decodes to the suite's fixed padding point.
type PublicKey struct {
	pub     *vrfed.Public
	padding bool
}

// DecodeKey decodes a 32-byte canonical compressed key. Padding keys
// are legal at any ring position.
func DecodeKey(b []byte) (PublicKey, error) {
	if len(b) != 32 {
		return PublicKey{}, ErrInvalidKey
	}
	allZero := true
	for _, c := range b {
		if c != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return PublicKey{pub: vrfed.PaddingPoint(), padding: true}, nil
	}
	pub, err := vrfed.PublicFromBytes(b)
	if err != nil {
		return PublicKey{}, ErrInvalidKey
	}
	return PublicKey{pub: pub}, nil
}

// DecodeKeyHex decodes a hex key with an optional 0x prefix.
func DecodeKeyHex(s string) (PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return DecodeKey(raw)
}

// Bytes returns the compressed encoding of the decoded point. For a
// padding key this is the padding point, not the zero sentinel.
func (k PublicKey) Bytes() [32]byte { return k.pub.Bytes() }

// IsPadding reports whether the key was the padding sentinel.
func (k PublicKey) IsPadding() bool { return k.padding }

// Ring is an ordered sequence of public keys. Order is authoritative:
// it is never sorted or deduplicated, and every derivation from a ring
// depends on the exact sequence.
type Ring []PublicKey

// DecodeRing decodes a sequence of hex keys in the given order.
func DecodeRing(keys []string) (Ring, error) {
	ring := make(Ring, 0, len(keys))
	for i, s := range keys {
		k, err := DecodeKeyHex(s)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		ring = append(ring, k)
	}
	return ring, nil
}

// Publics returns the decoded suite points in ring order.
func (r Ring) Publics() []*vrfed.Public {
	out := make([]*vrfed.Public, len(r))
	for i, k := range r {
		out[i] = k.pub
	}
	return out
}
