//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package ed25519 implements the VRF suite used by the ring-VRF service:
// a deterministic encode-to-curve for VRF inputs, seed-derived secret
// scalars, and VRF outputs over the edwards25519 group. The
// non-anonymous (IETF-style) proof system lives in ietf.go and the
// strict signature check in strict.go.
package ed25519

import (
	"crypto/sha512"
	"errors"
	"slices"
	"sync"

	"filippo.io/edwards25519"
)

var (
	identityPoint = edwards25519.NewIdentityPoint()

	hashAlgo = sha512.New

	// inputDomain salts the encode-to-curve mapping for VRF inputs. It is
	// fixed for the whole suite so that equal messages map to equal input
	// points regardless of which key evaluates them.
	inputDomain = []byte("jam-vrf-input-v1")

	// paddingDomain salts the derivation of the ring padding point.
	paddingDomain = []byte("jam-ring-padding-v1")

	// ErrInvalidSecret occurs when a secret seed is empty.
	ErrInvalidSecret = errors.New("invalid secret seed")
	// ErrInvalidPublicKey occurs when a public key is the wrong size or has low order.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidVRF occurs when the VRF does not validate.
	ErrInvalidVRF = errors.New("invalid VRF proof")
)

// Input is a VRF input point derived from an arbitrary byte string.
type Input struct {
	point *edwards25519.Point
}

// NewInput maps data to a curve point. The mapping is deterministic and
// independent of any key.
func NewInput(data []byte) Input {
	return Input{point: encodeToCurve(inputDomain, data)}
}

// Bytes returns the canonical compressed encoding of the input point.
func (in Input) Bytes() []byte { return in.point.Bytes() }

// Output is a VRF output point together with its canonical hash.
type Output struct {
	point *edwards25519.Point
}

// Bytes returns the canonical compressed encoding of the output point.
func (o Output) Bytes() []byte { return o.point.Bytes() }

// Hash returns the 64-byte canonical output hash. Callers that need the
// protocol-level VRF output take the first 32 bytes.
func (o Output) Hash() []byte {
	h := hashAlgo()
	h.Write([]byte{0x03, 0x03})
	h.Write(new(edwards25519.Point).MultByCofactor(o.point).Bytes())
	h.Write([]byte{0x00})
	return h.Sum(nil)
}

// Hash32 returns the first 32 bytes of the canonical output hash.
func (o Output) Hash32() [32]byte {
	var out [32]byte
	copy(out[:], o.Hash())
	return out
}

// OutputFromBytes decodes a compressed output point.
func OutputFromBytes(b []byte) (Output, error) {
	if len(b) != 32 {
		return Output{}, ErrInvalidVRF
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return Output{}, ErrInvalidVRF
	}
	return Output{point: p}, nil
}

// Secret holds a secret VRF scalar together with a nonce derivation key.
type Secret struct {
	scalar   *edwards25519.Scalar
	nonceKey []byte
	public   *Public
}

// SecretFromSeed derives a secret from an arbitrary-length seed. Equal
// seeds produce equal secrets.
func SecretFromSeed(seed []byte) (*Secret, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSecret
	}
	h := sha512.Sum512(seed)
	x, err := new(edwards25519.Scalar).SetBytesWithClamping(h[:32])
	if err != nil {
		panic(err)
	}
	pub := &Public{point: new(edwards25519.Point).ScalarBaseMult(x)}
	pub.bytes = [32]byte(pub.point.Bytes())
	return &Secret{scalar: x, nonceKey: h[32:], public: pub}, nil
}

// Public returns the public key bound to this secret.
func (s *Secret) Public() *Public { return s.public }

// Output evaluates the VRF at the given input point.
func (s *Secret) Output(in Input) Output {
	return Output{point: new(edwards25519.Point).ScalarMult(s.scalar, in.point)}
}

// Scalar returns a copy of the secret scalar for use by proof systems.
func (s *Secret) Scalar() *edwards25519.Scalar {
	return new(edwards25519.Scalar).Set(s.scalar)
}

// Public holds a public VRF key.
type Public struct {
	point *edwards25519.Point
	bytes [32]byte
}

// PublicFromBytes decodes a canonical compressed public key. Low-order
// points are rejected.
func PublicFromBytes(b []byte) (*Public, error) {
	if len(b) != 32 {
		return nil, ErrInvalidPublicKey
	}
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	check := new(edwards25519.Point).MultByCofactor(p)
	if identityPoint.Equal(check) == 1 {
		return nil, ErrInvalidPublicKey
	}
	pub := &Public{point: p}
	copy(pub.bytes[:], b)
	return pub, nil
}

// Bytes returns the canonical compressed encoding of the key.
func (p *Public) Bytes() [32]byte { return p.bytes }

// Point returns a copy of the underlying curve point.
func (p *Public) Point() *edwards25519.Point {
	return new(edwards25519.Point).Set(p.point)
}

var paddingPoint = sync.OnceValue(func() *Public {
	pt := encodeToCurve(paddingDomain, nil)
	pub := &Public{point: pt}
	pub.bytes = [32]byte(pt.Bytes())
	return pub
})

// PaddingPoint returns the fixed point substituted for the all-zero
// padding key in rings.
func PaddingPoint() *Public { return paddingPoint() }

func encodeToCurve(salt, data []byte) (p *edwards25519.Point) {
	h := hashAlgo()
	for i := 0; i < 100; {
		h.Reset()
		h.Write([]byte{0x03, 0x01})
		h.Write(salt)
		h.Write(data)
		h.Write([]byte{byte(i), 0x00})

		r := h.Sum(nil)
		p = interpretHashValueAsPoint(r[:32])
		if p != nil {
			p.MultByCofactor(p)
			// Check that we're not returning the identity point
			if identityPoint.Equal(p) != 1 {
				return
			}
		}
		i++
	}
	// This is practically unreachable
	panic("No curve point found")
}

// interpretHashValueAsPoint checks if a 32-byte hash can be interpreted as a point on the edwards 25519 curve
// as defined in [Section 5.1.3 of RFC8032](https://www.rfc-editor.org/rfc/rfc8032#section-5.1.3)
// and returns that point if so.
func interpretHashValueAsPoint(hash []byte) *edwards25519.Point {
	// Validate that the hash is 32 bytes
	if len(hash) != 32 {
		return nil
	}

	// If the input bytes are such that bytes 1 to 30 have value 255, byte 31 has value 255 or 127,
	// and byte 0 has value 255 - i for value i in the (0, 2, 3, 4, 8, 9, 12, 13, 14, 15) list, then
	// the encoding is invalid.
	invalidBytes1To30 := true
	for _, b := range hash[1:31] {
		if b != 255 {
			invalidBytes1To30 = false
			break
		}
	}

	invalidByte31 := hash[31] == 255 || hash[31] == 127

	set := []uint8{0, 2, 3, 4, 8, 9, 12, 13, 14, 15}
	invalidByte0 := slices.Contains(set, 255-hash[0])

	if invalidByte0 && invalidBytes1To30 && invalidByte31 {
		return nil
	}

	// the only error is if len(hash) != 32, which we validate above, so it is safe to ignore
	p, _ := new(edwards25519.Point).SetBytes(hash)
	return p
}

func generateNonce(key []byte, parts ...[]byte) *edwards25519.Scalar {
	h := hashAlgo()
	h.Write(key)
	for _, p := range parts {
		h.Write(p)
	}
	kStr := h.Sum(nil)

	k, err := new(edwards25519.Scalar).SetUniformBytes(kStr)
	if err != nil {
		panic(err)
	}
	return k
}

func generateChallenge(parts ...[]byte) []byte {
	h := hashAlgo()
	h.Write([]byte{0x03, 0x02})
	for _, p := range parts {
		h.Write(p)
	}
	h.Write([]byte{0x00})
	cStr := h.Sum(nil)

	return cStr[:16]
}
