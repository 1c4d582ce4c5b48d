//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package ringproof implements the anonymous ring proof system behind
// the ring-VRF: a trusted set of generator points (the SRS) bound to a
// fixed maximum ring size, deterministic prover/verifier key
// derivation, the ring commitment, and ring proofs that some member of
// the ring produced a VRF output.
package ringproof

import (
	"crypto/sha256"
	"crypto/sha512"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"filippo.io/edwards25519"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
)

//go:embed data/srs-1024.bin
var srsBlob []byte

const (
	srsMagic   = "RVRF"
	srsVersion = 1

	// DefaultMaxRing is the ring size bound used when no deployment
	// configuration overrides it.
	DefaultMaxRing = 6
)

var (
	srsDomain    = []byte("jam-srs-v1")
	commitDomain = []byte("jam-ring-commit-v1")
	chainDomain  = []byte("jam-ring-chain-v1")

	// ErrSRSCorrupt occurs when the embedded SRS fails to deserialize.
	ErrSRSCorrupt = errors.New("corrupt SRS blob")
	// ErrRingTooLarge occurs when a ring exceeds the configured maximum.
	ErrRingTooLarge = errors.New("ring larger than maximum ring size")
	// ErrIndexOutOfRange occurs when a prover index does not address a ring slot.
	ErrIndexOutOfRange = errors.New("prover index out of range")
)

// Params holds the proof-system parameters: the SRS generators and the
// maximum ring size every key and proof is bound to.
type Params struct {
	generators []*edwards25519.Point
	maxRing    int
	srsDigest  [32]byte
}

// NewParams deserializes the embedded SRS and binds it to the given
// maximum ring size. It is the only fallible step of the proof system;
// after it succeeds all derivations are deterministic and infallible.
func NewParams(maxRing int) (*Params, error) {
	generators, err := parseSRS(srsBlob)
	if err != nil {
		return nil, err
	}
	if maxRing < 1 || maxRing > len(generators) {
		return nil, fmt.Errorf("max ring size %d outside SRS degree [1, %d]", maxRing, len(generators))
	}
	return &Params{
		generators: generators[:maxRing],
		maxRing:    maxRing,
		srsDigest:  sha256.Sum256(srsBlob),
	}, nil
}

var defaultParams = sync.OnceValue(func() *Params {
	p, err := NewParams(DefaultMaxRing)
	if err != nil {
		panic(err)
	}
	return p
})

// Default returns process-wide parameters with the default maximum ring
// size. It panics if the embedded SRS is corrupt; a process that cannot
// load its SRS must not start.
func Default() *Params { return defaultParams() }

// MaxRing returns the maximum ring size these parameters are bound to.
func (p *Params) MaxRing() int { return p.maxRing }

// SRSDigest returns the SHA-256 digest of the SRS blob.
func (p *Params) SRSDigest() [32]byte { return p.srsDigest }

// ProofSize returns the serialized ring proof size for these parameters.
func (p *Params) ProofSize() int { return 32 + 32*p.maxRing }

func parseSRS(blob []byte) ([]*edwards25519.Point, error) {
	if len(blob) < 9 || string(blob[:4]) != srsMagic || blob[4] != srsVersion {
		return nil, ErrSRSCorrupt
	}
	degree := int(binary.BigEndian.Uint32(blob[5:9]))
	if degree < 1 || len(blob) != 9+32*degree {
		return nil, ErrSRSCorrupt
	}
	generators := make([]*edwards25519.Point, degree)
	for i := range generators {
		seed := blob[9+32*i : 9+32*(i+1)]
		generators[i] = encodeSeedToGenerator(seed)
	}
	return generators, nil
}

// encodeSeedToGenerator maps an SRS slot seed to an independent
// generator point. Nobody knows discrete-log relations between slots.
func encodeSeedToGenerator(seed []byte) *edwards25519.Point {
	t := sha512.New()
	t.Write(srsDomain)
	t.Write(seed)
	s, err := new(edwards25519.Scalar).SetUniformBytes(t.Sum(nil))
	if err != nil {
		panic(err)
	}
	return new(edwards25519.Point).ScalarBaseMult(s)
}

// ProverKey addresses one slot of a padded ring.
type ProverKey struct {
	points     []*edwards25519.Point
	index      int
	commitment [32]byte
}

// VerifierKey is the padded ring together with its commitment.
type VerifierKey struct {
	points     []*edwards25519.Point
	commitment [32]byte
}

// ProverKey derives the proving key for ring with the signer at index.
// The ring order is authoritative: the caller-supplied sequence is used
// as is, padded to the maximum ring size.
func (p *Params) ProverKey(ring []*vrfed.Public, index int) (*ProverKey, error) {
	if index < 0 || index >= len(ring) {
		return nil, ErrIndexOutOfRange
	}
	points, err := p.padRing(ring)
	if err != nil {
		return nil, err
	}
	return &ProverKey{points: points, index: index, commitment: p.commit(points)}, nil
}

// VerifierKey derives the verifying key for ring.
func (p *Params) VerifierKey(ring []*vrfed.Public) (*VerifierKey, error) {
	points, err := p.padRing(ring)
	if err != nil {
		return nil, err
	}
	return &VerifierKey{points: points, commitment: p.commit(points)}, nil
}

// Commitment returns the 32-byte ring commitment. Identical ordered
// rings produce identical commitments.
func (vk *VerifierKey) Commitment() [32]byte { return vk.commitment }

func (p *Params) padRing(ring []*vrfed.Public) ([]*edwards25519.Point, error) {
	if len(ring) > p.maxRing {
		return nil, ErrRingTooLarge
	}
	points := make([]*edwards25519.Point, p.maxRing)
	for i, pk := range ring {
		points[i] = pk.Point()
	}
	pad := vrfed.PaddingPoint().Point()
	for i := len(ring); i < p.maxRing; i++ {
		points[i] = pad
	}
	return points, nil
}

// commit folds the padded ring into a single point: each slot
// contributes a slot-and-key dependent multiple of its SRS generator.
func (p *Params) commit(points []*edwards25519.Point) [32]byte {
	acc := edwards25519.NewIdentityPoint()
	var slot [2]byte
	for i, pt := range points {
		binary.BigEndian.PutUint16(slot[:], uint16(i))
		t := sha512.New()
		t.Write(commitDomain)
		t.Write(slot[:])
		t.Write(pt.Bytes())
		ti, err := new(edwards25519.Scalar).SetUniformBytes(t.Sum(nil))
		if err != nil {
			panic(err)
		}
		acc.Add(acc, new(edwards25519.Point).ScalarMult(ti, p.generators[i]))
	}
	return [32]byte(acc.Bytes())
}
