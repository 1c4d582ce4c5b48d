//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ring

import (
	"encoding/binary"

	"github.com/jamlabs/ringvrf/crypto/vrf"
	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
)

// Prover signs on behalf of one slot of a ring. The secret is derived
// deterministically from the slot index seed; for ring proofs to verify
// the index must address the slot holding the prover's own public key.
type Prover struct {
	params *ringproof.Params
	ring   Ring
	index  int
	secret *vrfed.Secret
	pk     *ringproof.ProverKey
}

var _ vrf.PrivateKey = (*Prover)(nil)

// NewProver builds a prover over ring with the signer at index.
func NewProver(params *ringproof.Params, ring Ring, index int) (*Prover, error) {
	if index < 0 || index >= len(ring) {
		return nil, ErrIndexOutOfRange
	}
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], uint64(index))
	secret, err := vrfed.SecretFromSeed(seed[:])
	if err != nil {
		return nil, err
	}
	return newProverWithSecret(params, ring, index, secret)
}

// NewProverWithSecret builds a prover with an explicit secret instead
// of the index-seeded one.
func NewProverWithSecret(params *ringproof.Params, ring Ring, index int, secret *vrfed.Secret) (*Prover, error) {
	if index < 0 || index >= len(ring) {
		return nil, ErrIndexOutOfRange
	}
	return newProverWithSecret(params, ring, index, secret)
}

func newProverWithSecret(params *ringproof.Params, ring Ring, index int, secret *vrfed.Secret) (*Prover, error) {
	pk, err := params.ProverKey(ring.Publics(), index)
	if err != nil {
		return nil, err
	}
	return &Prover{params: params, ring: ring, index: index, secret: secret, pk: pk}, nil
}

// Public returns the ring key at the prover's slot.
func (p *Prover) Public() PublicKey { return p.ring[p.index] }

// Index returns the prover's ring position.
func (p *Prover) Index() int { return p.index }

// VRFOutput evaluates the VRF at msg and returns the first 32 bytes of
// the output hash. The result is independent of the ring and the index.
func (p *Prover) VRFOutput(msg []byte) [32]byte {
	in := vrfed.NewInput(msg)
	return p.secret.Output(in).Hash32()
}

// RingVRFSign produces an anonymous ring signature binding msg and aux:
// the serialized output point followed by the ring proof.
func (p *Prover) RingVRFSign(msg, aux []byte) ([]byte, error) {
	in := vrfed.NewInput(msg)
	out := p.secret.Output(in)
	proof, err := p.params.Prove(p.secret, in, out, aux, p.pk)
	if err != nil {
		return nil, err
	}
	return append(out.Bytes(), proof...), nil
}

// IetfVRFSign produces a non-anonymous signature binding msg and aux.
// No ring parameters participate.
func (p *Prover) IetfVRFSign(msg, aux []byte) ([]byte, error) {
	in := vrfed.NewInput(msg)
	out := p.secret.Output(in)
	proof := p.secret.IetfProve(in, out, aux)
	return append(out.Bytes(), proof...), nil
}
