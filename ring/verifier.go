//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ring

import (
	"github.com/jamlabs/ringvrf/crypto/vrf"
	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
)

// Verifier checks signatures against a fixed ring. The ring commitment
// is computed once at construction.
type Verifier struct {
	params *ringproof.Params
	ring   Ring
	vk     *ringproof.VerifierKey
}

var _ vrf.PublicKey = (*Verifier)(nil)

// NewVerifier builds a verifier over ring, computing and caching the
// ring commitment.
func NewVerifier(params *ringproof.Params, ring Ring) (*Verifier, error) {
	vk, err := params.VerifierKey(ring.Publics())
	if err != nil {
		return nil, err
	}
	return &Verifier{params: params, ring: ring, vk: vk}, nil
}

// Commitment returns the cached ring commitment gamma_z.
func (v *Verifier) Commitment() [32]byte { return v.vk.Commitment() }

// RingVRFVerify checks an anonymous ring signature over msg with aux.
// On success it returns the 32-byte VRF output hash; a failed check is
// reported as ErrVerificationFailed.
func (v *Verifier) RingVRFVerify(msg, aux, sig []byte) ([32]byte, error) {
	var nilHash [32]byte
	if len(sig) != 32+v.params.ProofSize() {
		return nilHash, ErrVerificationFailed
	}
	out, err := vrfed.OutputFromBytes(sig[:32])
	if err != nil {
		return nilHash, ErrVerificationFailed
	}
	in := vrfed.NewInput(msg)
	if err := v.params.Verify(in, out, aux, sig[32:], v.vk); err != nil {
		return nilHash, ErrVerificationFailed
	}
	return out.Hash32(), nil
}

// IetfVRFVerify checks a non-anonymous signature against the ring key
// at signerIndex. An out-of-range index is a failed verification, not a
// fault.
func (v *Verifier) IetfVRFVerify(msg, aux, sig []byte, signerIndex int) ([32]byte, error) {
	var nilHash [32]byte
	if signerIndex < 0 || signerIndex >= len(v.ring) {
		return nilHash, ErrVerificationFailed
	}
	if len(sig) != 32+vrfed.IetfProofSize {
		return nilHash, ErrVerificationFailed
	}
	out, err := vrfed.OutputFromBytes(sig[:32])
	if err != nil {
		return nilHash, ErrVerificationFailed
	}
	in := vrfed.NewInput(msg)
	if err := v.ring[signerIndex].pub.IetfVerify(in, out, aux, sig[32:]); err != nil {
		return nilHash, ErrVerificationFailed
	}
	return out.Hash32(), nil
}
