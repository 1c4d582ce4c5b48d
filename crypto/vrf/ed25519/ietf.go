//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ed25519

import (
	"bytes"

	"filippo.io/edwards25519"
)

// IetfProofSize is the serialized size of a non-anonymous proof:
// a 16-byte truncated challenge followed by a 32-byte response scalar.
const IetfProofSize = 48

// IetfProve produces a non-anonymous proof that out is the VRF output of
// this secret at in, additionally binding aux.
func (s *Secret) IetfProve(in Input, out Output, aux []byte) []byte {
	hStr := in.point.Bytes()
	gammaStr := out.point.Bytes()
	pkStr := s.public.bytes

	nonce := generateNonce(s.nonceKey, hStr, gammaStr, aux)
	kB := new(edwards25519.Point).ScalarBaseMult(nonce)
	kH := new(edwards25519.Point).ScalarMult(nonce, in.point)
	cStr := generateChallenge(pkStr[:], hStr, gammaStr, kB.Bytes(), kH.Bytes(), aux)

	c, err := new(edwards25519.Scalar).SetCanonicalBytes(append(cStr, make([]byte, 16)...))
	if err != nil {
		panic(err)
	}
	resp := new(edwards25519.Scalar).MultiplyAdd(c, s.scalar, nonce)

	return append(cStr, resp.Bytes()...)
}

// IetfVerify checks a non-anonymous proof against this public key. A
// failed check is reported as ErrInvalidVRF.
func (p *Public) IetfVerify(in Input, out Output, aux, proof []byte) error {
	if len(proof) != IetfProofSize {
		return ErrInvalidVRF
	}
	cStr := proof[:16]
	cFull := make([]byte, 32)
	copy(cFull[:16], cStr)
	c, err := new(edwards25519.Scalar).SetCanonicalBytes(cFull)
	if err != nil {
		return ErrInvalidVRF
	}
	resp, err := new(edwards25519.Scalar).SetCanonicalBytes(proof[16:48])
	if err != nil {
		return ErrInvalidVRF
	}

	// U = s*B - c*A, V = s*H - c*Gamma. Both equal the prover's nonce
	// commitments iff the response was computed with the key's scalar.
	U := new(edwards25519.Point).ScalarBaseMult(resp)
	tmp := new(edwards25519.Point).ScalarMult(c, p.point)
	U.Subtract(U, tmp)

	V := new(edwards25519.Point).ScalarMult(resp, in.point)
	tmp.ScalarMult(c, out.point)
	V.Subtract(V, tmp)

	cPrime := generateChallenge(p.bytes[:], in.point.Bytes(), out.point.Bytes(), U.Bytes(), V.Bytes(), aux)
	if !bytes.Equal(cStr, cPrime) {
		return ErrInvalidVRF
	}
	return nil
}
