//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ringproof

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"errors"

	"filippo.io/edwards25519"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
)

// ErrInvalidRingProof occurs when a ring proof does not validate.
var ErrInvalidRingProof = errors.New("invalid ring proof")

// Prove produces an anonymous proof that the secret behind one ring
// slot evaluated the VRF input to out, binding aux. The signer slot is
// pk's index; the proof does not reveal it.
//
// The construction is a ring of linked discrete-log-equality proofs:
// every non-signer slot gets a simulated transcript, the signer slot
// closes the challenge chain with a real response. The chain is seeded
// from the ring commitment, input, output and aux, so a proof is bound
// to the exact ordered ring it was produced for.
func (p *Params) Prove(sec *vrfed.Secret, in vrfed.Input, out vrfed.Output, aux []byte, pk *ProverKey) ([]byte, error) {
	n := p.maxRing
	if pk.index < 0 || pk.index >= n {
		return nil, ErrIndexOutOfRange
	}

	inBytes := in.Bytes()
	outPoint, err := new(edwards25519.Point).SetBytes(out.Bytes())
	if err != nil {
		panic(err)
	}
	inPoint, err := new(edwards25519.Point).SetBytes(inBytes)
	if err != nil {
		panic(err)
	}

	cs := make([]*edwards25519.Scalar, n)
	ss := make([]*edwards25519.Scalar, n)

	j := pk.index
	r := randomScalar()
	aj := new(edwards25519.Point).ScalarBaseMult(r)
	bj := new(edwards25519.Point).ScalarMult(r, inPoint)
	cs[(j+1)%n] = p.chainChallenge(pk.commitment, inBytes, out.Bytes(), aux, j, aj, bj)

	for t := 1; t < n; t++ {
		k := (j + t) % n
		ss[k] = randomScalar()
		a := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(cs[k], pk.points[k], ss[k])
		b := new(edwards25519.Point).ScalarMult(ss[k], inPoint)
		b.Add(b, new(edwards25519.Point).ScalarMult(cs[k], outPoint))
		cs[(k+1)%n] = p.chainChallenge(pk.commitment, inBytes, out.Bytes(), aux, k, a, b)
	}

	// Close the chain: s_j = r - c_j * x.
	ss[j] = new(edwards25519.Scalar).Subtract(r, new(edwards25519.Scalar).Multiply(cs[j], sec.Scalar()))

	proof := make([]byte, 0, p.ProofSize())
	proof = append(proof, cs[0].Bytes()...)
	for _, s := range ss {
		proof = append(proof, s.Bytes()...)
	}
	return proof, nil
}

// Verify checks an anonymous ring proof. A failed check is reported as
// ErrInvalidRingProof; it is a benign outcome, not a fault.
func (p *Params) Verify(in vrfed.Input, out vrfed.Output, aux, proof []byte, vk *VerifierKey) error {
	n := p.maxRing
	if len(proof) != p.ProofSize() {
		return ErrInvalidRingProof
	}
	c0, err := new(edwards25519.Scalar).SetCanonicalBytes(proof[:32])
	if err != nil {
		return ErrInvalidRingProof
	}
	ss := make([]*edwards25519.Scalar, n)
	for k := range ss {
		ss[k], err = new(edwards25519.Scalar).SetCanonicalBytes(proof[32+32*k : 64+32*k])
		if err != nil {
			return ErrInvalidRingProof
		}
	}

	inBytes := in.Bytes()
	inPoint, err := new(edwards25519.Point).SetBytes(inBytes)
	if err != nil {
		panic(err)
	}
	outPoint, err := new(edwards25519.Point).SetBytes(out.Bytes())
	if err != nil {
		return ErrInvalidRingProof
	}

	c := c0
	for k := 0; k < n; k++ {
		a := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, vk.points[k], ss[k])
		b := new(edwards25519.Point).ScalarMult(ss[k], inPoint)
		b.Add(b, new(edwards25519.Point).ScalarMult(c, outPoint))
		c = p.chainChallenge(vk.commitment, inBytes, out.Bytes(), aux, k, a, b)
	}
	if c.Equal(c0) != 1 {
		return ErrInvalidRingProof
	}
	return nil
}

func (p *Params) chainChallenge(commitment [32]byte, in, out, aux []byte, slot int, a, b *edwards25519.Point) *edwards25519.Scalar {
	var slotBytes [2]byte
	binary.BigEndian.PutUint16(slotBytes[:], uint16(slot))

	h := sha512.New()
	h.Write(chainDomain)
	h.Write(commitment[:])
	h.Write(in)
	h.Write(out)
	h.Write(aux)
	h.Write(slotBytes[:])
	h.Write(a.Bytes())
	h.Write(b.Bytes())
	c, err := new(edwards25519.Scalar).SetUniformBytes(h.Sum(nil))
	if err != nil {
		panic(err)
	}
	return c
}

func randomScalar() *edwards25519.Scalar {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	s, err := new(edwards25519.Scalar).SetUniformBytes(buf[:])
	if err != nil {
		panic(err)
	}
	return s
}
