//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ringproof

import (
	"encoding/binary"
	"testing"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
)

func testSecrets(t *testing.T, n int) []*vrfed.Secret {
	t.Helper()
	secrets := make([]*vrfed.Secret, n)
	for i := range secrets {
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i))
		sec, err := vrfed.SecretFromSeed(seed[:])
		if err != nil {
			t.Fatal(err)
		}
		secrets[i] = sec
	}
	return secrets
}

func testRing(t *testing.T, n int) []*vrfed.Public {
	t.Helper()
	secrets := testSecrets(t, n)
	ring := make([]*vrfed.Public, n)
	for i, sec := range secrets {
		ring[i] = sec.Public()
	}
	return ring
}

func TestNewParams(t *testing.T) {
	p, err := NewParams(DefaultMaxRing)
	if err != nil {
		t.Fatal(err)
	}
	if p.MaxRing() != DefaultMaxRing {
		t.Errorf("max ring = %d, want %d", p.MaxRing(), DefaultMaxRing)
	}
	if p.ProofSize() != 32+32*DefaultMaxRing {
		t.Errorf("proof size = %d", p.ProofSize())
	}

	if _, err := NewParams(0); err == nil {
		t.Error("zero max ring accepted")
	}
	if _, err := NewParams(1 << 20); err == nil {
		t.Error("max ring beyond SRS degree accepted")
	}
}

func TestCommitmentDeterminism(t *testing.T) {
	p := Default()
	ring := testRing(t, 6)

	a, err := p.VerifierKey(ring)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.VerifierKey(ring)
	if err != nil {
		t.Fatal(err)
	}
	if a.Commitment() != b.Commitment() {
		t.Errorf("same ring produced different commitments")
	}

	// Swapping two slots must change the commitment.
	swapped := append([]*vrfed.Public{}, ring...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	c, err := p.VerifierKey(swapped)
	if err != nil {
		t.Fatal(err)
	}
	if a.Commitment() == c.Commitment() {
		t.Errorf("reordered ring produced the same commitment")
	}
}

func TestCommitmentPadding(t *testing.T) {
	p := Default()
	ring := testRing(t, 4)

	short, err := p.VerifierKey(ring)
	if err != nil {
		t.Fatal(err)
	}

	// Explicitly padding to the maximum size must give the same commitment.
	padded := append([]*vrfed.Public{}, ring...)
	for len(padded) < p.MaxRing() {
		padded = append(padded, vrfed.PaddingPoint())
	}
	full, err := p.VerifierKey(padded)
	if err != nil {
		t.Fatal(err)
	}
	if short.Commitment() != full.Commitment() {
		t.Errorf("implicit and explicit padding disagree")
	}

	oversize := make([]*vrfed.Public, p.MaxRing()+1)
	for i := range oversize {
		oversize[i] = ring[0]
	}
	if _, err := p.VerifierKey(oversize); err != ErrRingTooLarge {
		t.Errorf("oversize ring error = %v, want ErrRingTooLarge", err)
	}
}

func TestProveVerify(t *testing.T) {
	p := Default()
	secrets := testSecrets(t, 6)
	ring := testRing(t, 6)

	in := vrfed.NewInput([]byte("message"))
	aux := []byte("aux")

	vk, err := p.VerifierKey(ring)
	if err != nil {
		t.Fatal(err)
	}

	// Every ring position can produce a verifying proof of fixed size.
	for index, sec := range secrets {
		pk, err := p.ProverKey(ring, index)
		if err != nil {
			t.Fatal(err)
		}
		out := sec.Output(in)
		proof, err := p.Prove(sec, in, out, aux, pk)
		if err != nil {
			t.Fatal(err)
		}
		if len(proof) != p.ProofSize() {
			t.Fatalf("index %d: proof size = %d, want %d", index, len(proof), p.ProofSize())
		}
		if err := p.Verify(in, out, aux, proof, vk); err != nil {
			t.Errorf("index %d: valid proof rejected: %v", index, err)
		}
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	p := Default()
	secrets := testSecrets(t, 6)
	ring := testRing(t, 6)

	in := vrfed.NewInput([]byte("message"))
	aux := []byte("aux")

	pk, err := p.ProverKey(ring, 2)
	if err != nil {
		t.Fatal(err)
	}
	vk, err := p.VerifierKey(ring)
	if err != nil {
		t.Fatal(err)
	}
	out := secrets[2].Output(in)
	proof, err := p.Prove(secrets[2], in, out, aux, pk)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Verify(in, out, []byte("axu"), proof, vk); err == nil {
		t.Error("proof verified under different aux")
	}
	if err := p.Verify(vrfed.NewInput([]byte("other")), out, aux, proof, vk); err == nil {
		t.Error("proof verified under different input")
	}
	if err := p.Verify(in, out, aux, proof[:len(proof)-1], vk); err == nil {
		t.Error("truncated proof verified")
	}
	bad := append([]byte{}, proof...)
	bad[40] ^= 1
	if err := p.Verify(in, out, aux, bad, vk); err == nil {
		t.Error("tampered proof verified")
	}

	// A proof is bound to the exact ordered ring.
	swapped := append([]*vrfed.Public{}, ring...)
	swapped[4], swapped[5] = swapped[5], swapped[4]
	swappedVK, err := p.VerifierKey(swapped)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Verify(in, out, aux, proof, swappedVK); err == nil {
		t.Error("proof verified against a reordered ring")
	}

	// A mismatched output must not verify.
	wrongOut := secrets[3].Output(in)
	if err := p.Verify(in, wrongOut, aux, proof, vk); err == nil {
		t.Error("proof verified against a different output")
	}
}

func TestProverIndexBounds(t *testing.T) {
	p := Default()
	ring := testRing(t, 3)
	if _, err := p.ProverKey(ring, -1); err != ErrIndexOutOfRange {
		t.Errorf("negative index error = %v", err)
	}
	if _, err := p.ProverKey(ring, 3); err != ErrIndexOutOfRange {
		t.Errorf("out of range index error = %v", err)
	}
}
