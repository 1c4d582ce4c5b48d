//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ed25519

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestNewInputDeterministic(t *testing.T) {
	msg := []byte("jam_ticket_seal input")
	a := NewInput(msg)
	b := NewInput(msg)
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("same message mapped to different input points")
	}
	c := NewInput([]byte("jam_ticket_seal inpuu"))
	if bytes.Equal(a.Bytes(), c.Bytes()) {
		t.Errorf("different messages mapped to the same input point")
	}
}

func TestSecretFromSeed(t *testing.T) {
	if _, err := SecretFromSeed(nil); err == nil {
		t.Error("empty seed accepted")
	}

	a, err := SecretFromSeed([]byte{1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := SecretFromSeed([]byte{1})
	if err != nil {
		t.Fatal(err)
	}
	if a.Public().Bytes() != b.Public().Bytes() {
		t.Errorf("equal seeds produced different keys")
	}
}

func TestOutputStability(t *testing.T) {
	sec, err := SecretFromSeed([]byte("stability"))
	if err != nil {
		t.Fatal(err)
	}
	in := NewInput([]byte("message"))
	first := sec.Output(in).Hash32()
	for i := 0; i < 4; i++ {
		if got := sec.Output(in).Hash32(); got != first {
			t.Fatalf("output hash changed across invocations: %x != %x", got, first)
		}
	}
}

func TestOutputRoundTrip(t *testing.T) {
	sec, err := SecretFromSeed([]byte("roundtrip"))
	if err != nil {
		t.Fatal(err)
	}
	out := sec.Output(NewInput([]byte("message")))
	decoded, err := OutputFromBytes(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Hash32() != out.Hash32() {
		t.Errorf("decoded output hashes differently")
	}
}

func TestPublicFromBytesRejectsLowOrder(t *testing.T) {
	// The identity is the canonical low-order point.
	var identity [32]byte
	identity[0] = 1
	if _, err := PublicFromBytes(identity[:]); err == nil {
		t.Error("low-order public key accepted")
	}
	if _, err := PublicFromBytes([]byte{1, 2, 3}); err == nil {
		t.Error("short public key accepted")
	}
}

func TestPaddingPointFixed(t *testing.T) {
	a := PaddingPoint().Bytes()
	b := PaddingPoint().Bytes()
	if a != b {
		t.Errorf("padding point is not fixed")
	}
}

func TestIetfProveVerify(t *testing.T) {
	sec, err := SecretFromSeed([]byte("ietf"))
	if err != nil {
		t.Fatal(err)
	}
	in := NewInput([]byte("message"))
	aux := []byte("aux")
	out := sec.Output(in)

	proof := sec.IetfProve(in, out, aux)
	if len(proof) != IetfProofSize {
		t.Fatalf("proof size = %d, want %d", len(proof), IetfProofSize)
	}
	if err := sec.Public().IetfVerify(in, out, aux, proof); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}

	// Tampered aux, input, and proof must all fail.
	if err := sec.Public().IetfVerify(in, out, []byte("axu"), proof); err == nil {
		t.Error("proof verified under different aux")
	}
	if err := sec.Public().IetfVerify(NewInput([]byte("other")), out, aux, proof); err == nil {
		t.Error("proof verified under different input")
	}
	bad := append([]byte{}, proof...)
	bad[0] ^= 1
	if err := sec.Public().IetfVerify(in, out, aux, bad); err == nil {
		t.Error("tampered proof verified")
	}

	// A different key's proof must not verify under this key.
	other, err := SecretFromSeed([]byte("ietf2"))
	if err != nil {
		t.Fatal(err)
	}
	otherOut := other.Output(in)
	otherProof := other.IetfProve(in, otherOut, aux)
	if err := sec.Public().IetfVerify(in, otherOut, aux, otherProof); err == nil {
		t.Error("proof verified under the wrong public key")
	}
}

func TestIetfProofDeterministic(t *testing.T) {
	sec, err := SecretFromSeed([]byte("deterministic"))
	if err != nil {
		t.Fatal(err)
	}
	in := NewInput([]byte("message"))
	out := sec.Output(in)
	a := sec.IetfProve(in, out, nil)
	b := sec.IetfProve(in, out, nil)
	if !bytes.Equal(a, b) {
		t.Errorf("proofs differ across invocations: %x != %x", a, b)
	}
}

func TestVerifySignatureStrict(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("payload hash stand-in")
	sig := ed25519.Sign(priv, msg)

	if err := VerifySignatureStrict(pub, msg, sig); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := VerifySignatureStrict(pub, []byte("other"), sig); err == nil {
		t.Error("signature verified over a different message")
	}

	tampered := append([]byte{}, sig...)
	tampered[0] ^= 1
	if err := VerifySignatureStrict(pub, msg, tampered); err == nil {
		t.Error("tampered signature verified")
	}
	if err := VerifySignatureStrict(pub[:31], msg, sig); err == nil {
		t.Error("short public key accepted")
	}
	if err := VerifySignatureStrict(pub, msg, sig[:63]); err == nil {
		t.Error("short signature accepted")
	}
}
