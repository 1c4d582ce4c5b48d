//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ring

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
)

// testRingHex returns the hex keys of n index-seeded ring members.
func testRingHex(t *testing.T, n int) []string {
	t.Helper()
	keys := make([]string, n)
	for i := range keys {
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i))
		sec, err := vrfed.SecretFromSeed(seed[:])
		if err != nil {
			t.Fatal(err)
		}
		pk := sec.Public().Bytes()
		keys[i] = "0x" + hex.EncodeToString(pk[:])
	}
	return keys
}

func TestDecodeKey(t *testing.T) {
	if _, err := DecodeKey(make([]byte, 31)); err == nil {
		t.Error("short key accepted")
	}
	if _, err := DecodeKeyHex("zz"); err == nil {
		t.Error("bad hex accepted")
	}

	// The all-zero key is the padding sentinel.
	padded, err := DecodeKey(make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	if !padded.IsPadding() {
		t.Error("all-zero key not treated as padding")
	}
	if padded.Bytes() != vrfed.PaddingPoint().Bytes() {
		t.Error("padding key does not decode to the padding point")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	params := ringproof.Default()
	ringSet, err := DecodeRing(testRingHex(t, 6))
	if err != nil {
		t.Fatal(err)
	}

	eta2, err := hex.DecodeString("bb30a42c1e62f0afda5f0a4e8a562f7a13a24cea00ee81917b86b89e801314aa")
	if err != nil {
		t.Fatal(err)
	}
	msg := append(append([]byte("jam_ticket_seal"), eta2...), 1)
	aux := []byte{}

	prover, err := NewProver(params, ringSet, 3)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := prover.RingVRFSign(msg, aux)
	if err != nil {
		t.Fatal(err)
	}

	verifier, err := NewVerifier(params, ringSet)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := verifier.RingVRFVerify(msg, aux, sig)
	if err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if want := prover.VRFOutput(msg); hash != want {
		t.Errorf("verified output hash = %x, want %x", hash, want)
	}

	// A fresh verifier over the same ordered keys computes the same
	// commitment.
	verifier2, err := NewVerifier(params, ringSet)
	if err != nil {
		t.Fatal(err)
	}
	if verifier.Commitment() != verifier2.Commitment() {
		t.Error("fresh verifier computed a different commitment")
	}

	if _, err := verifier.RingVRFVerify(append(msg, 0xff), aux, sig); err != ErrVerificationFailed {
		t.Errorf("wrong message error = %v, want ErrVerificationFailed", err)
	}
	if _, err := verifier.RingVRFVerify(msg, aux, sig[:16]); err != ErrVerificationFailed {
		t.Errorf("truncated signature error = %v, want ErrVerificationFailed", err)
	}
}

func TestPaddedRingSigning(t *testing.T) {
	params := ringproof.Default()
	keys := testRingHex(t, 6)
	keys[5] = "0x" + hex.EncodeToString(make([]byte, 32))
	ringSet, err := DecodeRing(keys)
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("padded ring message")
	for _, index := range []int{0, 2, 4} {
		prover, err := NewProver(params, ringSet, index)
		if err != nil {
			t.Fatal(err)
		}
		sig, err := prover.RingVRFSign(msg, nil)
		if err != nil {
			t.Fatal(err)
		}
		verifier, err := NewVerifier(params, ringSet)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := verifier.RingVRFVerify(msg, nil, sig); err != nil {
			t.Errorf("index %d: signature over padded ring rejected: %v", index, err)
		}
	}
}

func TestVRFOutputIndependentOfRing(t *testing.T) {
	params := ringproof.Default()
	sec, err := vrfed.SecretFromSeed([]byte("independent"))
	if err != nil {
		t.Fatal(err)
	}

	ringA, err := DecodeRing(testRingHex(t, 6))
	if err != nil {
		t.Fatal(err)
	}
	ringB, err := DecodeRing(testRingHex(t, 3))
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("message")
	proverA, err := NewProverWithSecret(params, ringA, 1, sec)
	if err != nil {
		t.Fatal(err)
	}
	proverB, err := NewProverWithSecret(params, ringB, 2, sec)
	if err != nil {
		t.Fatal(err)
	}
	if proverA.VRFOutput(msg) != proverB.VRFOutput(msg) {
		t.Error("VRF output depends on the enclosing ring")
	}
}

func TestIetfSignVerify(t *testing.T) {
	params := ringproof.Default()
	ringSet, err := DecodeRing(testRingHex(t, 6))
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("ietf message")
	aux := []byte("aux")

	prover, err := NewProver(params, ringSet, 2)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := prover.IetfVRFSign(msg, aux)
	if err != nil {
		t.Fatal(err)
	}

	verifier, err := NewVerifier(params, ringSet)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := verifier.IetfVRFVerify(msg, aux, sig, 2)
	if err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if want := prover.VRFOutput(msg); hash != want {
		t.Errorf("verified output hash = %x, want %x", hash, want)
	}

	// A different signer index is a failed verification, not a fault.
	if _, err := verifier.IetfVRFVerify(msg, aux, sig, 3); err != ErrVerificationFailed {
		t.Errorf("wrong index error = %v, want ErrVerificationFailed", err)
	}
	if _, err := verifier.IetfVRFVerify(msg, aux, sig, 17); err != ErrVerificationFailed {
		t.Errorf("out-of-range index error = %v, want ErrVerificationFailed", err)
	}
	if _, err := verifier.IetfVRFVerify(msg, aux, sig, -1); err != ErrVerificationFailed {
		t.Errorf("negative index error = %v, want ErrVerificationFailed", err)
	}
}

func TestNewProverIndexBounds(t *testing.T) {
	params := ringproof.Default()
	ringSet, err := DecodeRing(testRingHex(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewProver(params, ringSet, 3); err != ErrIndexOutOfRange {
		t.Errorf("out of range index error = %v", err)
	}
	if _, err := NewProver(params, ringSet, -1); err != ErrIndexOutOfRange {
		t.Errorf("negative index error = %v", err)
	}
}
