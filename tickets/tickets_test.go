//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package tickets

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
	"github.com/jamlabs/ringvrf/ring"
)

var testEta2, _ = hex.DecodeString("bb30a42c1e62f0afda5f0a4e8a562f7a13a24cea00ee81917b86b89e801314aa")

func testRing(t *testing.T, n int) ring.Ring {
	t.Helper()
	keys := make([]string, n)
	for i := range keys {
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i))
		sec, err := vrfed.SecretFromSeed(seed[:])
		require.NoError(t, err)
		pk := sec.Public().Bytes()
		keys[i] = hex.EncodeToString(pk[:])
	}
	ringSet, err := ring.DecodeRing(keys)
	require.NoError(t, err)
	return ringSet
}

func signTicket(t *testing.T, params *ringproof.Params, ringSet ring.Ring, index int, attempt uint8) string {
	t.Helper()
	prover, err := ring.NewProver(params, ringSet, index)
	require.NoError(t, err)
	sig, err := prover.RingVRFSign(SealInput(testEta2, attempt), nil)
	require.NoError(t, err)
	return "0x" + hex.EncodeToString(sig)
}

func gammaZ(t *testing.T, params *ringproof.Params, ringSet ring.Ring) []byte {
	t.Helper()
	verifier, err := ring.NewVerifier(params, ringSet)
	require.NoError(t, err)
	commitment := verifier.Commitment()
	return commitment[:]
}

func TestVerifyBatch(t *testing.T) {
	params := ringproof.Default()
	ringSet := testRing(t, 6)

	extrinsic := []Extrinsic{
		{Attempt: 1, Signature: signTicket(t, params, ringSet, 3, 1)},
		{Attempt: 2, Signature: signTicket(t, params, ringSet, 0, 2)},
		{Attempt: 3, Signature: "not-hex"},
		{Attempt: 1, Signature: signTicket(t, params, ringSet, 3, 2)}, // attempt mismatch
	}

	results, err := VerifyBatch(params, gammaZ(t, params, ringSet), ringSet, testEta2, extrinsic)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK)
	assert.Equal(t, "ticket 1 verified successfully", results[0].Message)
	assert.Len(t, results[0].OutputHash, 32)

	assert.True(t, results[1].OK)

	// A malformed signature fails only its own ticket.
	assert.False(t, results[2].OK)
	assert.Contains(t, results[2].Message, "failed to decode signature")
	assert.Nil(t, results[2].OutputHash)

	// A signature over the wrong attempt index does not verify.
	assert.False(t, results[3].OK)
	assert.Equal(t, "ticket 1 verification failed", results[3].Message)
}

func TestVerifyBatchCommitmentMismatch(t *testing.T) {
	params := ringproof.Default()
	ringSet := testRing(t, 6)

	bad := gammaZ(t, params, ringSet)
	bad[0] ^= 1

	extrinsic := []Extrinsic{{Attempt: 1, Signature: signTicket(t, params, ringSet, 3, 1)}}
	results, err := VerifyBatch(params, bad, ringSet, testEta2, extrinsic)
	require.NoError(t, err)

	// One synthetic result; no ticket was verified.
	require.Len(t, results, 1)
	assert.EqualValues(t, 0, results[0].Attempt)
	assert.False(t, results[0].OK)
	assert.Equal(t, "calculated commitment (gamma_z) does not match the provided gamma_z", results[0].Message)
}

func TestVerifyBatchOrderIndependent(t *testing.T) {
	params := ringproof.Default()
	ringSet := testRing(t, 6)

	a := Extrinsic{Attempt: 1, Signature: signTicket(t, params, ringSet, 1, 1)}
	b := Extrinsic{Attempt: 2, Signature: signTicket(t, params, ringSet, 4, 2)}

	forward, err := VerifyBatch(params, gammaZ(t, params, ringSet), ringSet, testEta2, []Extrinsic{a, b})
	require.NoError(t, err)
	backward, err := VerifyBatch(params, gammaZ(t, params, ringSet), ringSet, testEta2, []Extrinsic{b, a})
	require.NoError(t, err)

	assert.Equal(t, forward[0], backward[1])
	assert.Equal(t, forward[1], backward[0])
}

func TestSealInput(t *testing.T) {
	in := SealInput(testEta2, 7)
	assert.Equal(t, []byte(SealContext), in[:15])
	assert.Equal(t, testEta2, in[15:47])
	assert.EqualValues(t, 7, in[47])
}

func TestResultJSON(t *testing.T) {
	raw, err := json.Marshal(Result{Attempt: 1, OK: true, OutputHash: []byte{0xab, 0xcd}, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"attempt":1,"ok":true,"output_hash":"0xabcd","message":"m"}`, string(raw))

	raw, err = json.Marshal(Result{Attempt: 2, Message: "nope"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"attempt":2,"ok":false,"output_hash":null,"message":"nope"}`, string(raw))
}
