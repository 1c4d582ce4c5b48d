//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package tickets verifies JAM ticket extrinsic batches against a ring
// commitment.
package tickets

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
	"github.com/jamlabs/ringvrf/ring"
)

// SealContext is the domain separator mixed into every ticket VRF
// input. The attempt index is appended as a single raw byte.
const SealContext = "jam_ticket_seal"

// Extrinsic is one submitted ticket: an attempt index and a
// hex-encoded ring signature.
type Extrinsic struct {
	Attempt   uint8  `json:"attempt"`
	Signature string `json:"signature"`
}

// Result is the verification outcome for one ticket. OutputHash is nil
// unless the ticket verified.
type Result struct {
	Attempt    uint8  `json:"attempt"`
	OK         bool   `json:"ok"`
	OutputHash []byte `json:"-"`
	Message    string `json:"message"`
}

// MarshalJSON renders OutputHash as a 0x-prefixed hex string, or null
// when the ticket did not verify.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	var hash *string
	if r.OutputHash != nil {
		s := "0x" + hex.EncodeToString(r.OutputHash)
		hash = &s
	}
	return json.Marshal(struct {
		alias
		OutputHash *string `json:"output_hash"`
	}{alias(r), hash})
}

// SealInput builds the VRF input for one ticket attempt:
// seal context, entropy, attempt byte.
func SealInput(eta2 []byte, attempt uint8) []byte {
	in := make([]byte, 0, len(SealContext)+len(eta2)+1)
	in = append(in, SealContext...)
	in = append(in, eta2...)
	in = append(in, attempt)
	return in
}

// VerifyBatch checks every ticket in extrinsic against the ring and the
// claimed commitment gammaZ. If the commitment derived from the ring
// does not match gammaZ, a single synthetic failure result is returned
// and no ticket is verified. Ticket results are independent of each
// other and reported in input order; a signature that fails to decode
// fails only its own ticket.
func VerifyBatch(params *ringproof.Params, gammaZ []byte, ringSet ring.Ring, eta2 []byte, extrinsic []Extrinsic) ([]Result, error) {
	verifier, err := ring.NewVerifier(params, ringSet)
	if err != nil {
		return nil, err
	}

	commitment := verifier.Commitment()
	if !bytes.Equal(commitment[:], gammaZ) {
		return []Result{{
			Attempt: 0,
			OK:      false,
			Message: "calculated commitment (gamma_z) does not match the provided gamma_z",
		}}, nil
	}

	results := make([]Result, 0, len(extrinsic))
	for _, item := range extrinsic {
		sig, err := hex.DecodeString(strings.TrimPrefix(item.Signature, "0x"))
		if err != nil {
			results = append(results, Result{
				Attempt: item.Attempt,
				Message: fmt.Sprintf("failed to decode signature: %v", err),
			})
			continue
		}

		hash, err := verifier.RingVRFVerify(SealInput(eta2, item.Attempt), nil, sig)
		if err != nil {
			results = append(results, Result{
				Attempt: item.Attempt,
				Message: fmt.Sprintf("ticket %d verification failed", item.Attempt),
			})
			continue
		}
		results = append(results, Result{
			Attempt:    item.Attempt,
			OK:         true,
			OutputHash: hash[:],
			Message:    fmt.Sprintf("ticket %d verified successfully", item.Attempt),
		})
	}
	return results, nil
}
