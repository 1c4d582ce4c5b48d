//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package authorizer validates work-package credentials and maintains
// the per-key nonce table that gives them replay protection.
package authorizer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
	"github.com/jamlabs/ringvrf/jam"
)

// Diagnostic tags. Failures are reported to the caller as the SHA-256
// of the tag bytes: a fixed-size, opaque, distinguishable outcome.
var (
	TagDecodeError      = diagnosticTag("DECODE_ERROR")
	TagInvalidNonce     = diagnosticTag("INVALID_NONCE")
	TagNoPayload        = diagnosticTag("NO_PAYLOAD")
	TagInvalidPubkey    = diagnosticTag("INVALID_PUBKEY")
	TagSignatureInvalid = diagnosticTag("SIGNATURE_INVALID")
	TagStateSaveError   = diagnosticTag("STATE_SAVE_ERROR")
)

func diagnosticTag(name string) []byte {
	sum := sha256.Sum256([]byte(name))
	return sum[:]
}

// Authorizer checks credentials carried in work packages. A single lock
// serializes every authorization from decode through persistence; the
// authorizer is a low-throughput component and the serialization is the
// documented bottleneck.
type Authorizer struct {
	mu    sync.Mutex
	state *AuthState
	store Store
	log   zerolog.Logger
}

// New loads durable state from store and returns an authorizer over it.
func New(store Store, log zerolog.Logger) (*Authorizer, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Authorizer{state: state, store: store, log: log}, nil
}

// IsAuthorized validates the credentials blob carried in param against
// the work package. On success it returns param unchanged; on failure
// it returns the matching diagnostic tag.
//
// The nonce advances before the signature is checked: a valid nonce
// paired with an invalid signature is consumed. This stops an attacker
// without the private key from probing a key by replaying nonces, and
// must not be reordered.
func (a *Authorizer) IsAuthorized(param []byte, pkg jam.WorkPackage) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	creds, err := jam.DecodeAuthCredentials(param)
	if err != nil {
		return TagDecodeError
	}

	publicKeyHex := hex.EncodeToString(creds.PublicKey[:])
	expected := a.state.Nonces[creds.PublicKey]
	if creds.Nonce != expected {
		a.log.Info().
			Str("public_key", publicKeyHex).
			Uint64("expected", expected).
			Uint64("got", creds.Nonce).
			Msg("authorization failed: invalid nonce")
		return TagInvalidNonce
	}

	a.state.Nonces[creds.PublicKey] = creds.Nonce + 1
	a.state.Records[publicKeyHex] = &Record{
		PublicKey:   publicKeyHex,
		Nonce:       creds.Nonce + 1,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Payload:     payloadSnapshot(pkg),
	}

	if err := a.store.Save(a.state); err != nil {
		a.log.Error().Err(err).Msg("failed to save authorizer state")
		return TagStateSaveError
	}

	if len(pkg.Items) == 0 {
		return TagNoPayload
	}
	payloadHash := sha256.Sum256(pkg.Items[0].Payload)

	if _, err := vrfed.PublicFromBytes(creds.PublicKey[:]); err != nil {
		return TagInvalidPubkey
	}
	if err := vrfed.VerifySignatureStrict(creds.PublicKey[:], payloadHash[:], creds.Signature[:]); err != nil {
		return TagSignatureInvalid
	}

	a.log.Info().Str("public_key", publicKeyHex).Msg("authorization successful")
	return param
}

// Nonce returns the stored nonce for a key. Used by callers that mirror
// the table into service state.
func (a *Authorizer) Nonce(key [32]byte) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Nonces[key]
}

func payloadSnapshot(pkg jam.WorkPackage) json.RawMessage {
	if len(pkg.Items) == 0 {
		return json.RawMessage(`{"error":"no_items"}`)
	}
	if json.Valid(pkg.Items[0].Payload) {
		return json.RawMessage(pkg.Items[0].Payload)
	}
	return json.RawMessage(`{"error":"invalid_payload"}`)
}
