//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package authorizer

import (
	"encoding/hex"
	"encoding/json"
)

// Record mirrors one key's authorization in textual form.
type Record struct {
	PublicKey   string          `json:"public_key"`
	Nonce       uint64          `json:"nonce"`
	LastUpdated string          `json:"last_updated"`
	Payload     json.RawMessage `json:"payload"`
}

// AuthState is the authorizer's durable state: the authoritative nonce
// table plus its hex-keyed record mirror.
type AuthState struct {
	Nonces  map[[32]byte]uint64
	Records map[string]*Record
}

// NewAuthState returns an empty state.
func NewAuthState() *AuthState {
	return &AuthState{
		Nonces:  make(map[[32]byte]uint64),
		Records: make(map[string]*Record),
	}
}

// persistedState is the JSON shape of the state file: nonces keyed by
// 64-char lowercase hex, and the record mirror.
type persistedState struct {
	Nonces         map[string]uint64  `json:"nonces"`
	Authorizations map[string]*Record `json:"authorizations"`
}

func marshalState(s *AuthState) ([]byte, error) {
	p := persistedState{
		Nonces:         make(map[string]uint64, len(s.Nonces)),
		Authorizations: s.Records,
	}
	for key, nonce := range s.Nonces {
		p.Nonces[hex.EncodeToString(key[:])] = nonce
	}
	return json.MarshalIndent(p, "", "  ")
}

// parseState reads a persisted state, tolerating unexpected shapes: a
// file without a nonce table falls back to reconstructing nonces from
// the authorizations table, and anything unparsable yields empty state.
func parseState(raw []byte) *AuthState {
	state := NewAuthState()

	var p persistedState
	if err := json.Unmarshal(raw, &p); err != nil {
		var generic map[string]json.RawMessage
		if err := json.Unmarshal(raw, &generic); err != nil {
			return state
		}
		if err := json.Unmarshal(generic["authorizations"], &p.Authorizations); err != nil {
			return state
		}
	}

	for hexKey, record := range p.Authorizations {
		if record == nil {
			continue
		}
		state.Records[hexKey] = record
	}
	for hexKey, nonce := range p.Nonces {
		if key, ok := decodeKey32(hexKey); ok {
			state.Nonces[key] = nonce
		}
	}
	if len(state.Nonces) == 0 {
		for hexKey, record := range state.Records {
			if key, ok := decodeKey32(hexKey); ok {
				state.Nonces[key] = record.Nonce
			}
		}
	}
	return state
}

func decodeKey32(s string) ([32]byte, bool) {
	var key [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return key, false
	}
	copy(key[:], raw)
	return key, true
}
