//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package service implements the work-package service entry points:
// refine, accumulate and on_transfer over a single in-memory state.
package service

import (
	"crypto/sha256"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jamlabs/ringvrf/jam"
)

// State is the service's mutable state. It is only read or written
// under the service lock.
type State struct {
	Counter         uint64
	LastPayloadHash [32]byte
	Admin           uint64
	Nonces          map[[32]byte]uint64
}

func newState(admin uint64) State {
	return State{Admin: admin, Nonces: make(map[[32]byte]uint64)}
}

// Clone returns a snapshot safe to use outside the lock.
func (s State) Clone() State {
	out := s
	out.Nonces = make(map[[32]byte]uint64, len(s.Nonces))
	for k, v := range s.Nonces {
		out.Nonces[k] = v
	}
	return out
}

// Service serializes all state transitions behind one lock so that
// concurrent entry-point calls observe a serializable history.
type Service struct {
	mu    sync.Mutex
	state State
	log   zerolog.Logger
}

// New returns a service with fresh state owned by the given admin.
func New(admin uint64, log zerolog.Logger) *Service {
	return &Service{state: newState(admin), log: log}
}

// State returns a snapshot of the current state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Refine transforms a work payload. It is stateless.
func (s *Service) Refine(payload []byte) []byte {
	out := make([]byte, 0, len("Refined: ")+len(payload))
	out = append(out, "Refined: "...)
	return append(out, payload...)
}

// Accumulate applies the first item's result to the state: a successful
// item bumps the counter, records the payload hash, and if its auth
// output decodes as credentials, advances that key's nonce. An
// undecodable auth output is logged and skipped.
func (s *Service) Accumulate(items []jam.AccumulateItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		s.log.Info().Msg("accumulate: no items")
		return
	}
	item := items[0]
	if !item.OK {
		s.log.Info().Msg("accumulate: item result was an error, skipping state update")
		return
	}

	s.state.Counter++
	s.state.LastPayloadHash = hashPayload(item.Payload)

	creds, err := jam.DecodeAuthCredentials(item.AuthOutput)
	if err != nil {
		s.log.Info().Err(err).Msg("accumulate: auth output is not credentials, skipping nonce update")
	} else {
		s.state.Nonces[creds.PublicKey]++
		s.log.Info().
			Hex("public_key", creds.PublicKey[:]).
			Uint64("nonce", s.state.Nonces[creds.PublicKey]).
			Msg("accumulate: nonce incremented")
	}

	s.log.Info().Uint64("counter", s.state.Counter).Msg("accumulate: state updated")
}

// OnTransfer decodes each transfer's memo as a ServiceCommand and
// applies it. Undecodable memos are ignored. ResetState preserves the
// admin and requires the transfer to originate from them.
func (s *Service) OnTransfer(transfers []jam.TransferRecord) {
	if len(transfers) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, transfer := range transfers {
		cmd, err := jam.DecodeServiceCommand(transfer.Memo)
		if err != nil {
			s.log.Info().Msg("on_transfer: could not decode command from memo")
			continue
		}
		switch cmd.Kind {
		case jam.IncrementCounter:
			s.state.Counter += cmd.By
		case jam.ResetState:
			if transfer.Source != s.state.Admin {
				s.log.Info().Uint64("source", transfer.Source).Msg("on_transfer: reset denied, admin only")
				continue
			}
			admin := s.state.Admin
			s.state = newState(admin)
		}
	}

	s.log.Info().Uint64("counter", s.state.Counter).Msg("on_transfer: state updated")
}

func hashPayload(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}
