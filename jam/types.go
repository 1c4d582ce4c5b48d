//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Package jam holds the wire types shared by the work-package
// authorizer and the service entry points, with their fixed-layout
// binary codec.
package jam

// WorkItem is one opaque payload inside a work package. Only the first
// item's payload bytes are interpreted by the authorizer.
type WorkItem struct {
	Payload []byte
}

// WorkPackage is the payload container submitted for authorization.
type WorkPackage struct {
	Items []WorkItem
}

// AuthCredentials authorizes a work package: an Ed25519 public key, a
// signature over the SHA-256 of the first item's payload, and a
// replay-protection nonce.
type AuthCredentials struct {
	PublicKey [32]byte
	Signature [64]byte
	Nonce     uint64
}

// AccumulateItem is one refined result delivered to accumulate.
type AccumulateItem struct {
	Payload    []byte
	AuthOutput []byte
	OK         bool
}

// TransferRecord is one incoming transfer delivered to on_transfer.
// The memo may carry an encoded ServiceCommand.
type TransferRecord struct {
	Source uint64
	Memo   []byte
}

// ServiceCommandKind tags the ServiceCommand variants.
type ServiceCommandKind uint8

const (
	// IncrementCounter adds By to the service counter.
	IncrementCounter ServiceCommandKind = iota
	// ResetState resets the service state; admin only.
	ResetState
)

// ServiceCommand is a command carried in a transfer memo.
type ServiceCommand struct {
	Kind ServiceCommandKind
	By   uint64
}
