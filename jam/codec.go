//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package jam

import (
	"encoding/binary"
	"errors"
)

// AuthCredentialsSize is the fixed wire size of AuthCredentials:
// 32-byte key, 64-byte signature, little-endian u64 nonce.
const AuthCredentialsSize = 32 + 64 + 8

var (
	// ErrBadCredentials occurs when a credentials blob has the wrong layout.
	ErrBadCredentials = errors.New("malformed auth credentials")
	// ErrBadCommand occurs when a memo does not decode as a ServiceCommand.
	ErrBadCommand = errors.New("malformed service command")
)

// Encode returns the fixed-layout wire form of the credentials.
func (c AuthCredentials) Encode() []byte {
	out := make([]byte, AuthCredentialsSize)
	copy(out[:32], c.PublicKey[:])
	copy(out[32:96], c.Signature[:])
	binary.LittleEndian.PutUint64(out[96:], c.Nonce)
	return out
}

// DecodeAuthCredentials parses a credentials blob. The layout is fixed;
// any other length is rejected.
func DecodeAuthCredentials(b []byte) (AuthCredentials, error) {
	var c AuthCredentials
	if len(b) != AuthCredentialsSize {
		return c, ErrBadCredentials
	}
	copy(c.PublicKey[:], b[:32])
	copy(c.Signature[:], b[32:96])
	c.Nonce = binary.LittleEndian.Uint64(b[96:])
	return c, nil
}

// Encode returns the wire form of the command: a one-byte variant tag,
// followed by the little-endian u64 argument for IncrementCounter.
func (c ServiceCommand) Encode() []byte {
	switch c.Kind {
	case IncrementCounter:
		out := make([]byte, 9)
		out[0] = byte(IncrementCounter)
		binary.LittleEndian.PutUint64(out[1:], c.By)
		return out
	case ResetState:
		return []byte{byte(ResetState)}
	default:
		panic("unknown service command kind")
	}
}

// DecodeServiceCommand parses a transfer memo as a command.
func DecodeServiceCommand(b []byte) (ServiceCommand, error) {
	if len(b) < 1 {
		return ServiceCommand{}, ErrBadCommand
	}
	switch ServiceCommandKind(b[0]) {
	case IncrementCounter:
		if len(b) != 9 {
			return ServiceCommand{}, ErrBadCommand
		}
		return ServiceCommand{Kind: IncrementCounter, By: binary.LittleEndian.Uint64(b[1:])}, nil
	case ResetState:
		if len(b) != 1 {
			return ServiceCommand{}, ErrBadCommand
		}
		return ServiceCommand{Kind: ResetState}, nil
	default:
		return ServiceCommand{}, ErrBadCommand
	}
}
