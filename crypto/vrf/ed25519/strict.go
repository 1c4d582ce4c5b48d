//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package ed25519

import (
	"bytes"
	"crypto/sha512"
	"errors"

	"filippo.io/edwards25519"
)

// ErrInvalidSignature occurs when a signature fails the strict check.
var ErrInvalidSignature = errors.New("invalid signature")

// VerifySignatureStrict checks an Ed25519 signature with the strict
// rules: the public key and the signature's R component must be
// canonical encodings of points that are not low order, the response
// scalar must be canonical, and the non-cofactored verification
// equation must hold exactly.
func VerifySignatureStrict(publicKey, message, sig []byte) error {
	if len(publicKey) != 32 || len(sig) != 64 {
		return ErrInvalidSignature
	}

	A, err := new(edwards25519.Point).SetBytes(publicKey)
	if err != nil {
		return ErrInvalidSignature
	}
	if identityPoint.Equal(new(edwards25519.Point).MultByCofactor(A)) == 1 {
		return ErrInvalidSignature
	}

	R, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return ErrInvalidSignature
	}
	if identityPoint.Equal(new(edwards25519.Point).MultByCofactor(R)) == 1 {
		return ErrInvalidSignature
	}

	s, err := new(edwards25519.Scalar).SetCanonicalBytes(sig[32:])
	if err != nil {
		return ErrInvalidSignature
	}

	kh := sha512.New()
	kh.Write(sig[:32])
	kh.Write(publicKey)
	kh.Write(message)
	k, err := new(edwards25519.Scalar).SetUniformBytes(kh.Sum(nil))
	if err != nil {
		panic(err)
	}

	// R' = s*B - k*A must equal R without multiplying by the cofactor.
	minusA := new(edwards25519.Point).Negate(A)
	Rprime := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(k, minusA, s)
	if !bytes.Equal(Rprime.Bytes(), R.Bytes()) {
		return ErrInvalidSignature
	}
	return nil
}
