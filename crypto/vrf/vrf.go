// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vrf defines the interface to a verifiable random function
// with both anonymous (ring) and non-anonymous signing modes.
package vrf

// PrivateKey supports evaluating and signing with the VRF function.
type PrivateKey interface {
	// VRFOutput returns the first 32 bytes of the output hash of the VRF
	// evaluated at m. The result depends only on the key and m.
	VRFOutput(m []byte) [32]byte
	// RingVRFSign returns an anonymous signature binding m and aux that
	// proves some member of the key's ring evaluated the VRF.
	RingVRFSign(m, aux []byte) ([]byte, error)
	// IetfVRFSign returns a non-anonymous signature binding m and aux.
	IetfVRFSign(m, aux []byte) ([]byte, error)
}

// PublicKey supports verifying output from the VRF function against a
// fixed ring of keys.
type PublicKey interface {
	// Commitment returns the compact commitment to the ring.
	Commitment() [32]byte
	// RingVRFVerify checks an anonymous signature over m with aux and
	// returns the 32-byte output hash on success.
	RingVRFVerify(m, aux, sig []byte) ([32]byte, error)
	// IetfVRFVerify checks a non-anonymous signature against the ring
	// member at signerIndex.
	IetfVRFVerify(m, aux, sig []byte, signerIndex int) ([32]byte, error)
}
