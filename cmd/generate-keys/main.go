//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Command generate-keys prints the public keys of index-seeded ring
// secrets, one hex key per line. These are the keys a prover created
// from the same ring positions will sign under.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	vrfed "github.com/jamlabs/ringvrf/crypto/vrf/ed25519"
)

var count = flag.Int("count", 6, "Number of ring keys to generate.")

func main() {
	flag.Parse()

	for i := 0; i < *count; i++ {
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(i))
		secret, err := vrfed.SecretFromSeed(seed[:])
		if err != nil {
			log.Fatalf("deriving secret %d: %v", i, err)
		}
		pk := secret.Public().Bytes()
		fmt.Printf("0x%s\n", hex.EncodeToString(pk[:]))
	}
}
