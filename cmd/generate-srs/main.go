//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

// Command generate-srs regenerates the embedded SRS blob. The slot
// seeds are derived from a fixed transcript label, so the output is
// reproducible: running it again yields a byte-identical file.
package main

import (
	"crypto/sha256"
	"encoding/binary"
	"flag"
	"log"
	"os"
)

var (
	degree = flag.Int("degree", 1024, "Number of SRS slots.")
	out    = flag.String("out", "crypto/vrf/ringproof/data/srs-1024.bin", "Output file.")
)

const (
	srsMagic   = "RVRF"
	srsVersion = 1
	seedLabel  = "ringproof-srs"
)

func main() {
	flag.Parse()
	if *degree < 1 {
		log.Fatal("degree must be positive")
	}

	blob := make([]byte, 0, 9+32*(*degree))
	blob = append(blob, srsMagic...)
	blob = append(blob, srsVersion)
	blob = binary.BigEndian.AppendUint32(blob, uint32(*degree))

	var slot [4]byte
	for i := 0; i < *degree; i++ {
		binary.BigEndian.PutUint32(slot[:], uint32(i))
		h := sha256.New()
		h.Write([]byte(seedLabel))
		h.Write(slot[:])
		blob = h.Sum(blob)
	}

	if err := os.WriteFile(*out, blob, 0644); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}
	log.Printf("wrote %d bytes to %s", len(blob), *out)
}
