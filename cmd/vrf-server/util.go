//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

// decodeHex decodes a hex string with an optional 0x prefix.
func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

// encodeHex renders bytes as a 0x-prefixed hex string, matching the
// encoding used in responses throughout the API.
func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func readJSON(rw http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		errorResponse(rw, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeJSON(rw http.ResponseWriter, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(v)
}

func errorResponse(rw http.ResponseWriter, code int, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	json.NewEncoder(rw).Encode(map[string]string{"error": msg})
}
