//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package authorizer

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LDBStore persists authorizer state in a LevelDB database: one "n"
// entry per key holding the little-endian nonce and one "a" entry
// holding the JSON record mirror. Saves are applied as a single batch.
type LDBStore struct {
	conn *leveldb.DB
}

// NewLDBStore opens (and if necessary recovers) a LevelDB database at
// the given directory.
func NewLDBStore(dir string) (*LDBStore, error) {
	conn, err := leveldb.OpenFile(dir, nil)
	if ldberrors.IsCorrupted(err) {
		conn, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LDBStore{conn: conn}, nil
}

// Close releases the underlying database.
func (s *LDBStore) Close() error { return s.conn.Close() }

func (s *LDBStore) Load() (*AuthState, error) {
	state := NewAuthState()

	iter := s.conn.NewIterator(util.BytesPrefix([]byte("n")), nil)
	for iter.Next() {
		hexKey := string(iter.Key()[1:])
		if key, ok := decodeKey32(hexKey); ok && len(iter.Value()) == 8 {
			state.Nonces[key] = binary.LittleEndian.Uint64(iter.Value())
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	iter = s.conn.NewIterator(util.BytesPrefix([]byte("a")), nil)
	for iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		state.Records[string(iter.Key()[1:])] = &record
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	if len(state.Nonces) == 0 {
		for hexKey, record := range state.Records {
			if key, ok := decodeKey32(hexKey); ok {
				state.Nonces[key] = record.Nonce
			}
		}
	}
	return state, nil
}

func (s *LDBStore) Save(state *AuthState) error {
	b := new(leveldb.Batch)
	var nonce [8]byte
	for key, value := range state.Nonces {
		binary.LittleEndian.PutUint64(nonce[:], value)
		b.Put([]byte("n"+hex.EncodeToString(key[:])), nonce[:])
	}
	for hexKey, record := range state.Records {
		raw, err := json.Marshal(record)
		if err != nil {
			panic(err)
		}
		b.Put(append([]byte("a"), hexKey...), raw)
	}
	return s.conn.Write(b, nil)
}
