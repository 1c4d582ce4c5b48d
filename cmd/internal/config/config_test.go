//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestRead(t *testing.T) {
	path := writeConfig(t, `
api-addr: "localhost:3000"
metrics-addr: "localhost:9090"
ring:
  max-size: 8
auth:
  file: /tmp/auth.json
service:
  admin: 1000
`)
	config, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", config.APIAddr)
	assert.Equal(t, 8, config.RingConfig.MaxSize)
	assert.Equal(t, "/tmp/auth.json", config.AuthConfig.File.String())
	assert.EqualValues(t, 1000, config.ServiceConfig.Admin)

	// Registry sizes fall back to defaults.
	assert.Equal(t, 2000, config.RegistryConfig.ProverSize)
	assert.Equal(t, 2000, config.RegistryConfig.VerifierSize)
}

func TestReadDefaults(t *testing.T) {
	path := writeConfig(t, `
api-addr: "localhost:3000"
metrics-addr: "localhost:9090"
`)
	config, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 6, config.RingConfig.MaxSize)
	require.NotNil(t, config.ServiceConfig)
	assert.Zero(t, config.ServiceConfig.Admin)
}

func TestReadMissingFields(t *testing.T) {
	_, err := Read(writeConfig(t, `metrics-addr: "localhost:9090"`))
	assert.ErrorContains(t, err, "api-addr")

	_, err = Read(writeConfig(t, `api-addr: "localhost:3000"`))
	assert.ErrorContains(t, err, "metrics-addr")

	_, err = Read(writeConfig(t, `
api-addr: "localhost:3000"
metrics-addr: "localhost:9090"
auth:
  file: /tmp/a
  leveldb: /tmp/b
`))
	assert.ErrorContains(t, err, "both file and leveldb")
}

func TestEnvstrExpansion(t *testing.T) {
	t.Setenv("AUTH_STATE_FILE", "/var/lib/auth.json")
	path := writeConfig(t, `
api-addr: "localhost:3000"
metrics-addr: "localhost:9090"
auth:
  file: ${AUTH_STATE_FILE}
`)
	config, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/auth.json", config.AuthConfig.File.String())
}
