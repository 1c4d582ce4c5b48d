//
// Copyright 2025 Signal Messenger, LLC
// SPDX-License-Identifier: AGPL-3.0-only
//

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/jamlabs/ringvrf/authorizer"
	"github.com/jamlabs/ringvrf/crypto/vrf/ringproof"
)

// envstr is a string in the YAML config file that expands environment variables
// when parsed.
type envstr string

func (es *envstr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*es = envstr(os.ExpandEnv(s))
	return nil
}

func (es envstr) String() string { return string(es) }

// Config specifies the file format of config files.
type Config struct {
	APIAddr string `yaml:"api-addr"`

	LogOutputFile string `yaml:"log-output"`
	MetricsAddr   string `yaml:"metrics-addr"`
	DatadogAddr   string `yaml:"datadog-addr"`

	RingConfig     *RingConfig     `yaml:"ring"`
	RegistryConfig *RegistryConfig `yaml:"registry"`
	AuthConfig     *AuthConfig     `yaml:"auth"`
	ServiceConfig  *ServiceConfig  `yaml:"service"`
}

// RingConfig bounds the ring sizes the server will accept. MaxSize is
// the fixed ring capacity the embedded parameter set is padded to.
type RingConfig struct {
	MaxSize int `yaml:"max-size"`
}

// RegistryConfig sets the capacity of the in-memory prover and verifier
// handle registries.
type RegistryConfig struct {
	ProverSize   int `yaml:"prover-size"`
	VerifierSize int `yaml:"verifier-size"`
}

// AuthConfig selects the backing store for authorizer state. Exactly
// one of File or LevelDB may be set; neither means in-memory only.
type AuthConfig struct {
	File    envstr `yaml:"file"`
	LevelDB envstr `yaml:"leveldb"`
}

func (config *AuthConfig) Validate() error {
	if config == nil {
		return nil
	}
	if config.File != "" && config.LevelDB != "" {
		return fmt.Errorf("can not provide both file and leveldb auth state stores")
	}
	return nil
}

func (config *AuthConfig) Connect() (authorizer.Store, error) {
	switch {
	case config == nil:
		return authorizer.NewMemStore(), nil
	case config.LevelDB != "":
		return authorizer.NewLDBStore(config.LevelDB.String())
	case config.File != "":
		return authorizer.NewFileStore(config.File.String()), nil
	default:
		return authorizer.NewMemStore(), nil
	}
}

// ServiceConfig configures the work-package service state machine.
type ServiceConfig struct {
	Admin uint64 `yaml:"admin"`
}

func Read(filename string) (*Config, error) {
	// Read from file and parse.
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var parsed Config
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	// Check that all required fields are populated.
	if parsed.APIAddr == "" {
		return nil, fmt.Errorf("field not provided: api-addr")
	} else if parsed.MetricsAddr == "" {
		return nil, fmt.Errorf("field not provided: metrics-addr")
	} else if err := parsed.AuthConfig.Validate(); err != nil {
		return nil, err
	}

	if parsed.RingConfig == nil {
		parsed.RingConfig = &RingConfig{MaxSize: ringproof.DefaultMaxRing}
	}
	if parsed.RingConfig.MaxSize == 0 {
		parsed.RingConfig.MaxSize = ringproof.DefaultMaxRing
	}
	if parsed.RingConfig.MaxSize < 1 {
		return nil, fmt.Errorf("ring.max-size must be positive")
	}

	// If unspecified, use default registry sizes
	if parsed.RegistryConfig == nil {
		parsed.RegistryConfig = &RegistryConfig{
			ProverSize:   2000,
			VerifierSize: 2000,
		}
	}
	if parsed.RegistryConfig.ProverSize == 0 {
		parsed.RegistryConfig.ProverSize = 2000
	}
	if parsed.RegistryConfig.VerifierSize == 0 {
		parsed.RegistryConfig.VerifierSize = 2000
	}

	if parsed.ServiceConfig == nil {
		parsed.ServiceConfig = &ServiceConfig{}
	}

	return &parsed, nil
}
