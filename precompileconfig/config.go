// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the JSON configuration surface through
// which precompiles are activated, upgraded, and disabled.
package precompileconfig

import "github.com/luxfi/geth/common"

// Config is implemented by each precompile's config struct, keyed in the
// chain's JSON config under the precompile's ConfigKey.
type Config interface {
	// Key returns the JSON key this config is registered under.
	Key() string
	// Timestamp returns the activation timestamp, or nil if never active.
	Timestamp() *uint64
	// IsDisabled returns true if this config deactivates the precompile.
	IsDisabled() bool
	// Equal reports deep equality with another config of the same type.
	Equal(Config) bool
	// Verify validates the config against the chain rules.
	Verify(ChainConfig) error
}

// ChainConfig is the subset of chain rules precompile configs can consult
// during verification and configuration.
type ChainConfig interface {
	// IsPrecompileEnabled reports whether the precompile at [addr] is active
	// at [timestamp].
	IsPrecompileEnabled(addr common.Address, timestamp uint64) bool
}

// Upgrade is embedded by precompile configs to carry activation semantics.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp,omitempty"`
	Disable        bool    `json:"disable,omitempty"`
}

// Timestamp returns the upgrade's activation timestamp.
func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

// Equal reports whether two upgrades carry the same activation semantics.
func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	if (u.BlockTimestamp == nil) != (other.BlockTimestamp == nil) {
		return false
	}
	if u.BlockTimestamp != nil && *u.BlockTimestamp != *other.BlockTimestamp {
		return false
	}
	return true
}
