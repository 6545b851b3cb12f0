// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/exchange/contract"
)

// Module wires a stateful precompile to the address it serves and the config
// key that activates it.
type Module struct {
	// ConfigKey is the key used in json config files to specify this
	// precompile's config.
	ConfigKey string
	// Address is the address where the precompile is accessible.
	Address common.Address
	// Contract is the precompile implementation dispatched at [Address].
	Contract contract.StatefulPrecompiledContract
	// Configurator installs the precompile's config into state on activation.
	Configurator contract.Configurator
}

type moduleArray []Module

func (m moduleArray) Len() int {
	return len(m)
}

func (m moduleArray) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func (m moduleArray) Less(i, j int) bool {
	return bytes.Compare(m[i].Address.Bytes(), m[j].Address.Bytes()) < 0
}
