// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"bytes"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// PRECOMPILE ADDRESS SCHEME - Aligned with LP Numbering (LP-0099)
// ============================================================================
//
// All Lux-native precompiles use trailing-significant 20-byte addresses:
//   Format: 0x0000000000000000000000000000000000PCII
//
// The address ends with the 16-bit LP number (PCII) for easy identification.
// P nibble = LP range first digit; P=9 is the DEX/Markets family this module
// occupies. Within the family:
//
//   LP-9100          Exchange factory (one per chain)
//   LP-9101..LP-91FF Exchange instances, allocated sequentially by the
//                    factory as tokens are listed
//
// The factory address is fixed; exchange addresses are assigned in listing
// order so the host can route the whole 0x...9100-0x...91ff range to the
// exchange contract.

const (
	// ExchangeFactoryAddress is LP-9100, the constant-product exchange factory.
	ExchangeFactoryAddress = "0x0000000000000000000000000000000000009100"

	// ExchangeRangeStart / ExchangeRangeEnd bound the addresses the factory
	// may allocate to exchange instances.
	ExchangeRangeStart = "0x0000000000000000000000000000000000009101"
	ExchangeRangeEnd   = "0x00000000000000000000000000000000000091ff"
)

// PrecompileInfo contains metadata about a precompile
type PrecompileInfo struct {
	Address     string
	Name        string
	Description string
	GasBase     uint64
	Chains      []string
	LPRange     string // LP-Pxxx range alignment
}

// AllPrecompiles lists all available precompiles with their metadata
var AllPrecompiles = []PrecompileInfo{
	{ExchangeFactoryAddress, "LX_EXCHANGE_FACTORY", "Constant-product exchange factory", 25_000, []string{"C", "Zoo"}, "LP-9100"},
	{ExchangeRangeStart, "LX_EXCHANGE", "Constant-product token/native exchange (first instance slot)", 10_000, []string{"C", "Zoo"}, "LP-9101"},
}

// ChainPrecompiles maps chain aliases to the precompile addresses enabled on
// them.
var ChainPrecompiles = map[string][]string{
	// C-Chain (main EVM)
	"C": {ExchangeFactoryAddress},
	// Zoo - DEX focused (same precompile addresses)
	"Zoo": {ExchangeFactoryAddress},
}

// GetPrecompileAddress returns the address for a precompile by name
func GetPrecompileAddress(name string) common.Address {
	for _, p := range AllPrecompiles {
		if p.Name == name {
			return common.HexToAddress(p.Address)
		}
	}
	return common.Address{}
}

// GetChainPrecompiles returns all precompile addresses for a chain
func GetChainPrecompiles(chainLetter string) []common.Address {
	addrs, ok := ChainPrecompiles[chainLetter]
	if !ok {
		return nil
	}

	result := make([]common.Address, len(addrs))
	for i, addr := range addrs {
		result[i] = common.HexToAddress(addr)
	}
	return result
}

// IsPrecompileEnabled checks if a precompile is enabled for a chain
func IsPrecompileEnabled(chainLetter string, precompileAddr common.Address) bool {
	addrs := ChainPrecompiles[chainLetter]

	for _, addr := range addrs {
		if common.HexToAddress(addr) == precompileAddr {
			return true
		}
	}
	return false
}

// InExchangeRange reports whether [addr] is an exchange-instance slot.
func InExchangeRange(addr common.Address) bool {
	start := common.HexToAddress(ExchangeRangeStart)
	end := common.HexToAddress(ExchangeRangeEnd)
	b := addr.Bytes()
	return bytes.Compare(b, start[:]) >= 0 && bytes.Compare(b, end[:]) <= 0
}
