// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestGetPrecompileAddress(t *testing.T) {
	addr := GetPrecompileAddress("LX_EXCHANGE_FACTORY")
	require.Equal(t, common.HexToAddress(ExchangeFactoryAddress), addr)

	require.Equal(t, common.Address{}, GetPrecompileAddress("UNKNOWN"))
}

func TestGetChainPrecompiles(t *testing.T) {
	cChain := GetChainPrecompiles("C")
	require.Contains(t, cChain, common.HexToAddress(ExchangeFactoryAddress))

	zoo := GetChainPrecompiles("Zoo")
	require.Contains(t, zoo, common.HexToAddress(ExchangeFactoryAddress))

	require.Nil(t, GetChainPrecompiles("X"))
}

func TestIsPrecompileEnabled(t *testing.T) {
	factory := common.HexToAddress(ExchangeFactoryAddress)
	require.True(t, IsPrecompileEnabled("C", factory))
	require.True(t, IsPrecompileEnabled("Zoo", factory))
	require.False(t, IsPrecompileEnabled("X", factory))
	require.False(t, IsPrecompileEnabled("C", common.HexToAddress("0x01")))
}

func TestInExchangeRange(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected bool
	}{
		{"factory is not an instance", ExchangeFactoryAddress, false},
		{"range start", ExchangeRangeStart, true},
		{"middle of range", "0x0000000000000000000000000000000000009180", true},
		{"range end", ExchangeRangeEnd, true},
		{"just past range", "0x0000000000000000000000000000000000009200", false},
		{"zero address", "0x0000000000000000000000000000000000000000", false},
		{"unrelated address", "0x9011E888251AB053B7bD1cdB598Db4f9DEd94714", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, InExchangeRange(common.HexToAddress(tt.address)))
		})
	}
}
