// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/exchange/registry"
)

func TestCreateExchange(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	ex, err := f.CreateExchange(stateDB, testToken)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(registry.ExchangeRangeStart), ex.Address())
	require.True(t, stateDB.Exist(ex.Address()))
	require.Equal(t, uint64(1), f.ExchangeCount(stateDB))

	// Listing emits ExchangeCreated with both addresses as topics.
	logs := stateDB.Logs()
	require.Len(t, logs, 1)
	require.Equal(t, FactoryAddress, logs[0].Address)
	require.Equal(t, ExchangeCreatedEvent, logs[0].Topics[0])
	require.Equal(t, common.BytesToHash(testToken.Bytes()), logs[0].Topics[1])
	require.Equal(t, common.BytesToHash(ex.Address().Bytes()), logs[0].Topics[2])
}

func TestCreateExchangeSequentialSlots(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	tokenA := common.HexToAddress("0x100000000000000000000000000000000000000a")
	tokenB := common.HexToAddress("0x100000000000000000000000000000000000000b")
	tokenC := common.HexToAddress("0x100000000000000000000000000000000000000c")

	exA, err := f.CreateExchange(stateDB, tokenA)
	require.NoError(t, err)
	exB, err := f.CreateExchange(stateDB, tokenB)
	require.NoError(t, err)
	exC, err := f.CreateExchange(stateDB, tokenC)
	require.NoError(t, err)

	base := common.HexToAddress(registry.ExchangeRangeStart)
	require.Equal(t, base, exA.Address())
	require.Equal(t, slotAddress(2), exB.Address())
	require.Equal(t, slotAddress(3), exC.Address())
	require.Equal(t, uint64(3), f.ExchangeCount(stateDB))
}

func TestCreateExchangeDuplicate(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	_, err := f.CreateExchange(stateDB, testToken)
	require.NoError(t, err)

	_, err = f.CreateExchange(stateDB, testToken)
	require.ErrorIs(t, err, ErrExchangeExists)
	require.Equal(t, uint64(1), f.ExchangeCount(stateDB))
}

func TestCreateExchangeZeroToken(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	_, err := f.CreateExchange(stateDB, common.Address{})
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestGetExchangeRoundTrip(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	created, err := f.CreateExchange(stateDB, testToken)
	require.NoError(t, err)

	byToken, err := f.GetExchange(stateDB, testToken)
	require.NoError(t, err)
	require.Equal(t, created.Address(), byToken.Address())

	byAddr, err := f.GetByAddress(stateDB, created.Address())
	require.NoError(t, err)
	require.Equal(t, created.Address(), byAddr.Address())

	token, err := f.GetToken(stateDB, created.Address())
	require.NoError(t, err)
	require.Equal(t, testToken, token)
}

func TestGetExchangeNotFound(t *testing.T) {
	stateDB := NewMockStateDB()
	f := NewFactory()

	_, err := f.GetExchange(stateDB, testToken)
	require.ErrorIs(t, err, ErrExchangeNotFound)

	_, err = f.GetByAddress(stateDB, slotAddress(1))
	require.ErrorIs(t, err, ErrExchangeNotFound)

	_, err = f.GetToken(stateDB, slotAddress(1))
	require.ErrorIs(t, err, ErrExchangeNotFound)
}

func TestFactoryCacheSurvivesRestart(t *testing.T) {
	stateDB := NewMockStateDB()

	// First factory lists the token; a second factory over the same state
	// rebuilds its view from storage alone.
	f1 := NewFactory()
	created, err := f1.CreateExchange(stateDB, testToken)
	require.NoError(t, err)

	f2 := NewFactory()
	ex, err := f2.GetExchange(stateDB, testToken)
	require.NoError(t, err)
	require.Equal(t, created.Address(), ex.Address())
	require.Equal(t, uint64(1), f2.ExchangeCount(stateDB))
}

func TestSlotAddressesStayInRange(t *testing.T) {
	end := common.HexToAddress(registry.ExchangeRangeEnd)
	for n := uint64(1); n <= maxExchanges; n++ {
		addr := slotAddress(n)
		require.True(t, registry.InExchangeRange(addr), "slot %d escaped the range: %s", n, addr)
	}
	require.Equal(t, end, slotAddress(maxExchanges))
}
