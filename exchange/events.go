// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/exchange/contract"
)

// Event signatures, hashed to their log topics.
var (
	AddLiquidityEvent    = common.Keccak256Hash([]byte("AddLiquidity(address,uint256,uint256)"))
	RemoveLiquidityEvent = common.Keccak256Hash([]byte("RemoveLiquidity(address,uint256,uint256)"))
	TokenPurchaseEvent   = common.Keccak256Hash([]byte("TokenPurchase(address,uint256,uint256)"))
	BasePurchaseEvent    = common.Keccak256Hash([]byte("BasePurchase(address,uint256,uint256)"))
	ExchangeCreatedEvent = common.Keccak256Hash([]byte("ExchangeCreated(address,address)"))
)

// emitAmounts appends a two-amount event log for [account] at the exchange
// address.
func emitAmounts(stateDB contract.StateDB, exchange common.Address, event common.Hash, account common.Address, a, b *uint256.Int) {
	data := make([]byte, 0, 2*common.HashLength)
	aWord := a.Bytes32()
	bWord := b.Bytes32()
	data = append(data, aWord[:]...)
	data = append(data, bWord[:]...)

	stateDB.AddLog(&ethtypes.Log{
		Address: exchange,
		Topics: []common.Hash{
			event,
			common.BytesToHash(account.Bytes()),
		},
		Data: data,
	})
}

// emitExchangeCreated records a new token listing at the factory address.
func emitExchangeCreated(stateDB contract.StateDB, factory common.Address, token, exchange common.Address) {
	stateDB.AddLog(&ethtypes.Log{
		Address: factory,
		Topics: []common.Hash{
			ExchangeCreatedEvent,
			common.BytesToHash(token.Bytes()),
			common.BytesToHash(exchange.Bytes()),
		},
	})
}
