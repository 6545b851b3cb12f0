// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/exchange/contract"
)

// Storage key prefixes. Every slot an exchange component touches is
// BLAKE3(prefix || id), so the ledgers never collide inside one account's
// storage.
var (
	tokenBalancePrefix   = []byte("erc20/bal")
	tokenAllowancePrefix = []byte("erc20/allow")
	tokenSupplyPrefix    = []byte("erc20/supply")
	shareBalancePrefix   = []byte("lp/bal")
	shareSupplyPrefix    = []byte("lp/supply")
	factoryTokenPrefix   = []byte("factory/token")
	factoryExchPrefix    = []byte("factory/exch")
	factoryCountPrefix   = []byte("factory/count")
)

// makeStorageKey creates a storage key from prefix and identifier
func makeStorageKey(prefix []byte, id []byte) common.Hash {
	h := blake3.New()
	h.Write(prefix)
	h.Write(id)
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// getStateUint256 reads a 256-bit value from [slot] at [addr].
func getStateUint256(stateDB contract.StateDB, addr common.Address, slot common.Hash) *uint256.Int {
	val := stateDB.GetState(addr, slot)
	return new(uint256.Int).SetBytes(val[:])
}

// setStateUint256 writes a 256-bit value to [slot] at [addr].
func setStateUint256(stateDB contract.StateDB, addr common.Address, slot common.Hash, v *uint256.Int) {
	stateDB.SetState(addr, slot, common.Hash(v.Bytes32()))
}

// getStateAddress reads a right-aligned address from [slot] at [addr].
func getStateAddress(stateDB contract.StateDB, addr common.Address, slot common.Hash) common.Address {
	val := stateDB.GetState(addr, slot)
	return common.BytesToAddress(val[12:])
}

// setStateAddress writes a right-aligned address to [slot] at [addr].
func setStateAddress(stateDB contract.StateDB, addr common.Address, slot common.Hash, a common.Address) {
	var val common.Hash
	copy(val[12:], a.Bytes())
	stateDB.SetState(addr, slot, val)
}
