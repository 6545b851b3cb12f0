// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/exchange/contract"
)

// ShareLedger tracks liquidity-provider shares for one exchange. It is a
// standard divisible-token ledger, so shares stay transferable; the pool only
// ever mints on deposit and burns on withdrawal.
type ShareLedger struct {
	// exchange account whose storage holds the ledger
	addr common.Address
}

// NewShareLedger returns the LP-share ledger stored at exchange account
// [addr].
func NewShareLedger(addr common.Address) *ShareLedger {
	return &ShareLedger{addr: addr}
}

func (s *ShareLedger) balanceKey(holder common.Address) common.Hash {
	return makeStorageKey(shareBalancePrefix, holder.Bytes())
}

func (s *ShareLedger) supplyKey() common.Hash {
	return makeStorageKey(shareSupplyPrefix, nil)
}

func (s *ShareLedger) BalanceOf(stateDB contract.StateDB, holder common.Address) *uint256.Int {
	return getStateUint256(stateDB, s.addr, s.balanceKey(holder))
}

func (s *ShareLedger) TotalSupply(stateDB contract.StateDB) *uint256.Int {
	return getStateUint256(stateDB, s.addr, s.supplyKey())
}

// Mint credits [amount] shares to [to] and grows total supply.
func (s *ShareLedger) Mint(stateDB contract.StateDB, to common.Address, amount *uint256.Int) {
	balance := s.BalanceOf(stateDB, to)
	setStateUint256(stateDB, s.addr, s.balanceKey(to), balance.Add(balance, amount))
	supply := s.TotalSupply(stateDB)
	setStateUint256(stateDB, s.addr, s.supplyKey(), supply.Add(supply, amount))
}

// Burn removes [amount] shares from [from] and shrinks total supply. Fails
// when the holder's balance cannot cover the burn.
func (s *ShareLedger) Burn(stateDB contract.StateDB, from common.Address, amount *uint256.Int) error {
	balance := s.BalanceOf(stateDB, from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: share balance %s below burn amount %s", ErrInvalidAmount, balance, amount)
	}
	setStateUint256(stateDB, s.addr, s.balanceKey(from), balance.Sub(balance, amount))
	supply := s.TotalSupply(stateDB)
	setStateUint256(stateDB, s.addr, s.supplyKey(), supply.Sub(supply, amount))
	return nil
}

// Transfer moves shares between holders without touching total supply.
func (s *ShareLedger) Transfer(stateDB contract.StateDB, from, to common.Address, amount *uint256.Int) error {
	balance := s.BalanceOf(stateDB, from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: share balance %s below transfer amount %s", ErrInvalidAmount, balance, amount)
	}
	setStateUint256(stateDB, s.addr, s.balanceKey(from), balance.Sub(balance, amount))
	toBalance := s.BalanceOf(stateDB, to)
	setStateUint256(stateDB, s.addr, s.balanceKey(to), toBalance.Add(toBalance, amount))
	return nil
}
