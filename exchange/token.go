// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/exchange/contract"
)

// TokenLedger is the external fungible-token ledger an exchange trades
// against. TransferFrom is the two-phase pull: it fails atomically when the
// owner's balance or the spender's allowance cannot cover the amount.
type TokenLedger interface {
	BalanceOf(stateDB contract.StateDB, holder common.Address) *uint256.Int
	Transfer(stateDB contract.StateDB, from, to common.Address, amount *uint256.Int) error
	TransferFrom(stateDB contract.StateDB, spender, from, to common.Address, amount *uint256.Int) error
	Approve(stateDB contract.StateDB, owner, spender common.Address, amount *uint256.Int)
	Allowance(stateDB contract.StateDB, owner, spender common.Address) *uint256.Int
}

// StateToken is an ERC-20-style ledger held directly in precompile storage
// under the token's own account, so the whole exchange system runs inside a
// single StateDB.
type StateToken struct {
	addr common.Address
}

var _ TokenLedger = (*StateToken)(nil)

// NewStateToken returns the ledger view of the token account at [addr].
func NewStateToken(addr common.Address) *StateToken {
	return &StateToken{addr: addr}
}

// Address returns the token's account address.
func (t *StateToken) Address() common.Address {
	return t.addr
}

func (t *StateToken) balanceKey(holder common.Address) common.Hash {
	return makeStorageKey(tokenBalancePrefix, holder.Bytes())
}

func (t *StateToken) allowanceKey(owner, spender common.Address) common.Hash {
	return makeStorageKey(tokenAllowancePrefix, append(owner.Bytes(), spender.Bytes()...))
}

func (t *StateToken) BalanceOf(stateDB contract.StateDB, holder common.Address) *uint256.Int {
	return getStateUint256(stateDB, t.addr, t.balanceKey(holder))
}

func (t *StateToken) TotalSupply(stateDB contract.StateDB) *uint256.Int {
	return getStateUint256(stateDB, t.addr, makeStorageKey(tokenSupplyPrefix, nil))
}

// Mint credits [amount] to [to]. Used to seed test and genesis balances;
// the exchange itself never mints.
func (t *StateToken) Mint(stateDB contract.StateDB, to common.Address, amount *uint256.Int) {
	balance := t.BalanceOf(stateDB, to)
	setStateUint256(stateDB, t.addr, t.balanceKey(to), new(uint256.Int).Add(balance, amount))
	supply := t.TotalSupply(stateDB)
	setStateUint256(stateDB, t.addr, makeStorageKey(tokenSupplyPrefix, nil), new(uint256.Int).Add(supply, amount))
}

func (t *StateToken) Transfer(stateDB contract.StateDB, from, to common.Address, amount *uint256.Int) error {
	balance := t.BalanceOf(stateDB, from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: balance %s below transfer amount %s", ErrTransferFailed, balance, amount)
	}
	setStateUint256(stateDB, t.addr, t.balanceKey(from), balance.Sub(balance, amount))

	toBalance := t.BalanceOf(stateDB, to)
	setStateUint256(stateDB, t.addr, t.balanceKey(to), toBalance.Add(toBalance, amount))
	return nil
}

func (t *StateToken) TransferFrom(stateDB contract.StateDB, spender, from, to common.Address, amount *uint256.Int) error {
	if spender != from {
		allowance := t.Allowance(stateDB, from, spender)
		if allowance.Lt(amount) {
			return fmt.Errorf("%w: allowance %s below transfer amount %s", ErrTransferFailed, allowance, amount)
		}
		setStateUint256(stateDB, t.addr, t.allowanceKey(from, spender), allowance.Sub(allowance, amount))
	}
	return t.Transfer(stateDB, from, to, amount)
}

func (t *StateToken) Approve(stateDB contract.StateDB, owner, spender common.Address, amount *uint256.Int) {
	setStateUint256(stateDB, t.addr, t.allowanceKey(owner, spender), amount)
}

func (t *StateToken) Allowance(stateDB contract.StateDB, owner, spender common.Address) *uint256.Int {
	return getStateUint256(stateDB, t.addr, t.allowanceKey(owner, spender))
}
