// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exchange implements a constant-product automated market maker as a
// stateful precompile: one pool per token, trading the token against the
// native currency, with LP-share accounting.
//
// The host credits a payable call's value to the exchange account before Run
// executes, so every payable operation reconstructs its pre-call base reserve
// as currentBalance - incomingValue. All divisions truncate toward zero,
// which always rounds in the pool's favor.
package exchange

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"

	"github.com/luxfi/exchange/contract"
)

// Exchange is the pool ledger for a single token. It owns no memory state of
// its own: reserves are the balances held at [addr], shares live in the
// ShareLedger stored there, so state is always read through the StateDB.
type Exchange struct {
	addr   common.Address
	token  TokenLedger
	shares *ShareLedger
}

// NewExchange binds the pool at account [addr] to [token].
func NewExchange(addr common.Address, token TokenLedger) *Exchange {
	return &Exchange{
		addr:   addr,
		token:  token,
		shares: NewShareLedger(addr),
	}
}

// Address returns the exchange's account address.
func (e *Exchange) Address() common.Address {
	return e.addr
}

// Shares returns the exchange's LP-share ledger.
func (e *Exchange) Shares() *ShareLedger {
	return e.shares
}

// GetReserve returns the token balance currently held by the pool. The value
// is queried from the token ledger, never cached.
func (e *Exchange) GetReserve(stateDB contract.StateDB) *uint256.Int {
	return e.token.BalanceOf(stateDB, e.addr)
}

// baseReserveBefore reconstructs the base reserve as it stood before the
// current call's value was credited to the exchange account.
func (e *Exchange) baseReserveBefore(stateDB contract.StateDB, valueSent *uint256.Int) (*uint256.Int, error) {
	balance := stateDB.GetBalance(e.addr)
	reserve, underflow := new(uint256.Int).SubOverflow(balance, valueSent)
	if underflow {
		return nil, fmt.Errorf("%w: call value %s exceeds account balance %s", ErrInvalidAmount, valueSent, balance)
	}
	return reserve, nil
}

// AddLiquidity deposits [valueSent] base currency (already credited to the
// exchange account) plus tokens pulled from [caller], and mints LP shares.
//
// On the first deposit the pool accepts the full token offer at whatever
// ratio the caller chose and mints shares 1:1 with the base currency sent,
// fixing the share unit of account. Afterwards the deposit must match the
// current reserve ratio: the pool pulls exactly
// valueSent*tokenReserve/baseReserveBefore tokens (truncating) and mints
// totalShares*valueSent/baseReserveBefore shares (truncating, so rounding
// never favors the depositor).
func (e *Exchange) AddLiquidity(
	stateDB contract.StateDB,
	caller common.Address,
	tokenAmountOffered *uint256.Int,
	valueSent *uint256.Int,
) (*uint256.Int, error) {
	if valueSent.IsZero() {
		return nil, fmt.Errorf("%w: deposit requires base currency", ErrInvalidAmount)
	}

	baseReserve, err := e.baseReserveBefore(stateDB, valueSent)
	if err != nil {
		return nil, err
	}
	tokenReserve := e.GetReserve(stateDB)

	// Bootstrap: no tokens in the pool yet, caller sets the initial ratio.
	if tokenReserve.IsZero() {
		if tokenAmountOffered.IsZero() {
			return nil, fmt.Errorf("%w: bootstrap deposit requires tokens", ErrInvalidAmount)
		}
		if err := e.token.TransferFrom(stateDB, e.addr, caller, e.addr, tokenAmountOffered); err != nil {
			return nil, err
		}
		minted := new(uint256.Int).Set(valueSent)
		e.shares.Mint(stateDB, caller, minted)
		emitAmounts(stateDB, e.addr, AddLiquidityEvent, caller, valueSent, tokenAmountOffered)
		return minted, nil
	}

	if baseReserve.IsZero() {
		// Token reserve without base reserve: the pool account was drained
		// out-of-band. No ratio can be enforced.
		return nil, ErrInvalidReserves
	}

	required, overflow := new(uint256.Int).MulOverflow(valueSent, tokenReserve)
	if overflow {
		return nil, ErrOverflow
	}
	required.Div(required, baseReserve)
	if tokenAmountOffered.Lt(required) {
		return nil, fmt.Errorf("%w: offered %s, ratio requires %s", ErrInsufficientTokenOffer, tokenAmountOffered, required)
	}

	totalShares := e.shares.TotalSupply(stateDB)
	minted, overflow := new(uint256.Int).MulOverflow(totalShares, valueSent)
	if overflow {
		return nil, ErrOverflow
	}
	minted.Div(minted, baseReserve)

	// Pull exactly the required amount, not the full offer.
	if err := e.token.TransferFrom(stateDB, e.addr, caller, e.addr, required); err != nil {
		return nil, err
	}
	e.shares.Mint(stateDB, caller, minted)
	emitAmounts(stateDB, e.addr, AddLiquidityEvent, caller, valueSent, required)
	return minted, nil
}

// RemoveLiquidity burns [shareAmount] of the caller's shares and pays out the
// proportional slice of both reserves, truncating in the pool's favor.
//
// The burn happens before either outbound transfer: a recipient re-entering
// during the payout observes the already-reduced share supply.
func (e *Exchange) RemoveLiquidity(
	stateDB contract.StateDB,
	caller common.Address,
	shareAmount *uint256.Int,
) (*uint256.Int, *uint256.Int, error) {
	if shareAmount.IsZero() {
		return nil, nil, fmt.Errorf("%w: share amount must be positive", ErrInvalidAmount)
	}
	totalShares := e.shares.TotalSupply(stateDB)
	if totalShares.IsZero() {
		return nil, nil, ErrNoLiquidity
	}

	baseReserve := stateDB.GetBalance(e.addr)
	tokenReserve := e.GetReserve(stateDB)

	baseOut, overflow := new(uint256.Int).MulDivOverflow(baseReserve, shareAmount, totalShares)
	if overflow {
		return nil, nil, ErrOverflow
	}
	tokenOut, overflow := new(uint256.Int).MulDivOverflow(tokenReserve, shareAmount, totalShares)
	if overflow {
		return nil, nil, ErrOverflow
	}

	// Burn before transferring anything out.
	if err := e.shares.Burn(stateDB, caller, shareAmount); err != nil {
		return nil, nil, err
	}
	if err := e.token.Transfer(stateDB, e.addr, caller, tokenOut); err != nil {
		return nil, nil, err
	}
	e.payBase(stateDB, caller, baseOut)

	emitAmounts(stateDB, e.addr, RemoveLiquidityEvent, caller, baseOut, tokenOut)
	return baseOut, tokenOut, nil
}

// SwapBaseForToken sells [valueSent] base currency (already credited to the
// exchange account) for tokens.
func (e *Exchange) SwapBaseForToken(
	stateDB contract.StateDB,
	caller common.Address,
	valueSent *uint256.Int,
	minTokensOut *uint256.Int,
) (*uint256.Int, error) {
	if valueSent.IsZero() {
		return nil, fmt.Errorf("%w: swap requires base currency", ErrInvalidAmount)
	}

	baseReserve, err := e.baseReserveBefore(stateDB, valueSent)
	if err != nil {
		return nil, err
	}
	tokenReserve := e.GetReserve(stateDB)

	tokensOut, err := GetOutputAmount(valueSent, baseReserve, tokenReserve)
	if err != nil {
		return nil, err
	}
	if tokensOut.Lt(minTokensOut) {
		return nil, fmt.Errorf("%w: output %s below minimum %s", ErrSlippageExceeded, tokensOut, minTokensOut)
	}

	if err := e.token.Transfer(stateDB, e.addr, caller, tokensOut); err != nil {
		return nil, err
	}
	emitAmounts(stateDB, e.addr, TokenPurchaseEvent, caller, valueSent, tokensOut)
	return tokensOut, nil
}

// SwapTokenForBase sells [tokensSold] tokens for base currency. The token
// reserve is read before the pull, and the pull completes before any base
// currency leaves the pool.
func (e *Exchange) SwapTokenForBase(
	stateDB contract.StateDB,
	caller common.Address,
	tokensSold *uint256.Int,
	minBaseOut *uint256.Int,
) (*uint256.Int, error) {
	if tokensSold.IsZero() {
		return nil, fmt.Errorf("%w: swap requires tokens", ErrInvalidAmount)
	}

	tokenReserve := e.GetReserve(stateDB)
	baseReserve := stateDB.GetBalance(e.addr)

	baseOut, err := GetOutputAmount(tokensSold, tokenReserve, baseReserve)
	if err != nil {
		return nil, err
	}
	if baseOut.Lt(minBaseOut) {
		return nil, fmt.Errorf("%w: output %s below minimum %s", ErrSlippageExceeded, baseOut, minBaseOut)
	}

	if err := e.token.TransferFrom(stateDB, e.addr, caller, e.addr, tokensSold); err != nil {
		return nil, err
	}
	e.payBase(stateDB, caller, baseOut)

	emitAmounts(stateDB, e.addr, BasePurchaseEvent, caller, tokensSold, baseOut)
	return baseOut, nil
}

// payBase pushes base currency from the pool to [to]. Crediting the
// recipient is the external-transfer boundary: every state mutation the
// operation needs must already be committed when this runs.
func (e *Exchange) payBase(stateDB contract.StateDB, to common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	stateDB.SubBalance(e.addr, amount, tracing.BalanceChangeTransfer)
	stateDB.AddBalance(to, amount, tracing.BalanceChangeTransfer)
}
