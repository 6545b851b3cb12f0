// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import "errors"

// Operation errors. Every failure is fatal to the triggering operation; the
// dispatch layer reverts the state snapshot so no partial effects persist.
var (
	// ErrInvalidReserves is returned when pricing is invoked with a zero
	// reserve on either side.
	ErrInvalidReserves = errors.New("invalid reserves")
	// ErrInsufficientTokenOffer is returned when a depositor offers fewer
	// tokens than the current reserve ratio requires.
	ErrInsufficientTokenOffer = errors.New("insufficient token offer")
	// ErrSlippageExceeded is returned when a computed output amount is below
	// the caller's stated minimum.
	ErrSlippageExceeded = errors.New("slippage exceeded")
	// ErrInvalidAmount is returned when a zero amount is passed where a
	// positive amount is required, or a holder's balance cannot cover a burn.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTransferFailed is returned when a token ledger transfer or allowance
	// check declines.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrNoLiquidity is returned when a withdrawal is attempted against an
	// empty pool.
	ErrNoLiquidity = errors.New("no liquidity in pool")
	// ErrOverflow is returned when a reserve computation exceeds 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
)

// Factory errors
var (
	ErrExchangeExists    = errors.New("exchange already exists for token")
	ErrExchangeNotFound  = errors.New("exchange not found")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrExchangeSlotsFull = errors.New("exchange address range exhausted")
)
