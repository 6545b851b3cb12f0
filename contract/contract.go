// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the interfaces between stateful precompiles and
// the hosting EVM: the state they execute against, the block context they can
// observe, and the contract entry point the host dispatches into.
package contract

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/exchange/precompileconfig"
)

// Shared dispatch-level errors
var (
	ErrInsufficientGas = errors.New("insufficient gas")
	ErrInvalidInput    = errors.New("invalid input")
	// ErrWriteProtection is returned when a mutating selector is invoked
	// through a static (read-only) call frame.
	ErrWriteProtection = errors.New("write protection")
)

// StateDB is the subset of EVM state access precompiles need: per-account
// storage, native balances, logs, and the snapshot/revert boundary that gives
// each operation its atomicity.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)

	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason)
	SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason)

	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64, reason tracing.NonceChangeReason)

	CreateAccount(addr common.Address)
	Exist(addr common.Address) bool

	AddLog(log *ethtypes.Log)

	// Snapshot marks the current state; RevertToSnapshot undoes every
	// mutation made since the matching Snapshot call.
	Snapshot() int
	RevertToSnapshot(id int)
}

// BlockContext provides the block-level values visible to a precompile.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// ConfigurationBlockContext is the block context available while a precompile
// is being configured (activated) at a block boundary.
type ConfigurationBlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// AccessibleState is the execution environment handed to Run.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}

// StatefulPrecompiledContract is the entry point the host EVM dispatches
// into. Implementations must treat [suppliedGas] as a budget: deduct before
// doing work and return the remainder.
type StatefulPrecompiledContract interface {
	Run(
		accessibleState AccessibleState,
		caller common.Address,
		addr common.Address,
		input []byte,
		suppliedGas uint64,
		readOnly bool,
	) (ret []byte, remainingGas uint64, err error)
}

// Configurator installs a precompile's genesis/upgrade config into state.
type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(
		chainConfig precompileconfig.ChainConfig,
		precompileConfig precompileconfig.Config,
		state StateDB,
		blockContext ConfigurationBlockContext,
	) error
}

// DeductGas checks that [suppliedGas] covers [requiredGas] and returns the
// remainder.
func DeductGas(suppliedGas uint64, requiredGas uint64) (uint64, error) {
	if suppliedGas < requiredGas {
		return 0, ErrInsufficientGas
	}
	return suppliedGas - requiredGas, nil
}

// PackedWord returns the [n]th 32-byte argument word of [input], or an error
// if the input is too short.
func PackedWord(input []byte, n int) ([]byte, error) {
	start := n * common.HashLength
	end := start + common.HashLength
	if len(input) < end {
		return nil, ErrInvalidInput
	}
	return input[start:end], nil
}

// PackedAddress decodes the [n]th argument word as a right-aligned address.
func PackedAddress(input []byte, n int) (common.Address, error) {
	word, err := PackedWord(input, n)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(word[12:]), nil
}

// PackedUint256 decodes the [n]th argument word as an unsigned 256-bit
// integer.
func PackedUint256(input []byte, n int) (*uint256.Int, error) {
	word, err := PackedWord(input, n)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(word), nil
}

// PackWord left-pads [b] into a 32-byte ABI word.
func PackWord(b []byte) []byte {
	word := make([]byte, common.HashLength)
	copy(word[common.HashLength-len(b):], b)
	return word
}
