// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/exchange/contract"
)

// Function selectors (first 4 bytes of keccak256 of function signature)
var (
	// Exchange instance functions
	SelectorGetReserve       = [4]byte{0x59, 0xbf, 0x5d, 0x39} // getReserve()
	SelectorAddLiquidity     = [4]byte{0x9c, 0xd4, 0x41, 0xda} // addLiquidity(uint256,uint256)
	SelectorRemoveLiquidity  = [4]byte{0x9c, 0x8f, 0x9f, 0x23} // removeLiquidity(uint256)
	SelectorSwapBaseForToken = [4]byte{0xde, 0x15, 0x94, 0x92} // swapBaseForToken(uint256,uint256)
	SelectorSwapTokenForBase = [4]byte{0xf2, 0x40, 0xb4, 0x3a} // swapTokenForBase(uint256,uint256)
	SelectorGetInputPrice    = [4]byte{0x89, 0xf2, 0xa8, 0x71} // getInputPrice(uint256,uint256,uint256)

	// LP-share functions (ERC-20 subset)
	SelectorBalanceOf   = [4]byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)
	SelectorTotalSupply = [4]byte{0x18, 0x16, 0x0d, 0xdd} // totalSupply()
	SelectorTransfer    = [4]byte{0xa9, 0x05, 0x9c, 0xbb} // transfer(address,uint256)

	// Factory functions
	SelectorCreateExchange = [4]byte{0x16, 0x48, 0xf3, 0x8e} // createExchange(address)
	SelectorGetExchange    = [4]byte{0x06, 0xf2, 0xbf, 0x62} // getExchange(address)
	SelectorGetToken       = [4]byte{0x59, 0x77, 0x04, 0x38} // getToken(address)
	SelectorExchangeCount  = [4]byte{0x68, 0x97, 0x2e, 0x50} // exchangeCount()
)

// Gas costs
const (
	GasRead      uint64 = 200   // Storage/balance reads
	GasQuote     uint64 = 500   // Pure pricing math
	GasTransfer  uint64 = 5000  // LP-share transfer
	GasSwap      uint64 = 10000 // Either swap direction
	GasLiquidity uint64 = 15000 // Add/remove liquidity
	GasCreate    uint64 = 50000 // Listing a new token
)

// ExchangePrecompile implements the stateful precompiled contract interface
// for the factory address and every exchange instance address. Payable
// operations receive the call value as their trailing argument word; the host
// credits that value to the exchange account before dispatching here, so
// handlers see it both as an argument and as part of the account balance.
var ExchangePrecompile = &exchangePrecompile{factory: NewFactory()}

type exchangePrecompile struct {
	factory *Factory
}

// Factory exposes the precompile's factory, used at configuration time to
// pre-list genesis tokens.
func (p *exchangePrecompile) Factory() *Factory {
	return p.factory
}

// Run executes the exchange precompile.
func (p *exchangePrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if len(input) < 4 {
		return nil, suppliedGas, contract.ErrInvalidInput
	}

	var selector [4]byte
	copy(selector[:], input[:4])
	args := input[4:]

	if addr == FactoryAddress {
		return p.runFactory(accessibleState, caller, selector, args, suppliedGas, readOnly)
	}
	return p.runExchange(accessibleState, caller, addr, selector, args, suppliedGas, readOnly)
}

func (p *exchangePrecompile) runFactory(
	accessibleState contract.AccessibleState,
	caller common.Address,
	selector [4]byte,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	stateDB := accessibleState.GetStateDB()

	switch selector {
	case SelectorCreateExchange:
		return p.createExchange(stateDB, args, suppliedGas, readOnly)
	case SelectorGetExchange:
		return p.getExchange(stateDB, args, suppliedGas)
	case SelectorGetToken:
		return p.getToken(stateDB, args, suppliedGas)
	case SelectorExchangeCount:
		remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
		if err != nil {
			return nil, 0, err
		}
		count := p.factory.ExchangeCount(stateDB)
		return contract.PackWord(uint256.NewInt(count).Bytes()), remainingGas, nil
	default:
		return nil, suppliedGas, contract.ErrInvalidInput
	}
}

func (p *exchangePrecompile) runExchange(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	selector [4]byte,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	stateDB := accessibleState.GetStateDB()

	ex, err := p.factory.GetByAddress(stateDB, addr)
	if err != nil {
		return nil, suppliedGas, err
	}

	switch selector {
	case SelectorGetReserve:
		remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
		if err != nil {
			return nil, 0, err
		}
		reserve := ex.GetReserve(stateDB)
		return contract.PackWord(reserve.Bytes()), remainingGas, nil

	case SelectorGetInputPrice:
		return p.getInputPrice(args, suppliedGas)

	case SelectorBalanceOf:
		remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
		if err != nil {
			return nil, 0, err
		}
		holder, err := contract.PackedAddress(args, 0)
		if err != nil {
			return nil, remainingGas, err
		}
		balance := ex.Shares().BalanceOf(stateDB, holder)
		return contract.PackWord(balance.Bytes()), remainingGas, nil

	case SelectorTotalSupply:
		remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
		if err != nil {
			return nil, 0, err
		}
		supply := ex.Shares().TotalSupply(stateDB)
		return contract.PackWord(supply.Bytes()), remainingGas, nil

	case SelectorAddLiquidity:
		return p.addLiquidity(stateDB, ex, caller, args, suppliedGas, readOnly)
	case SelectorRemoveLiquidity:
		return p.removeLiquidity(stateDB, ex, caller, args, suppliedGas, readOnly)
	case SelectorSwapBaseForToken:
		return p.swapBaseForToken(stateDB, ex, caller, args, suppliedGas, readOnly)
	case SelectorSwapTokenForBase:
		return p.swapTokenForBase(stateDB, ex, caller, args, suppliedGas, readOnly)
	case SelectorTransfer:
		return p.transferShares(stateDB, ex, caller, args, suppliedGas, readOnly)

	default:
		return nil, suppliedGas, contract.ErrInvalidInput
	}
}

// getInputPrice quotes the fee-adjusted output for a hypothetical input; pure,
// no state access.
func (p *exchangePrecompile) getInputPrice(args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasQuote)
	if err != nil {
		return nil, 0, err
	}
	inputAmount, err := contract.PackedUint256(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	inputReserve, err := contract.PackedUint256(args, 1)
	if err != nil {
		return nil, remainingGas, err
	}
	outputReserve, err := contract.PackedUint256(args, 2)
	if err != nil {
		return nil, remainingGas, err
	}
	out, err := GetOutputAmount(inputAmount, inputReserve, outputReserve)
	if err != nil {
		return nil, remainingGas, err
	}
	return contract.PackWord(out.Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) addLiquidity(
	stateDB contract.StateDB,
	ex *Exchange,
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasLiquidity)
	if err != nil {
		return nil, 0, err
	}
	tokenAmount, err := contract.PackedUint256(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	valueSent, err := contract.PackedUint256(args, 1)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	minted, err := ex.AddLiquidity(stateDB, caller, tokenAmount, valueSent)
	if err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	return contract.PackWord(minted.Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) removeLiquidity(
	stateDB contract.StateDB,
	ex *Exchange,
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasLiquidity)
	if err != nil {
		return nil, 0, err
	}
	shareAmount, err := contract.PackedUint256(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	baseOut, tokenOut, err := ex.RemoveLiquidity(stateDB, caller, shareAmount)
	if err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	ret := append(contract.PackWord(baseOut.Bytes()), contract.PackWord(tokenOut.Bytes())...)
	return ret, remainingGas, nil
}

func (p *exchangePrecompile) swapBaseForToken(
	stateDB contract.StateDB,
	ex *Exchange,
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasSwap)
	if err != nil {
		return nil, 0, err
	}
	minTokens, err := contract.PackedUint256(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	valueSent, err := contract.PackedUint256(args, 1)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	tokensOut, err := ex.SwapBaseForToken(stateDB, caller, valueSent, minTokens)
	if err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	return contract.PackWord(tokensOut.Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) swapTokenForBase(
	stateDB contract.StateDB,
	ex *Exchange,
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasSwap)
	if err != nil {
		return nil, 0, err
	}
	tokensSold, err := contract.PackedUint256(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	minBase, err := contract.PackedUint256(args, 1)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	baseOut, err := ex.SwapTokenForBase(stateDB, caller, tokensSold, minBase)
	if err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	return contract.PackWord(baseOut.Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) transferShares(
	stateDB contract.StateDB,
	ex *Exchange,
	caller common.Address,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasTransfer)
	if err != nil {
		return nil, 0, err
	}
	to, err := contract.PackedAddress(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	amount, err := contract.PackedUint256(args, 1)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	if err := ex.Shares().Transfer(stateDB, caller, to, amount); err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	ret := make([]byte, common.HashLength)
	ret[common.HashLength-1] = 1
	return ret, remainingGas, nil
}

func (p *exchangePrecompile) createExchange(
	stateDB contract.StateDB,
	args []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, contract.ErrWriteProtection
	}
	remainingGas, err := contract.DeductGas(suppliedGas, GasCreate)
	if err != nil {
		return nil, 0, err
	}
	token, err := contract.PackedAddress(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}

	snapshot := stateDB.Snapshot()
	ex, err := p.factory.CreateExchange(stateDB, token)
	if err != nil {
		stateDB.RevertToSnapshot(snapshot)
		return nil, remainingGas, err
	}
	return contract.PackWord(ex.Address().Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) getExchange(stateDB contract.StateDB, args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
	if err != nil {
		return nil, 0, err
	}
	token, err := contract.PackedAddress(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	ex, err := p.factory.GetExchange(stateDB, token)
	if err != nil {
		return nil, remainingGas, err
	}
	return contract.PackWord(ex.Address().Bytes()), remainingGas, nil
}

func (p *exchangePrecompile) getToken(stateDB contract.StateDB, args []byte, suppliedGas uint64) ([]byte, uint64, error) {
	remainingGas, err := contract.DeductGas(suppliedGas, GasRead)
	if err != nil {
		return nil, 0, err
	}
	exchAddr, err := contract.PackedAddress(args, 0)
	if err != nil {
		return nil, remainingGas, err
	}
	token, err := p.factory.GetToken(stateDB, exchAddr)
	if err != nil {
		return nil, remainingGas, err
	}
	return contract.PackWord(token.Bytes()), remainingGas, nil
}
