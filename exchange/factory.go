// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/exchange/contract"
	"github.com/luxfi/exchange/registry"
)

// Factory addresses and the instance slots it hands out.
var (
	FactoryAddress     = common.HexToAddress(registry.ExchangeFactoryAddress)
	exchangeRangeStart = common.HexToAddress(registry.ExchangeRangeStart)
)

// maxExchanges is the number of instance slots in the reserved range.
const maxExchanges = 255

// Factory lists tokens: one exchange per token, allocated sequentially
// inside the reserved DEX address range. StateDB is the source of truth; the
// in-memory maps are a cache rebuilt lazily after restarts.
type Factory struct {
	mu sync.RWMutex

	log log.Logger

	// token address -> exchange, exchange address -> exchange
	byToken map[common.Address]*Exchange
	byAddr  map[common.Address]*Exchange
}

// NewFactory creates an empty factory cache.
func NewFactory() *Factory {
	return &Factory{
		log:     log.NewTestLogger(log.InfoLevel),
		byToken: make(map[common.Address]*Exchange),
		byAddr:  make(map[common.Address]*Exchange),
	}
}

// SetLogger replaces the factory's logger.
func (f *Factory) SetLogger(logger log.Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = logger
}

func (f *Factory) countKey() common.Hash {
	return makeStorageKey(factoryCountPrefix, nil)
}

func (f *Factory) exchangeKey(token common.Address) common.Hash {
	return makeStorageKey(factoryExchPrefix, token.Bytes())
}

func (f *Factory) tokenKey(exchange common.Address) common.Hash {
	return makeStorageKey(factoryTokenPrefix, exchange.Bytes())
}

// slotAddress returns the instance address for 1-based slot [n]. The range
// base ends in 0x00 and n <= 255, so the addition never carries.
func slotAddress(n uint64) common.Address {
	addr := exchangeRangeStart
	addr[common.AddressLength-1] += byte(n - 1)
	return addr
}

// CreateExchange lists [token], allocating the next instance slot. Fails if
// the token is the zero address, already listed, or all slots are taken.
func (f *Factory) CreateExchange(stateDB contract.StateDB, token common.Address) (*Exchange, error) {
	if token == (common.Address{}) {
		return nil, fmt.Errorf("%w: token is the zero address", ErrInvalidAddress)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if existing := getStateAddress(stateDB, FactoryAddress, f.exchangeKey(token)); existing != (common.Address{}) {
		return nil, fmt.Errorf("%w: %s is served by %s", ErrExchangeExists, token, existing)
	}

	count := getStateUint256(stateDB, FactoryAddress, f.countKey()).Uint64()
	if count >= maxExchanges {
		return nil, ErrExchangeSlotsFull
	}
	count++
	addr := slotAddress(count)

	setStateUint256(stateDB, FactoryAddress, f.countKey(), uint256.NewInt(count))
	setStateAddress(stateDB, FactoryAddress, f.exchangeKey(token), addr)
	setStateAddress(stateDB, FactoryAddress, f.tokenKey(addr), token)
	if !stateDB.Exist(addr) {
		stateDB.CreateAccount(addr)
	}

	ex := NewExchange(addr, NewStateToken(token))
	f.byToken[token] = ex
	f.byAddr[addr] = ex

	emitExchangeCreated(stateDB, FactoryAddress, token, addr)
	f.log.Info("created exchange", "token", token.Hex(), "exchange", addr.Hex(), "slot", count)
	return ex, nil
}

// GetExchange returns the exchange serving [token].
func (f *Factory) GetExchange(stateDB contract.StateDB, token common.Address) (*Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ex, ok := f.byToken[token]; ok {
		return ex, nil
	}
	addr := getStateAddress(stateDB, FactoryAddress, f.exchangeKey(token))
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("%w: no exchange for token %s", ErrExchangeNotFound, token)
	}
	ex := NewExchange(addr, NewStateToken(token))
	f.byToken[token] = ex
	f.byAddr[addr] = ex
	return ex, nil
}

// GetByAddress resolves the exchange listening at instance address [addr].
func (f *Factory) GetByAddress(stateDB contract.StateDB, addr common.Address) (*Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ex, ok := f.byAddr[addr]; ok {
		return ex, nil
	}
	token := getStateAddress(stateDB, FactoryAddress, f.tokenKey(addr))
	if token == (common.Address{}) {
		return nil, fmt.Errorf("%w: no exchange at %s", ErrExchangeNotFound, addr)
	}
	ex := NewExchange(addr, NewStateToken(token))
	f.byToken[token] = ex
	f.byAddr[addr] = ex
	return ex, nil
}

// GetToken returns the token listed at exchange address [addr].
func (f *Factory) GetToken(stateDB contract.StateDB, addr common.Address) (common.Address, error) {
	token := getStateAddress(stateDB, FactoryAddress, f.tokenKey(addr))
	if token == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no exchange at %s", ErrExchangeNotFound, addr)
	}
	return token, nil
}

// ExchangeCount returns how many tokens have been listed.
func (f *Factory) ExchangeCount(stateDB contract.StateDB) uint64 {
	return getStateUint256(stateDB, FactoryAddress, f.countKey()).Uint64()
}
