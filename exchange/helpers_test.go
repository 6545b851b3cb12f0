// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package exchange

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/exchange/contract"
)

// MockStateDB implements contract.StateDB for testing, with real
// snapshot/revert via an undo journal. onAddBalance, when set, runs after a
// credit lands; tests use it to observe state mid-operation.
type MockStateDB struct {
	storage  map[common.Address]map[common.Hash]common.Hash
	balances map[common.Address]*uint256.Int
	nonces   map[common.Address]uint64
	accounts map[common.Address]bool
	logs     []*ethtypes.Log

	journal   []func()
	snapshots []int

	onAddBalance func(addr common.Address, amount *uint256.Int)
}

var _ contract.StateDB = (*MockStateDB)(nil)

func NewMockStateDB() *MockStateDB {
	return &MockStateDB{
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		balances: make(map[common.Address]*uint256.Int),
		nonces:   make(map[common.Address]uint64),
		accounts: make(map[common.Address]bool),
	}
}

func (m *MockStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if m.storage[addr] == nil {
		return common.Hash{}
	}
	return m.storage[addr][key]
}

func (m *MockStateDB) SetState(addr common.Address, key, value common.Hash) {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
	prev, hadPrev := m.storage[addr][key]
	m.journal = append(m.journal, func() {
		if hadPrev {
			m.storage[addr][key] = prev
		} else {
			delete(m.storage[addr], key)
		}
	})
	m.storage[addr][key] = value
}

func (m *MockStateDB) GetBalance(addr common.Address) *uint256.Int {
	if bal, ok := m.balances[addr]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

func (m *MockStateDB) setBalance(addr common.Address, bal *uint256.Int) {
	prev, hadPrev := m.balances[addr]
	m.journal = append(m.journal, func() {
		if hadPrev {
			m.balances[addr] = prev
		} else {
			delete(m.balances, addr)
		}
	})
	m.balances[addr] = bal
}

func (m *MockStateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) {
	bal := m.GetBalance(addr)
	m.setBalance(addr, bal.Add(bal, amount))
	if m.onAddBalance != nil {
		m.onAddBalance(addr, amount)
	}
}

func (m *MockStateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) {
	bal := m.GetBalance(addr)
	m.setBalance(addr, bal.Sub(bal, amount))
}

func (m *MockStateDB) GetNonce(addr common.Address) uint64 {
	return m.nonces[addr]
}

func (m *MockStateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	m.nonces[addr] = nonce
}

func (m *MockStateDB) CreateAccount(addr common.Address) {
	m.accounts[addr] = true
}

func (m *MockStateDB) Exist(addr common.Address) bool {
	return m.accounts[addr]
}

func (m *MockStateDB) AddLog(log *ethtypes.Log) {
	m.journal = append(m.journal, func() {
		m.logs = m.logs[:len(m.logs)-1]
	})
	m.logs = append(m.logs, log)
}

func (m *MockStateDB) Logs() []*ethtypes.Log { return m.logs }

func (m *MockStateDB) Snapshot() int {
	id := len(m.snapshots)
	m.snapshots = append(m.snapshots, len(m.journal))
	return id
}

func (m *MockStateDB) RevertToSnapshot(id int) {
	mark := m.snapshots[id]
	for i := len(m.journal) - 1; i >= mark; i-- {
		m.journal[i]()
	}
	m.journal = m.journal[:mark]
	m.snapshots = m.snapshots[:id]
}

// mockBlockContext implements contract.BlockContext.
type mockBlockContext struct {
	number    *big.Int
	timestamp uint64
}

func (c *mockBlockContext) Number() *big.Int  { return c.number }
func (c *mockBlockContext) Timestamp() uint64 { return c.timestamp }

// mockAccessibleState implements contract.AccessibleState.
type mockAccessibleState struct {
	stateDB      contract.StateDB
	blockContext contract.BlockContext
}

func newMockAccessibleState(stateDB contract.StateDB) *mockAccessibleState {
	return &mockAccessibleState{
		stateDB:      stateDB,
		blockContext: &mockBlockContext{number: big.NewInt(1), timestamp: 1700000000},
	}
}

func (a *mockAccessibleState) GetStateDB() contract.StateDB           { return a.stateDB }
func (a *mockAccessibleState) GetBlockContext() contract.BlockContext { return a.blockContext }

// fundedPool creates a fresh precompile, lists [token], seeds [provider] with
// tokens, approves the exchange, and deposits the initial reserves. The host
// value credit is simulated by adding the base amount to the exchange account
// before calling AddLiquidity.
func fundedPool(
	stateDB *MockStateDB,
	token, provider common.Address,
	baseReserve, tokenReserve uint64,
) (*exchangePrecompile, *Exchange) {
	p := &exchangePrecompile{factory: NewFactory()}
	ex, err := p.factory.CreateExchange(stateDB, token)
	if err != nil {
		panic(err)
	}

	t := NewStateToken(token)
	t.Mint(stateDB, provider, uint256.NewInt(1_000_000_000))
	t.Approve(stateDB, provider, ex.Address(), uint256.NewInt(1_000_000_000))

	base := uint256.NewInt(baseReserve)
	stateDB.AddBalance(provider, uint256.NewInt(1_000_000_000), tracing.BalanceChangeTransfer)
	stateDB.SubBalance(provider, base, tracing.BalanceChangeTransfer)
	stateDB.AddBalance(ex.Address(), base, tracing.BalanceChangeTransfer)
	if _, err := ex.AddLiquidity(stateDB, provider, uint256.NewInt(tokenReserve), base); err != nil {
		panic(err)
	}
	return p, ex
}

// sendValue simulates the host crediting a payable call's value to the
// exchange account.
func sendValue(stateDB *MockStateDB, from, exchange common.Address, amount *uint256.Int) {
	stateDB.SubBalance(from, amount, tracing.BalanceChangeTransfer)
	stateDB.AddBalance(exchange, amount, tracing.BalanceChangeTransfer)
}
