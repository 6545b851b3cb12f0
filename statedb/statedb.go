// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package statedb provides a standalone implementation of the precompile
// StateDB interface backed by a key-value database. It backs tests and
// offline tooling; inside a node the EVM supplies its own StateDB.
package statedb

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/exchange/contract"
)

// Key prefixes in the backing database.
var (
	storagePrefix = []byte("s/")
	balancePrefix = []byte("b/")
	noncePrefix   = []byte("n/")
	accountPrefix = []byte("a/")
)

var errNegativeBalance = errors.New("balance underflow")

// StateDB keeps all mutations in memory, journaled for snapshot/revert, and
// flushes them to the backing database only on Commit. Reads fall through to
// the database for slots the overlay has not touched.
type StateDB struct {
	db database.Database

	storage  map[common.Address]map[common.Hash]common.Hash
	balances map[common.Address]*uint256.Int
	nonces   map[common.Address]uint64
	accounts map[common.Address]bool

	logs []*ethtypes.Log

	// journal holds undo closures; snapshots holds journal lengths.
	journal   []func()
	snapshots []int
}

var _ contract.StateDB = (*StateDB)(nil)

// New opens a StateDB over [db].
func New(db database.Database) *StateDB {
	return &StateDB{
		db:       db,
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		balances: make(map[common.Address]*uint256.Int),
		nonces:   make(map[common.Address]uint64),
		accounts: make(map[common.Address]bool),
	}
}

func storageKey(addr common.Address, slot common.Hash) []byte {
	key := make([]byte, 0, len(storagePrefix)+common.AddressLength+common.HashLength)
	key = append(key, storagePrefix...)
	key = append(key, addr.Bytes()...)
	return append(key, slot.Bytes()...)
}

func addrKey(prefix []byte, addr common.Address) []byte {
	key := make([]byte, 0, len(prefix)+common.AddressLength)
	key = append(key, prefix...)
	return append(key, addr.Bytes()...)
}

func (s *StateDB) GetState(addr common.Address, slot common.Hash) common.Hash {
	if slots, ok := s.storage[addr]; ok {
		if val, ok := slots[slot]; ok {
			return val
		}
	}
	val, err := s.db.Get(storageKey(addr, slot))
	if err != nil {
		return common.Hash{}
	}
	return common.BytesToHash(val)
}

func (s *StateDB) SetState(addr common.Address, slot common.Hash, value common.Hash) {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		s.storage[addr] = slots
	}
	prev, hadPrev := slots[slot]
	s.journal = append(s.journal, func() {
		if hadPrev {
			slots[slot] = prev
		} else {
			delete(slots, slot)
		}
	})
	slots[slot] = value
}

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if balance, ok := s.balances[addr]; ok {
		return new(uint256.Int).Set(balance)
	}
	val, err := s.db.Get(addrKey(balancePrefix, addr))
	if err != nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).SetBytes(val)
}

func (s *StateDB) setBalance(addr common.Address, balance *uint256.Int) {
	prev, hadPrev := s.balances[addr]
	s.journal = append(s.journal, func() {
		if hadPrev {
			s.balances[addr] = prev
		} else {
			delete(s.balances, addr)
		}
	})
	s.balances[addr] = balance
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) {
	balance := s.GetBalance(addr)
	s.setBalance(addr, balance.Add(balance, amount))
}

// SubBalance panics on underflow: callers are expected to have checked the
// balance, and silently clamping would corrupt the ledger.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) {
	balance := s.GetBalance(addr)
	if balance.Lt(amount) {
		panic(fmt.Errorf("%w: %s has %s, subtracting %s", errNegativeBalance, addr, balance, amount))
	}
	s.setBalance(addr, balance.Sub(balance, amount))
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if nonce, ok := s.nonces[addr]; ok {
		return nonce
	}
	val, err := s.db.Get(addrKey(noncePrefix, addr))
	if err != nil || len(val) != 8 {
		return 0
	}
	var nonce uint64
	for _, b := range val {
		nonce = nonce<<8 | uint64(b)
	}
	return nonce
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64, reason tracing.NonceChangeReason) {
	prev, hadPrev := s.nonces[addr]
	s.journal = append(s.journal, func() {
		if hadPrev {
			s.nonces[addr] = prev
		} else {
			delete(s.nonces, addr)
		}
	})
	s.nonces[addr] = nonce
}

func (s *StateDB) CreateAccount(addr common.Address) {
	if s.Exist(addr) {
		return
	}
	s.journal = append(s.journal, func() {
		delete(s.accounts, addr)
	})
	s.accounts[addr] = true
}

func (s *StateDB) Exist(addr common.Address) bool {
	if exists, ok := s.accounts[addr]; ok {
		return exists
	}
	has, err := s.db.Has(addrKey(accountPrefix, addr))
	return err == nil && has
}

func (s *StateDB) AddLog(log *ethtypes.Log) {
	s.journal = append(s.journal, func() {
		s.logs = s.logs[:len(s.logs)-1]
	})
	s.logs = append(s.logs, log)
}

// Logs returns the logs emitted since the StateDB was opened.
func (s *StateDB) Logs() []*ethtypes.Log {
	return s.logs
}

func (s *StateDB) Snapshot() int {
	id := len(s.snapshots)
	s.snapshots = append(s.snapshots, len(s.journal))
	return id
}

func (s *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id >= len(s.snapshots) {
		panic(fmt.Errorf("invalid snapshot id %d", id))
	}
	mark := s.snapshots[id]
	for i := len(s.journal) - 1; i >= mark; i-- {
		s.journal[i]()
	}
	s.journal = s.journal[:mark]
	s.snapshots = s.snapshots[:id]
}

// Commit flushes the overlay to the backing database and clears the journal.
func (s *StateDB) Commit() error {
	batch := s.db.NewBatch()
	for addr, slots := range s.storage {
		for slot, val := range slots {
			if err := batch.Put(storageKey(addr, slot), val.Bytes()); err != nil {
				return err
			}
		}
	}
	for addr, balance := range s.balances {
		if err := batch.Put(addrKey(balancePrefix, addr), balance.Bytes()); err != nil {
			return err
		}
	}
	for addr, nonce := range s.nonces {
		buf := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			buf[i] = byte(nonce)
			nonce >>= 8
		}
		if err := batch.Put(addrKey(noncePrefix, addr), buf); err != nil {
			return err
		}
	}
	for addr, exists := range s.accounts {
		if !exists {
			continue
		}
		if err := batch.Put(addrKey(accountPrefix, addr), []byte{1}); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.storage = make(map[common.Address]map[common.Hash]common.Hash)
	s.balances = make(map[common.Address]*uint256.Int)
	s.nonces = make(map[common.Address]uint64)
	s.accounts = make(map[common.Address]bool)
	s.journal = nil
	s.snapshots = nil
	return nil
}
