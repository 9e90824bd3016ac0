package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

var ledgerLog = logrus.WithField("component", "ledger")

// mapCollection is a generic, mutex-guarded K->V store satisfying every
// storage-capability interface in ledger.go. Grounded on the teacher's
// memState (core/virtual_machine.go): typed maps behind a sync.RWMutex,
// generalized from the EVM-shaped balances/contracts maps to NEO's typed
// ledger collections.
type mapCollection[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

func newMapCollection[K comparable, V any]() *mapCollection[K, V] {
	return &mapCollection[K, V]{data: make(map[K]V)}
}

func (m *mapCollection[K, V]) Get(k K) (V, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[k]
	if !ok {
		var zero V
		return zero, fmt.Errorf("key not found")
	}
	return v, nil
}

func (m *mapCollection[K, V]) TryGet(k K) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *mapCollection[K, V]) All() ([]V, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]V, 0, len(m.data))
	for _, v := range m.data {
		out = append(out, v)
	}
	return out, nil
}

func (m *mapCollection[K, V]) Add(k K, v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

func (m *mapCollection[K, V]) Update(k K, v V) error {
	return m.Add(k, v)
}

func (m *mapCollection[K, V]) Delete(k K) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	return nil
}

func (m *mapCollection[K, V]) snapshot() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make(map[K]V, len(m.data))
	for k, v := range m.data {
		cp[k] = v
	}
	return cp
}

func (m *mapCollection[K, V]) restore(snap map[K]V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = snap
}

// storageCollection is the per-contract key/value store backing the
// Storage.* syscalls; GetAll scopes a bulk read to one contract (§4.4
// "Contract.Migrate" copies every item for a contract).
type storageCollection struct {
	mu   sync.RWMutex
	data map[StorageKey]*StorageItem
}

func newStorageCollection() *storageCollection {
	return &storageCollection{data: make(map[StorageKey]*StorageItem)}
}

func (s *storageCollection) Get(k StorageKey) (*StorageItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[k]
	if !ok {
		return nil, fmt.Errorf("storage key not found")
	}
	return v, nil
}

func (s *storageCollection) TryGet(k StorageKey) (*StorageItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[k]
	return v, ok, nil
}

func (s *storageCollection) Add(k StorageKey, v *StorageItem) error    { return s.Update(k, v) }
func (s *storageCollection) Update(k StorageKey, v *StorageItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = v
	return nil
}
func (s *storageCollection) Delete(k StorageKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, k)
	return nil
}

func (s *storageCollection) GetAll(contract UInt160) ([]*StorageItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*StorageItem
	for k, v := range s.data {
		if k.Contract == contract {
			out = append(out, v)
		}
	}
	return out, nil
}

// entries returns (key, value) pairs for contract, sorted by key for
// deterministic iteration — used by Contract.Migrate's storage copy.
func (s *storageCollection) entries(contract UInt160) []struct {
	Key   string
	Value *StorageItem
} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []struct {
		Key   string
		Value *StorageItem
	}
	for k, v := range s.data {
		if k.Contract == contract {
			out = append(out, struct {
				Key   string
				Value *StorageItem
			}{Key: k.Key, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// InMemoryBlockchain is a process-local Blockchain facade sufficient to run
// scripts end-to-end in the CLI and tests. It is not a persistence layer
// (§1 non-goal); on restart all state is lost. Grounded on core/ledger.go's
// NewLedger/Snapshot shape, simplified from WAL-replay to an in-memory
// change set since on-disk layout is out of scope.
type InMemoryBlockchain struct {
	mu     sync.RWMutex
	height uint32

	headers      *mapCollection[UInt256, *Header]
	headersByIdx map[uint32]UInt256
	blocks       *mapCollection[UInt256, *Block]
	blocksByIdx  map[uint32]UInt256
	txs          *mapCollection[UInt256, *Transaction]
	outputs      *mapCollection[OutputKey, *Output]
	accounts     *mapCollection[UInt160, *Account]
	assets       *mapCollection[UInt256, *Asset]
	contracts    *mapCollection[UInt160, *Contract]
	validators   *mapCollection[ECPointKey, *Validator]
	storage      *storageCollection
}

// NewInMemoryBlockchain builds an empty facade at height 0.
func NewInMemoryBlockchain() *InMemoryBlockchain {
	return &InMemoryBlockchain{
		headers:      newMapCollection[UInt256, *Header](),
		headersByIdx: make(map[uint32]UInt256),
		blocks:       newMapCollection[UInt256, *Block](),
		blocksByIdx:  make(map[uint32]UInt256),
		txs:          newMapCollection[UInt256, *Transaction](),
		outputs:      newMapCollection[OutputKey, *Output](),
		accounts:     newMapCollection[UInt160, *Account](),
		assets:       newMapCollection[UInt256, *Asset](),
		contracts:    newMapCollection[UInt160, *Contract](),
		validators:   newMapCollection[ECPointKey, *Validator](),
		storage:      newStorageCollection(),
	}
}

func (l *InMemoryBlockchain) Height() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.height
}

func (l *InMemoryBlockchain) Headers() ReadAllStorage[UInt256, *Header] { return l.headers }
func (l *InMemoryBlockchain) HeaderByIndex(index uint32) (*Header, error) {
	l.mu.RLock()
	h, ok := l.headersByIdx[index]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no header at index %d", ErrInvalidGetHeaderOrBlockArguments, index)
	}
	return l.headers.Get(h)
}

func (l *InMemoryBlockchain) Blocks() ReadAllStorage[UInt256, *Block] { return l.blocks }
func (l *InMemoryBlockchain) BlockByIndex(index uint32) (*Block, error) {
	l.mu.RLock()
	h, ok := l.blocksByIdx[index]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no block at index %d", ErrInvalidGetHeaderOrBlockArguments, index)
	}
	return l.blocks.Get(h)
}

func (l *InMemoryBlockchain) Transactions() ReadStorage[UInt256, *Transaction] { return l.txs }
func (l *InMemoryBlockchain) Outputs() ReadStorage[OutputKey, *Output]         { return l.outputs }
func (l *InMemoryBlockchain) Accounts() ReadWriteStorage[UInt160, *Account]    { return l.accounts }
func (l *InMemoryBlockchain) Assets() ReadWriteStorage[UInt256, *Asset]        { return l.assets }
func (l *InMemoryBlockchain) Contracts() ReadWriteStorage[UInt160, *Contract]  { return l.contracts }
func (l *InMemoryBlockchain) Validators() ReadWriteAllStorage[ECPointKey, *Validator] {
	return l.validators
}
func (l *InMemoryBlockchain) Storage() ReadWriteGetAllStorage[StorageKey, UInt160, *StorageItem] {
	return l.storage
}

// AddBlock appends a block at the next height, indexing its header and
// transactions, the way core/ledger.go's AppendBlock does for its WAL model.
func (l *InMemoryBlockchain) AddBlock(b *Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := b.Index
	hash := b.Hash()
	l.blocksByIdx[idx] = hash
	l.headersByIdx[idx] = hash
	_ = l.blocks.Add(hash, b)
	_ = l.headers.Add(hash, &b.Header)
	for _, tx := range b.Transactions {
		_ = l.txs.Add(tx.Hash, tx)
		for i, out := range tx.Outputs {
			_ = l.outputs.Add(OutputKey{TxHash: tx.Hash, Index: uint16(i)}, out)
		}
	}
	if idx+1 > l.height {
		l.height = idx + 1
	}
	ledgerLog.WithField("height", l.height).Debug("block appended")
	return nil
}

// changeSet is a point-in-time copy of every mutable collection, used by
// Snapshot to roll back on a faulted Application-trigger run (§7
// "Partially performed ledger writes ... are discarded").
type changeSet struct {
	accounts   map[UInt160]*Account
	assets     map[UInt256]*Asset
	contracts  map[UInt160]*Contract
	validators map[ECPointKey]*Validator
	storage    map[StorageKey]*StorageItem
}

// Snapshot runs fn; if fn returns an error every write made to a mutable
// collection during fn is rolled back. Grounded on memState.Snapshot
// (core/virtual_machine.go): copy-before, restore-on-error.
func (l *InMemoryBlockchain) Snapshot(fn func() error) error {
	before := changeSet{
		accounts:   l.accounts.snapshot(),
		assets:     l.assets.snapshot(),
		contracts:  l.contracts.snapshot(),
		validators: l.validators.snapshot(),
		storage:    l.storage.data, // copied below
	}
	l.storage.mu.RLock()
	storageCopy := make(map[StorageKey]*StorageItem, len(l.storage.data))
	for k, v := range l.storage.data {
		storageCopy[k] = v
	}
	l.storage.mu.RUnlock()
	before.storage = storageCopy

	err := fn()
	if err != nil {
		l.accounts.restore(before.accounts)
		l.assets.restore(before.assets)
		l.contracts.restore(before.contracts)
		l.validators.restore(before.validators)
		l.storage.mu.Lock()
		l.storage.data = before.storage
		l.storage.mu.Unlock()
	}
	return err
}
