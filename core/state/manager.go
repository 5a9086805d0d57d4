package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"sendor/core/types"
	"sendor/storage"
)

var errNilDatabase = errors.New("state: database not configured")

var accountPrefix = []byte("accounts/")

// storedAccount is the RLP-friendly representation persisted for an account.
type storedAccount struct {
	Nonce          uint64
	BalanceReserve *big.Int
}

// Manager provides an RLP-encoded key-value view over the backing database
// with staged writes. Mutating operations accumulate in an overlay; Commit
// flushes the overlay to the database and Reset discards it. Each launch
// operation runs against a clean overlay, so either all of its writes are
// persisted or none are.
type Manager struct {
	db    storage.Database
	dirty map[string][]byte
	gone  map[string]struct{}
}

// NewManager wraps the database with an empty overlay.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:    db,
		dirty: make(map[string][]byte),
		gone:  make(map[string]struct{}),
	}
}

// KVGet decodes the value stored under key into out. It reports false when the
// key is absent. Staged writes shadow the database.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, errNilDatabase
	}
	if _, deleted := m.gone[string(key)]; deleted {
		return false, nil
	}
	encoded, ok := m.dirty[string(key)]
	if !ok {
		stored, err := m.db.Get(key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("state: load %q: %w", key, err)
		}
		encoded = stored
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut stages the RLP encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return errNilDatabase
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	delete(m.gone, string(key))
	m.dirty[string(key)] = encoded
	return nil
}

// KVDelete stages the removal of key.
func (m *Manager) KVDelete(key []byte) error {
	if m == nil || m.db == nil {
		return errNilDatabase
	}
	delete(m.dirty, string(key))
	m.gone[string(key)] = struct{}{}
	return nil
}

// Commit flushes every staged write to the database and clears the overlay.
func (m *Manager) Commit() error {
	if m == nil || m.db == nil {
		return errNilDatabase
	}
	for key, encoded := range m.dirty {
		if err := m.db.Put([]byte(key), encoded); err != nil {
			return fmt.Errorf("state: commit %q: %w", key, err)
		}
	}
	for key := range m.gone {
		if err := m.db.Delete([]byte(key)); err != nil {
			return fmt.Errorf("state: commit delete %q: %w", key, err)
		}
	}
	m.Reset()
	return nil
}

// Reset discards all staged writes.
func (m *Manager) Reset() {
	if m == nil {
		return
	}
	m.dirty = make(map[string][]byte)
	m.gone = make(map[string]struct{})
}

func accountKey(addr []byte) []byte {
	return append(append([]byte(nil), accountPrefix...), addr...)
}

// GetAccount loads the reserve account for addr, or nil when it has never been
// funded.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	var stored storedAccount
	ok, err := m.KVGet(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	account := &types.Account{Nonce: stored.Nonce, BalanceReserve: stored.BalanceReserve}
	if account.BalanceReserve == nil {
		account.BalanceReserve = big.NewInt(0)
	}
	return account, nil
}

// PutAccount stages the account under addr.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if account == nil {
		return m.KVDelete(accountKey(addr))
	}
	balance := account.BalanceReserve
	if balance == nil {
		balance = big.NewInt(0)
	}
	return m.KVPut(accountKey(addr), &storedAccount{Nonce: account.Nonce, BalanceReserve: balance})
}
