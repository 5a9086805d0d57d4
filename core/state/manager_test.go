package state

import (
	"math/big"
	"testing"

	"sendor/core/types"
	"sendor/storage"
)

type testRecord struct {
	Name  string
	Count uint64
}

func TestManagerStagedWrites(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)

	key := []byte("test/record")
	if err := manager.KVPut(key, &testRecord{Name: "alpha", Count: 3}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Staged writes are visible through the manager before commit.
	var got testRecord
	ok, err := manager.KVGet(key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got.Name != "alpha" || got.Count != 3 {
		t.Fatalf("staged read: ok=%v record=%+v", ok, got)
	}

	// The database itself is untouched until commit.
	if _, err := db.Get(key); err == nil {
		t.Fatalf("write reached the database before commit")
	}

	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := db.Get(key); err != nil {
		t.Fatalf("committed key missing from database: %v", err)
	}
}

func TestManagerResetDiscards(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)

	key := []byte("test/record")
	if err := manager.KVPut(key, &testRecord{Name: "beta"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	manager.Reset()

	ok, err := manager.KVGet(key, nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("reset did not discard the staged write")
	}
}

func TestManagerResetRestoresCommittedValue(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)

	key := []byte("test/record")
	if err := manager.KVPut(key, &testRecord{Name: "committed", Count: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := manager.KVPut(key, &testRecord{Name: "staged", Count: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	manager.Reset()

	var got testRecord
	ok, err := manager.KVGet(key, &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got.Name != "committed" {
		t.Fatalf("expected committed value after reset, got ok=%v %+v", ok, got)
	}
}

func TestManagerStagedDelete(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)

	key := []byte("test/record")
	if err := manager.KVPut(key, &testRecord{Name: "gamma"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := manager.KVDelete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// The staged delete shadows the committed value.
	ok, err := manager.KVGet(key, nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("staged delete not visible")
	}

	if err := manager.Commit(); err != nil {
		t.Fatalf("commit delete: %v", err)
	}
	if _, err := db.Get(key); err == nil {
		t.Fatalf("delete did not reach the database")
	}
}

func TestManagerAccountRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	addr := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	account, err := manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("get missing account: %v", err)
	}
	if account != nil {
		t.Fatalf("expected nil for unfunded account")
	}

	if err := manager.PutAccount(addr, &types.Account{Nonce: 9, BalanceReserve: big.NewInt(12345)}); err != nil {
		t.Fatalf("put account: %v", err)
	}
	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	account, err = manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account == nil || account.Nonce != 9 || account.BalanceReserve.Int64() != 12345 {
		t.Fatalf("account round trip: %+v", account)
	}
}
