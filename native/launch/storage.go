package launch

import (
	"fmt"
	"math/big"

	"sendor/core/types"
)

// StoreState abstracts the subset of state-manager functionality required by
// the launch store. The state manager stages every write, so each operation's
// records and balances commit together or not at all.
type StoreState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// RLP has no signed integers, so persisted records carry window offsets as
// unsigned values; offsets are always inside [0, DaySeconds).
type storedLaunch struct {
	ID            uint64
	Decimals      uint8
	BasePrice     uint64
	Slope         uint64
	CurrentSupply uint64
	TradingDay    uint64
	Window1Start  uint64
	Window1Len    uint64
	Window2Start  uint64
	Window2Len    uint64
}

type storedMetadata struct {
	ID        uint64
	Name      string
	Symbol    string
	URI       string
	CreatedAt uint64
}

type storedActionRecord struct {
	LaunchID      uint64
	Address       [20]byte
	LastActionDay uint64
}

type storedGlobal struct {
	Admin        [20]byte
	FeeRecipient [20]byte
	LaunchFee    *big.Int
	LaunchCount  uint64
}

type storedTokenBalance struct {
	Amount uint64
}

// Store persists launch records in the underlying key-value state.
type Store struct {
	state StoreState
}

// NewStore binds a launch store to the provided state backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state}
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, ErrNilState
	}
	return s.state, nil
}

// GlobalGet loads the registry state.
func (s *Store) GlobalGet() (*Global, bool, error) {
	state, err := s.withState()
	if err != nil {
		return nil, false, err
	}
	var stored storedGlobal
	ok, err := state.KVGet(globalKey(), &stored)
	if err != nil {
		return nil, false, fmt.Errorf("launch: load global: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	global := &Global{
		Admin:        stored.Admin,
		FeeRecipient: stored.FeeRecipient,
		LaunchFee:    stored.LaunchFee,
		LaunchCount:  stored.LaunchCount,
	}
	if global.LaunchFee == nil {
		global.LaunchFee = big.NewInt(0)
	}
	return global, true, nil
}

// GlobalPut persists the registry state.
func (s *Store) GlobalPut(global *Global) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if global == nil {
		return ErrInvalidParams
	}
	fee := global.LaunchFee
	if fee == nil {
		fee = big.NewInt(0)
	}
	record := storedGlobal{
		Admin:        global.Admin,
		FeeRecipient: global.FeeRecipient,
		LaunchFee:    fee,
		LaunchCount:  global.LaunchCount,
	}
	if err := state.KVPut(globalKey(), &record); err != nil {
		return fmt.Errorf("launch: persist global: %w", err)
	}
	return nil
}

// LaunchGet loads a launch by id.
func (s *Store) LaunchGet(id uint64) (*Launch, bool, error) {
	state, err := s.withState()
	if err != nil {
		return nil, false, err
	}
	var stored storedLaunch
	ok, err := state.KVGet(launchKey(id), &stored)
	if err != nil {
		return nil, false, fmt.Errorf("launch: load launch %d: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Launch{
		ID:            stored.ID,
		Decimals:      stored.Decimals,
		BasePrice:     stored.BasePrice,
		Slope:         stored.Slope,
		CurrentSupply: stored.CurrentSupply,
		TradingDay:    stored.TradingDay,
		Window1Start:  int64(stored.Window1Start),
		Window1Len:    int64(stored.Window1Len),
		Window2Start:  int64(stored.Window2Start),
		Window2Len:    int64(stored.Window2Len),
	}, true, nil
}

// LaunchPut persists a launch record.
func (s *Store) LaunchPut(l *Launch) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if l == nil {
		return ErrInvalidParams
	}
	record := storedLaunch{
		ID:            l.ID,
		Decimals:      l.Decimals,
		BasePrice:     l.BasePrice,
		Slope:         l.Slope,
		CurrentSupply: l.CurrentSupply,
		TradingDay:    l.TradingDay,
		Window1Start:  uint64(l.Window1Start),
		Window1Len:    uint64(l.Window1Len),
		Window2Start:  uint64(l.Window2Start),
		Window2Len:    uint64(l.Window2Len),
	}
	if err := state.KVPut(launchKey(l.ID), &record); err != nil {
		return fmt.Errorf("launch: persist launch %d: %w", l.ID, err)
	}
	return nil
}

// MetadataGet loads the descriptive metadata for a launch.
func (s *Store) MetadataGet(id uint64) (*Metadata, bool, error) {
	state, err := s.withState()
	if err != nil {
		return nil, false, err
	}
	var stored storedMetadata
	ok, err := state.KVGet(metadataKey(id), &stored)
	if err != nil {
		return nil, false, fmt.Errorf("launch: load metadata %d: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Metadata{
		ID:        stored.ID,
		Name:      stored.Name,
		Symbol:    stored.Symbol,
		URI:       stored.URI,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// MetadataPut persists launch metadata.
func (s *Store) MetadataPut(meta *Metadata) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if meta == nil {
		return ErrInvalidParams
	}
	record := storedMetadata{
		ID:        meta.ID,
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		URI:       meta.URI,
		CreatedAt: uint64(meta.CreatedAt),
	}
	if err := state.KVPut(metadataKey(meta.ID), &record); err != nil {
		return fmt.Errorf("launch: persist metadata %d: %w", meta.ID, err)
	}
	return nil
}

// ActionRecordGet loads the rate-limit record for (launch, address).
func (s *Store) ActionRecordGet(id uint64, addr [20]byte) (*ActionRecord, bool, error) {
	state, err := s.withState()
	if err != nil {
		return nil, false, err
	}
	var stored storedActionRecord
	ok, err := state.KVGet(actionRecordKey(id, addr), &stored)
	if err != nil {
		return nil, false, fmt.Errorf("launch: load action record: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &ActionRecord{
		LaunchID:      stored.LaunchID,
		Address:       stored.Address,
		LastActionDay: stored.LastActionDay,
	}, true, nil
}

// ActionRecordPut persists a rate-limit record.
func (s *Store) ActionRecordPut(record *ActionRecord) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if record == nil {
		return ErrInvalidParams
	}
	stored := storedActionRecord{
		LaunchID:      record.LaunchID,
		Address:       record.Address,
		LastActionDay: record.LastActionDay,
	}
	if err := state.KVPut(actionRecordKey(record.LaunchID, record.Address), &stored); err != nil {
		return fmt.Errorf("launch: persist action record: %w", err)
	}
	return nil
}

// TokenBalanceGet returns the holdings of addr for the launch, in base units.
func (s *Store) TokenBalanceGet(id uint64, addr [20]byte) (uint64, error) {
	state, err := s.withState()
	if err != nil {
		return 0, err
	}
	var stored storedTokenBalance
	ok, err := state.KVGet(tokenBalanceKey(id, addr), &stored)
	if err != nil {
		return 0, fmt.Errorf("launch: load token balance: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return stored.Amount, nil
}

// TokenBalancePut records the holdings of addr for the launch.
func (s *Store) TokenBalancePut(id uint64, addr [20]byte, amount uint64) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	if err := state.KVPut(tokenBalanceKey(id, addr), &storedTokenBalance{Amount: amount}); err != nil {
		return fmt.Errorf("launch: persist token balance: %w", err)
	}
	return nil
}

// GetAccount exposes the reserve-currency account backing the custody moves.
func (s *Store) GetAccount(addr []byte) (*types.Account, error) {
	state, err := s.withState()
	if err != nil {
		return nil, err
	}
	return state.GetAccount(addr)
}

// PutAccount persists a reserve-currency account.
func (s *Store) PutAccount(addr []byte, account *types.Account) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	return state.PutAccount(addr, account)
}
