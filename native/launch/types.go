package launch

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Launch captures one bonding-curve market instance. BasePrice and Slope are
// immutable after creation; CurrentSupply, TradingDay and the window fields are
// mutated only through the engine operations.
type Launch struct {
	ID            uint64
	Decimals      uint8
	BasePrice     uint64
	Slope         uint64
	CurrentSupply uint64
	TradingDay    uint64
	Window1Start  int64
	Window1Len    int64
	Window2Start  int64
	Window2Len    int64
}

// Clone returns a copy the caller can mutate freely.
func (l *Launch) Clone() *Launch {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}

// WindowOpen reports whether the wall-clock instant falls inside one of the
// day's two trading windows. Both intervals are half-open.
func (l *Launch) WindowOpen(now int64) bool {
	if l == nil {
		return false
	}
	t := now % DaySeconds
	return (t >= l.Window1Start && t < l.Window1Start+l.Window1Len) ||
		(t >= l.Window2Start && t < l.Window2Start+l.Window2Len)
}

// SupplyCap returns the fixed total supply for this launch in base units.
func (l *Launch) SupplyCap() (uint64, error) {
	return SupplyCap(l.Decimals)
}

// Metadata records the descriptive fields chosen at creation time.
type Metadata struct {
	ID        uint64
	Name      string
	Symbol    string
	URI       string
	CreatedAt int64
}

// ActionRecord tracks the last cycle in which an account performed a
// rate-limited action (sell or transfer) against a launch. Records are created
// lazily on first use and never deleted while the launch exists.
type ActionRecord struct {
	LaunchID      uint64
	Address       [20]byte
	LastActionDay uint64
}

// NewActionRecord returns a fresh record with the never-acted sentinel.
func NewActionRecord(launchID uint64, addr [20]byte) *ActionRecord {
	return &ActionRecord{LaunchID: launchID, Address: addr, LastActionDay: NeverActed}
}

// Global holds the venue-wide registry state: the platform admin, the fee
// sink, the launch creation fee and the id counter seeding new launches.
type Global struct {
	Admin        [20]byte
	FeeRecipient [20]byte
	LaunchFee    *big.Int
	LaunchCount  uint64
}

// Clone returns a deep copy of the global registry state.
func (g *Global) Clone() *Global {
	if g == nil {
		return nil
	}
	clone := *g
	if g.LaunchFee != nil {
		clone.LaunchFee = new(big.Int).Set(g.LaunchFee)
	} else {
		clone.LaunchFee = big.NewInt(0)
	}
	return &clone
}

// PoolAddress derives the account holding a launch's reserve liquidity.
func PoolAddress(id uint64) [20]byte {
	return moduleAddress("launch/pool", id)
}

// VaultAddress derives the account holding a launch's unsold tokens.
func VaultAddress(id uint64) [20]byte {
	return moduleAddress("launch/vault", id)
}

func moduleAddress(label string, id uint64) [20]byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	digest := ethcrypto.Keccak256([]byte(label), buf)
	var addr [20]byte
	copy(addr[:], digest[12:])
	return addr
}
