package launch

import (
	"encoding/hex"
	"math/big"
	"time"

	"sendor/core/events"
	"sendor/core/types"
)

type engineState interface {
	GlobalGet() (*Global, bool, error)
	GlobalPut(*Global) error
	LaunchGet(id uint64) (*Launch, bool, error)
	LaunchPut(*Launch) error
	MetadataGet(id uint64) (*Metadata, bool, error)
	MetadataPut(*Metadata) error
	ActionRecordGet(id uint64, addr [20]byte) (*ActionRecord, bool, error)
	ActionRecordPut(*ActionRecord) error
	TokenBalanceGet(id uint64, addr [20]byte) (uint64, error)
	TokenBalancePut(id uint64, addr [20]byte, amount uint64) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine owns every mutation of launch state: buys, sells, transfers and day
// advances. All validations run before the first write; the host's staged
// state manager makes the writes of one operation atomic.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
	seedFn  func() uint64
}

// NewEngine constructs a launch engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		seedFn:  func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the wall-clock source. Primarily for deterministic
// tests and for hosts that replay a recorded clock.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetSeedFunc overrides the window seed source. The value must be identical
// on every replica for a given operation (e.g. derived from ledger height).
func (e *Engine) SetSeedFunc(seed func() uint64) {
	if seed == nil {
		e.seedFn = func() uint64 { return uint64(time.Now().UnixNano()) }
		return
	}
	e.seedFn = seed
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func epochDay(now int64) uint64 {
	if now < 0 {
		return 0
	}
	return uint64(now) / DaySeconds
}

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{BalanceReserve: big.NewInt(0)}
	}
	if acc.BalanceReserve == nil {
		acc.BalanceReserve = big.NewInt(0)
	}
	return acc
}

// Initialize seeds the global registry exactly once.
func (e *Engine) Initialize(admin, feeRecipient [20]byte, launchFee *big.Int) (*Global, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if _, ok, err := e.state.GlobalGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	fee := big.NewInt(0)
	if launchFee != nil {
		if launchFee.Sign() < 0 {
			return nil, ErrInvalidParams
		}
		fee = new(big.Int).Set(launchFee)
	}
	global := &Global{Admin: admin, FeeRecipient: feeRecipient, LaunchFee: fee}
	if err := e.state.GlobalPut(global); err != nil {
		return nil, err
	}
	return global.Clone(), nil
}

// Global returns the registry state without mutating it.
func (e *Engine) Global() (*Global, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	global, ok, err := e.state.GlobalGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return global.Clone(), nil
}

// CreateLaunch registers a new bonding-curve market, charges the launch fee
// and mints the full fixed supply into the launch vault.
func (e *Engine) CreateLaunch(creator [20]byte, basePrice, slope uint64, decimals uint8, name, symbol, uri string) (*Launch, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	global, ok, err := e.state.GlobalGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if decimals > MaxDecimals {
		return nil, ErrInvalidDecimals
	}
	if basePrice < MinBasePrice {
		return nil, ErrInvalidParams
	}
	supplyCap, err := SupplyCap(decimals)
	if err != nil {
		return nil, err
	}
	// The final unit price basePrice + slope*cap must stay representable.
	if _, err := ComputeCost(basePrice, slope, decimals, supplyCap-1, 1); err != nil {
		return nil, err
	}

	if global.LaunchFee != nil && global.LaunchFee.Sign() > 0 {
		creatorAcc, err := e.state.GetAccount(creator[:])
		if err != nil {
			return nil, err
		}
		creatorAcc = ensureAccount(creatorAcc)
		if creatorAcc.BalanceReserve.Cmp(global.LaunchFee) < 0 {
			return nil, ErrInsufficientFunds
		}
		recipientAcc, err := e.state.GetAccount(global.FeeRecipient[:])
		if err != nil {
			return nil, err
		}
		recipientAcc = ensureAccount(recipientAcc)
		creatorAcc.BalanceReserve = new(big.Int).Sub(creatorAcc.BalanceReserve, global.LaunchFee)
		recipientAcc.BalanceReserve = new(big.Int).Add(recipientAcc.BalanceReserve, global.LaunchFee)
		if err := e.state.PutAccount(creator[:], creatorAcc); err != nil {
			return nil, err
		}
		if err := e.state.PutAccount(global.FeeRecipient[:], recipientAcc); err != nil {
			return nil, err
		}
	}

	id := global.LaunchCount
	l := &Launch{
		ID:        id,
		Decimals:  decimals,
		BasePrice: basePrice,
		Slope:     slope,
	}
	if err := e.state.LaunchPut(l); err != nil {
		return nil, err
	}
	meta := &Metadata{ID: id, Name: name, Symbol: symbol, URI: uri, CreatedAt: e.now()}
	if err := e.state.MetadataPut(meta); err != nil {
		return nil, err
	}
	if err := e.state.TokenBalancePut(id, VaultAddress(id), supplyCap); err != nil {
		return nil, err
	}
	next := global.LaunchCount + 1
	if next == 0 {
		return nil, ErrMathOverflow
	}
	global.LaunchCount = next
	if err := e.state.GlobalPut(global); err != nil {
		return nil, err
	}
	e.emit(LaunchCreatedEvent(id, hexAddr(creator), symbol, basePrice, slope))
	return l.Clone(), nil
}

// maybeAdvanceDay rolls the launch into the current wall-clock cycle and
// regenerates its windows. It is the single mutation point for windows outside
// the admin operation and runs before any other validation in the same call.
func (e *Engine) maybeAdvanceDay(l *Launch, now int64) (bool, error) {
	today := epochDay(now)
	if today <= l.TradingDay {
		return false, nil
	}
	l.TradingDay = today
	seed := e.seedFn() + l.ID
	w1, w2, err := GenerateWindows(seed)
	if err != nil {
		return false, err
	}
	l.Window1Start = w1
	l.Window1Len = WindowDuration
	l.Window2Start = w2
	l.Window2Len = WindowDuration
	return true, nil
}

// Buy purchases qty base units from the curve. Buys are not gated by trading
// windows and carry no per-day action limit.
func (e *Engine) Buy(buyer [20]byte, launchID, qty, maxCost uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrLaunchNotFound
	}
	now := e.now()
	rolled, err := e.maybeAdvanceDay(l, now)
	if err != nil {
		return 0, err
	}
	if l.Decimals > MaxDecimals {
		return 0, ErrInvalidDecimals
	}
	supplyCap, err := l.SupplyCap()
	if err != nil {
		return 0, err
	}
	cost, err := ComputeCost(l.BasePrice, l.Slope, l.Decimals, l.CurrentSupply, qty)
	if err != nil {
		return 0, err
	}
	if cost > maxCost {
		return 0, ErrSlippageExceeded
	}

	buyerAcc, err := e.state.GetAccount(buyer[:])
	if err != nil {
		return 0, err
	}
	buyerAcc = ensureAccount(buyerAcc)
	costAmount := new(big.Int).SetUint64(cost)
	if buyerAcc.BalanceReserve.Cmp(costAmount) < 0 {
		return 0, ErrInsufficientFunds
	}

	pool := PoolAddress(launchID)
	poolAcc, err := e.state.GetAccount(pool[:])
	if err != nil {
		return 0, err
	}
	poolAcc = ensureAccount(poolAcc)

	buyerAcc.BalanceReserve = new(big.Int).Sub(buyerAcc.BalanceReserve, costAmount)
	poolAcc.BalanceReserve = new(big.Int).Add(poolAcc.BalanceReserve, costAmount)
	if err := e.state.PutAccount(buyer[:], buyerAcc); err != nil {
		return 0, err
	}
	if err := e.state.PutAccount(pool[:], poolAcc); err != nil {
		return 0, err
	}
	if err := e.moveTokens(launchID, VaultAddress(launchID), buyer, qty); err != nil {
		return 0, err
	}

	next := l.CurrentSupply + qty
	if next < l.CurrentSupply || next > supplyCap {
		return 0, ErrMathOverflow
	}
	l.CurrentSupply = next
	if err := e.state.LaunchPut(l); err != nil {
		return 0, err
	}
	if rolled {
		e.emit(DayAdvancedEvent(l.ID, l.TradingDay, l.Window1Start, l.Window2Start))
	}
	e.emit(PurchaseEvent(l.ID, hexAddr(buyer), qty, cost))
	return cost, nil
}

// Sell returns qty base units to the curve for a reserve payout. Sells are
// window-gated and limited to 10% of holdings once per cycle.
func (e *Engine) Sell(seller [20]byte, launchID, qty, minPayout uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrLaunchNotFound
	}
	now := e.now()
	rolled, err := e.maybeAdvanceDay(l, now)
	if err != nil {
		return 0, err
	}
	if l.Decimals > MaxDecimals {
		return 0, ErrInvalidDecimals
	}
	if !l.WindowOpen(now) {
		return 0, ErrNotInTradingWindow
	}
	payout, err := ComputePayout(l.BasePrice, l.Slope, l.Decimals, l.CurrentSupply, qty)
	if err != nil {
		return 0, err
	}
	if payout < minPayout {
		return 0, ErrPayoutTooLow
	}

	pool := PoolAddress(launchID)
	poolAcc, err := e.state.GetAccount(pool[:])
	if err != nil {
		return 0, err
	}
	poolAcc = ensureAccount(poolAcc)
	payoutAmount := new(big.Int).SetUint64(payout)
	if poolAcc.BalanceReserve.Cmp(payoutAmount) < 0 {
		return 0, ErrInsufficientLiquidity
	}

	record, ok, err := e.state.ActionRecordGet(launchID, seller)
	if err != nil {
		return 0, err
	}
	if !ok {
		record = NewActionRecord(launchID, seller)
	}
	holding, err := e.state.TokenBalanceGet(launchID, seller)
	if err != nil {
		return 0, err
	}
	if err := checkAndRecord(record, epochDay(now), actionSell, holding, qty); err != nil {
		return 0, err
	}

	if err := e.moveTokens(launchID, seller, VaultAddress(launchID), qty); err != nil {
		return 0, err
	}
	sellerAcc, err := e.state.GetAccount(seller[:])
	if err != nil {
		return 0, err
	}
	sellerAcc = ensureAccount(sellerAcc)
	poolAcc.BalanceReserve = new(big.Int).Sub(poolAcc.BalanceReserve, payoutAmount)
	sellerAcc.BalanceReserve = new(big.Int).Add(sellerAcc.BalanceReserve, payoutAmount)
	if err := e.state.PutAccount(pool[:], poolAcc); err != nil {
		return 0, err
	}
	if err := e.state.PutAccount(seller[:], sellerAcc); err != nil {
		return 0, err
	}

	l.CurrentSupply -= qty
	if err := e.state.LaunchPut(l); err != nil {
		return 0, err
	}
	if err := e.state.ActionRecordPut(record); err != nil {
		return 0, err
	}
	if rolled {
		e.emit(DayAdvancedEvent(l.ID, l.TradingDay, l.Window1Start, l.Window2Start))
	}
	e.emit(SaleEvent(l.ID, hexAddr(seller), qty, payout))
	return payout, nil
}

// Transfer moves qty base units between holders. Transfers are window-gated
// and limited to 20% of holdings once per cycle; the curve is not touched.
func (e *Engine) Transfer(from, to [20]byte, launchID, qty uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLaunchNotFound
	}
	now := e.now()
	rolled, err := e.maybeAdvanceDay(l, now)
	if err != nil {
		return err
	}
	if !l.WindowOpen(now) {
		return ErrNotInTradingWindow
	}

	record, ok, err := e.state.ActionRecordGet(launchID, from)
	if err != nil {
		return err
	}
	if !ok {
		record = NewActionRecord(launchID, from)
	}
	holding, err := e.state.TokenBalanceGet(launchID, from)
	if err != nil {
		return err
	}
	if err := checkAndRecord(record, epochDay(now), actionTransfer, holding, qty); err != nil {
		return err
	}

	if err := e.moveTokens(launchID, from, to, qty); err != nil {
		return err
	}
	if rolled {
		if err := e.state.LaunchPut(l); err != nil {
			return err
		}
	}
	if err := e.state.ActionRecordPut(record); err != nil {
		return err
	}
	if rolled {
		e.emit(DayAdvancedEvent(l.ID, l.TradingDay, l.Window1Start, l.Window2Start))
	}
	e.emit(TransferEvent(l.ID, hexAddr(from), hexAddr(to), qty))
	return nil
}

// AdvanceDay unconditionally starts a new trading cycle for the launch,
// bypassing the wall clock. Only the platform admin may call it.
func (e *Engine) AdvanceDay(caller [20]byte, launchID uint64) (*Launch, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	global, ok, err := e.state.GlobalGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if caller != global.Admin {
		return nil, ErrUnauthorized
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLaunchNotFound
	}
	next := l.TradingDay + 1
	if next == 0 {
		return nil, ErrMathOverflow
	}
	l.TradingDay = next
	seed := e.seedFn() + l.ID
	w1, w2, err := GenerateWindows(seed)
	if err != nil {
		return nil, err
	}
	l.Window1Start = w1
	l.Window1Len = WindowDuration
	l.Window2Start = w2
	l.Window2Len = WindowDuration
	if err := e.state.LaunchPut(l); err != nil {
		return nil, err
	}
	e.emit(DayAdvancedEvent(l.ID, l.TradingDay, l.Window1Start, l.Window2Start))
	return l.Clone(), nil
}

// SetWindows starts a new trading cycle with admin-chosen window times in
// place of seeded ones. The windows must be ordered, non-overlapping and fit
// inside one day. Only the platform admin may call it.
func (e *Engine) SetWindows(caller [20]byte, launchID uint64, window1Start, window2Start int64) (*Launch, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	global, ok, err := e.state.GlobalGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if caller != global.Admin {
		return nil, ErrUnauthorized
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLaunchNotFound
	}
	if window1Start < 0 ||
		window2Start < window1Start+WindowDuration ||
		window2Start+WindowDuration > DaySeconds {
		return nil, ErrInvalidWindowTimes
	}
	next := l.TradingDay + 1
	if next == 0 {
		return nil, ErrMathOverflow
	}
	l.TradingDay = next
	l.Window1Start = window1Start
	l.Window1Len = WindowDuration
	l.Window2Start = window2Start
	l.Window2Len = WindowDuration
	if err := e.state.LaunchPut(l); err != nil {
		return nil, err
	}
	e.emit(DayAdvancedEvent(l.ID, l.TradingDay, l.Window1Start, l.Window2Start))
	return l.Clone(), nil
}

// LaunchByID returns a copy of the launch record.
func (e *Engine) LaunchByID(launchID uint64) (*Launch, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	l, ok, err := e.state.LaunchGet(launchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLaunchNotFound
	}
	return l.Clone(), nil
}

// MetadataByID returns the launch metadata recorded at creation.
func (e *Engine) MetadataByID(launchID uint64) (*Metadata, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	meta, ok, err := e.state.MetadataGet(launchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLaunchNotFound
	}
	clone := *meta
	return &clone, nil
}

// TokenBalance returns addr's holdings for the launch.
func (e *Engine) TokenBalance(launchID uint64, addr [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.TokenBalanceGet(launchID, addr)
}

// QuoteBuy prices a prospective purchase without mutating state.
func (e *Engine) QuoteBuy(launchID, qty uint64) (uint64, error) {
	l, err := e.LaunchByID(launchID)
	if err != nil {
		return 0, err
	}
	return ComputeCost(l.BasePrice, l.Slope, l.Decimals, l.CurrentSupply, qty)
}

// QuoteSell prices a prospective sale without mutating state.
func (e *Engine) QuoteSell(launchID, qty uint64) (uint64, error) {
	l, err := e.LaunchByID(launchID)
	if err != nil {
		return 0, err
	}
	return ComputePayout(l.BasePrice, l.Slope, l.Decimals, l.CurrentSupply, qty)
}

// moveTokens shifts launch holdings between two addresses with checked
// arithmetic on both sides.
func (e *Engine) moveTokens(launchID uint64, from, to [20]byte, qty uint64) error {
	if qty == 0 {
		return nil
	}
	fromBalance, err := e.state.TokenBalanceGet(launchID, from)
	if err != nil {
		return err
	}
	if fromBalance < qty {
		return ErrInsufficientFunds
	}
	toBalance, err := e.state.TokenBalanceGet(launchID, to)
	if err != nil {
		return err
	}
	next := toBalance + qty
	if next < toBalance {
		return ErrMathOverflow
	}
	if err := e.state.TokenBalancePut(launchID, from, fromBalance-qty); err != nil {
		return err
	}
	return e.state.TokenBalancePut(launchID, to, next)
}
