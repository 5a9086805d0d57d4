package launch

import "errors"

var (
	ErrNotInTradingWindow     = errors.New("launch: trading is not allowed at this time")
	ErrActionAlreadyPerformed = errors.New("launch: account already acted in the current cycle")
	ErrExceedsSellLimit       = errors.New("launch: sell amount exceeds the daily 10% limit of holdings")
	ErrExceedsTransferLimit   = errors.New("launch: transfer amount exceeds the daily 20% limit of holdings")
	ErrInvalidDecimals        = errors.New("launch: decimals must be 18 or fewer")
	ErrSlippageExceeded       = errors.New("launch: final cost is higher than max cost")
	ErrPayoutTooLow           = errors.New("launch: payout lower than specified minimum")
	ErrMathOverflow           = errors.New("launch: math overflow")
	ErrInsufficientSupply     = errors.New("launch: insufficient token supply available")
	ErrInsufficientFunds      = errors.New("launch: insufficient funds")
	ErrInsufficientLiquidity  = errors.New("launch: insufficient pool liquidity for the sell amount")
	ErrUnauthorized           = errors.New("launch: unauthorized caller")
	ErrInvalidWindowTimes     = errors.New("launch: invalid trading window parameters")
	ErrInvalidParams          = errors.New("launch: invalid launch parameters")

	ErrLaunchNotFound     = errors.New("launch: launch not found")
	ErrNotInitialized     = errors.New("launch: registry not initialized")
	ErrAlreadyInitialized = errors.New("launch: registry already initialized")
	ErrNilState           = errors.New("launch: state not configured")
)
