package launch

const (
	// MaxDecimals bounds the fixed-point exponent accepted for launched assets.
	MaxDecimals = 18

	// SupplyWholeUnits is the fixed number of whole tokens minted per launch.
	SupplyWholeUnits = 1_000_000_000

	// MinBasePrice is the smallest accepted starting price in reserve units.
	MinBasePrice = 1

	// DaySeconds is the length of one trading cycle.
	DaySeconds = 86_400

	// WindowDuration is the length of each daily trading window in seconds.
	WindowDuration = 900

	// MinGap and MaxGap bound the spacing between the two daily windows.
	MinGap = 43_200
	MaxGap = 64_800

	// SellLimitPercent and TransferLimitPercent cap the fraction of holdings an
	// account may move per cycle.
	SellLimitPercent     = 10
	TransferLimitPercent = 20
)

// NeverActed marks an action record whose account has not yet sold or
// transferred. Day counters are epoch days and can never reach this value.
const NeverActed = ^uint64(0)

// SupplyCap returns the fixed total supply in base units for the given
// exponent. The cap is 1e9 whole units scaled by 10^decimals; exponents whose
// cap does not fit an unsigned 64-bit quantity are rejected.
func SupplyCap(decimals uint8) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, ErrInvalidDecimals
	}
	total := uint64(SupplyWholeUnits)
	for i := uint8(0); i < decimals; i++ {
		next := total * 10
		if next/10 != total {
			return 0, ErrMathOverflow
		}
		total = next
	}
	return total, nil
}
