package launch

import "github.com/holiman/uint256"

// The linear price curve charges price(s) = basePrice + slope*s per base unit
// at supply s. Buying qty units starting from currentSupply costs the discrete
// integral over (currentSupply, currentSupply+qty]; selling pays the integral
// over (currentSupply-qty, currentSupply]. Prices are expressed in smallest
// reserve units per smallest asset unit scaled by 10^decimals, so both sums
// are divided by 10^(2*decimals). Floor division only; results are
// bit-identical for identical inputs on every platform.

// ComputeCost returns the exact reserve amount charged for buying qty base
// units at the given supply. The purchase must fit the remaining headroom
// below the fixed supply cap. A zero qty yields zero cost.
func ComputeCost(basePrice, slope uint64, decimals uint8, currentSupply, qty uint64) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, ErrInvalidDecimals
	}
	total, err := SupplyCap(decimals)
	if err != nil {
		return 0, err
	}
	if currentSupply > total || qty > total-currentSupply {
		return 0, ErrInsufficientSupply
	}
	m := pow10(decimals)
	base := uint256.NewInt(basePrice)
	grad := uint256.NewInt(slope)
	supply := uint256.NewInt(currentSupply)
	quantity := uint256.NewInt(qty)

	// basePrice*qty*m
	part1, err := wideMul(base, quantity)
	if err != nil {
		return 0, err
	}
	part1, err = wideMul(part1, m)
	if err != nil {
		return 0, err
	}

	// slope*(currentSupply*qty + qty*(qty+1)/2)
	linear, err := wideMul(supply, quantity)
	if err != nil {
		return 0, err
	}
	tri, err := triangleAscending(quantity)
	if err != nil {
		return 0, err
	}
	linear, err = wideAdd(linear, tri)
	if err != nil {
		return 0, err
	}
	part2, err := wideMul(grad, linear)
	if err != nil {
		return 0, err
	}

	return finishQuote(part1, part2, m)
}

// ComputePayout returns the exact reserve amount paid out for selling qty base
// units down from the given supply. Selling more than the outstanding supply
// is rejected. A zero qty yields zero payout.
func ComputePayout(basePrice, slope uint64, decimals uint8, currentSupply, qty uint64) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, ErrInvalidDecimals
	}
	if qty > currentSupply {
		return 0, ErrInsufficientSupply
	}
	m := pow10(decimals)
	base := uint256.NewInt(basePrice)
	grad := uint256.NewInt(slope)
	supply := uint256.NewInt(currentSupply)
	quantity := uint256.NewInt(qty)

	// basePrice*qty*m
	part1, err := wideMul(base, quantity)
	if err != nil {
		return 0, err
	}
	part1, err = wideMul(part1, m)
	if err != nil {
		return 0, err
	}

	// slope*(currentSupply*qty - qty*(qty-1)/2)
	linear, err := wideMul(supply, quantity)
	if err != nil {
		return 0, err
	}
	tri, err := triangleDescending(quantity)
	if err != nil {
		return 0, err
	}
	linear, err = wideSub(linear, tri)
	if err != nil {
		return 0, err
	}
	part2, err := wideMul(grad, linear)
	if err != nil {
		return 0, err
	}

	return finishQuote(part1, part2, m)
}

// triangleAscending computes qty*(qty+1)/2.
func triangleAscending(qty *uint256.Int) (*uint256.Int, error) {
	next, err := wideAdd(qty, uint256.NewInt(1))
	if err != nil {
		return nil, err
	}
	product, err := wideMul(qty, next)
	if err != nil {
		return nil, err
	}
	return product.Div(product, uint256.NewInt(2)), nil
}

// triangleDescending computes qty*(qty-1)/2.
func triangleDescending(qty *uint256.Int) (*uint256.Int, error) {
	if qty.IsZero() {
		return uint256.NewInt(0), nil
	}
	prev, err := wideSub(qty, uint256.NewInt(1))
	if err != nil {
		return nil, err
	}
	product, err := wideMul(qty, prev)
	if err != nil {
		return nil, err
	}
	return product.Div(product, uint256.NewInt(2)), nil
}

// finishQuote adds the two numerator terms and applies the m^2 scaling shared
// by cost and payout. Using the same denominator on both sides keeps the curve
// dimensionally consistent, so a round trip can never pay out more than was
// charged.
func finishQuote(part1, part2, m *uint256.Int) (uint64, error) {
	numerator, err := wideAdd(part1, part2)
	if err != nil {
		return 0, err
	}
	denominator, err := wideMul(m, m)
	if err != nil {
		return 0, err
	}
	return asUint64(numerator.Div(numerator, denominator))
}
