package launch

import "github.com/holiman/uint256"

// Curve arithmetic runs on 256-bit integers but is constrained to the
// double-width (128-bit) range at every step, matching the fixed contract:
// any intermediate or final value that does not fit 128 bits is a
// MathOverflow, never a silent wrap.

const wideBits = 128

func checkWide(v *uint256.Int) (*uint256.Int, error) {
	if v.BitLen() > wideBits {
		return nil, ErrMathOverflow
	}
	return v, nil
}

func wideMul(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrMathOverflow
	}
	return checkWide(product)
}

func wideAdd(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrMathOverflow
	}
	return checkWide(sum)
}

func wideSub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrMathOverflow
	}
	return diff, nil
}

func pow10(decimals uint8) *uint256.Int {
	result := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < decimals; i++ {
		result.Mul(result, ten)
	}
	return result
}

func asUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}
