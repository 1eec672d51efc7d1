package math

import (
	"math/big"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// Pow raises a Q64.64 base to a signed integer power by repeated squaring.
//
// 19 exponent bits cover every bin id; the 20th bit (MaxExponential) would
// already overflow Q64.64. A base >= 1 is inverted first so squaring stays
// below 128 bits, and the result is inverted back at the end.
func Pow(base *big.Int, exp int32) (*big.Int, error) {
	if exp == 0 {
		return new(big.Int).Set(shared.OneQ64), nil
	}
	if !IsU128(base) || base.Sign() == 0 {
		return nil, shared.ErrOverflow
	}

	invert := exp < 0
	absExp := int64(exp)
	if absExp < 0 {
		absExp = -absExp
	}
	if absExp >= shared.MaxExponential.Int64() {
		return nil, shared.ErrOverflow
	}

	squaredBase := new(big.Int).Set(base)
	result := new(big.Int).Set(shared.OneQ64)
	if squaredBase.Cmp(result) >= 0 {
		squaredBase.Div(shared.MaxU128, squaredBase)
		invert = !invert
	}

	mulQ64 := func(a, b *big.Int) (*big.Int, error) {
		out := new(big.Int).Mul(a, b)
		if out.BitLen() > 128 {
			return nil, shared.ErrOverflow
		}
		return out.Rsh(out, shared.ScaleOffset), nil
	}

	var err error
	for bit := 0; bit < 19; bit++ {
		if bit > 0 {
			if squaredBase, err = mulQ64(squaredBase, squaredBase); err != nil {
				return nil, err
			}
		}
		if absExp&(1<<bit) != 0 {
			if result, err = mulQ64(result, squaredBase); err != nil {
				return nil, err
			}
		}
	}

	if result.Sign() == 0 {
		return nil, shared.ErrOverflow
	}
	if invert {
		result = new(big.Int).Div(shared.MaxU128, result)
	}
	return result, nil
}
