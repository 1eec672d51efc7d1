package math

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

func toU256(x *big.Int) (*uint256.Int, error) {
	if !IsU128(x) {
		return nil, shared.ErrOverflow
	}
	v, _ := uint256.FromBig(x)
	return v, nil
}

// MulDiv computes (x * y) / denominator with a 256-bit intermediate.
func MulDiv(x, y, denominator *big.Int, rounding shared.Rounding) (*big.Int, error) {
	if denominator == nil || denominator.Sign() == 0 {
		return nil, shared.ErrDivisionByZero
	}
	a, err := toU256(x)
	if err != nil {
		return nil, err
	}
	b, err := toU256(y)
	if err != nil {
		return nil, err
	}
	d, err := toU256(denominator)
	if err != nil {
		return nil, err
	}

	// both factors are below 2^128, the product always fits 256 bits
	prod := new(uint256.Int).Mul(a, b)
	quotient, remainder := new(uint256.Int).DivMod(prod, d, new(uint256.Int))
	if rounding == shared.RoundingUp && !remainder.IsZero() {
		quotient.AddUint64(quotient, 1)
	}
	if quotient.BitLen() > 128 {
		return nil, shared.ErrOverflow
	}
	return quotient.ToBig(), nil
}

// MulShr computes (x * y) >> offset.
func MulShr(x, y *big.Int, offset uint8, rounding shared.Rounding) (*big.Int, error) {
	if offset >= 128 {
		return nil, shared.ErrOverflow
	}
	denominator := new(big.Int).Lsh(big.NewInt(1), uint(offset))
	return MulDiv(x, y, denominator, rounding)
}

// ShlDiv computes (x << offset) / y.
func ShlDiv(x, y *big.Int, offset uint8, rounding shared.Rounding) (*big.Int, error) {
	if offset >= 128 {
		return nil, shared.ErrOverflow
	}
	scale := new(big.Int).Lsh(big.NewInt(1), uint(offset))
	return MulDiv(x, scale, y, rounding)
}
