package math

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

func AddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("add %d + %d: %w", a, b, shared.ErrOverflow)
	}
	return sum, nil
}

func SubU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("sub %d - %d: %w", a, b, shared.ErrOverflow)
	}
	return diff, nil
}

func MulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("mul %d * %d: %w", a, b, shared.ErrOverflow)
	}
	return lo, nil
}

// Add128 returns a+b, failing when the sum leaves the u128 range.
func Add128(a, b *big.Int) (*big.Int, error) {
	out := new(big.Int).Add(a, b)
	if !IsU128(out) {
		return nil, shared.ErrOverflow
	}
	return out, nil
}

// Sub128 returns a-b, failing on underflow.
func Sub128(a, b *big.Int) (*big.Int, error) {
	if b.Cmp(a) > 0 {
		return nil, shared.ErrOverflow
	}
	return new(big.Int).Sub(a, b), nil
}

// WrappingAdd128 adds modulo 2^128.
func WrappingAdd128(a, b *big.Int) *big.Int {
	out := new(big.Int).Add(a, b)
	return out.And(out, shared.MaxU128)
}

// WrappingSub128 subtracts modulo 2^128.
func WrappingSub128(a, b *big.Int) *big.Int {
	out := new(big.Int).Sub(a, b)
	return out.And(out, shared.MaxU128)
}

func IsU128(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.BitLen() <= 128
}
