package math

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

// ToU64 narrows v to uint64.
func ToU64(v *big.Int) (uint64, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("cast %v to u64: %w", v, shared.ErrOverflow)
	}
	return v.Uint64(), nil
}

// ToU32 narrows v to uint32.
func ToU32(v *big.Int) (uint32, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 32 {
		return 0, fmt.Errorf("cast %v to u32: %w", v, shared.ErrOverflow)
	}
	return uint32(v.Uint64()), nil
}

// ToU128 narrows v to the on-chain u128 layout.
func ToU128(v *big.Int) (binary.Uint128, error) {
	if !IsU128(v) {
		return binary.Uint128{}, fmt.Errorf("cast %v to u128: %w", v, shared.ErrOverflow)
	}
	return u128.FromBig(v), nil
}
