package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

type Uint128 binary.Uint128

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	} else if i.Sign() < 0 {
		return errors.New("value cannot be negative")
	} else if i.BitLen() > 128 {
		return errors.New("value overflows Uint128")
	}
	u.Lo = i.Uint64()
	u.Hi = i.Rsh(i, 64).Uint64()
	return nil
}

// FromString parses a base-10 u128.
func FromString(num string) (binary.Uint128, error) {
	out := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(out)); err != nil {
		return binary.Uint128{}, err
	}
	return *out, nil
}

// MustFromString is FromString for literals.
func MustFromString(num string) binary.Uint128 {
	out, err := FromString(num)
	if err != nil {
		panic(err)
	}
	return out
}

// FromBig keeps the low 128 bits of v; callers range-check first.
func FromBig(v *big.Int) binary.Uint128 {
	if v == nil {
		return binary.Uint128{}
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return binary.Uint128{Lo: lo, Hi: hi}
}

// ToBig returns v as a non-negative big integer.
func ToBig(v binary.Uint128) *big.Int {
	out := new(big.Int).SetUint64(v.Hi)
	out.Lsh(out, 64)
	return out.Or(out, new(big.Int).SetUint64(v.Lo))
}

// FromUint64 widens v.
func FromUint64(v uint64) binary.Uint128 {
	return binary.Uint128{Lo: v}
}

func IsZero(v binary.Uint128) bool {
	return v.Lo == 0 && v.Hi == 0
}
