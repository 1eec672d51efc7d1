package math

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// DecimalPrecision is the scale used by ToDecimal / FromDecimal (1e12).
var DecimalPrecision = big.NewInt(1_000_000_000_000)

// GetBase returns 1 + binStep/10000 in Q64.64.
func GetBase(binStep uint16) *big.Int {
	bps := new(big.Int).Lsh(big.NewInt(int64(binStep)), shared.ScaleOffset)
	bps.Div(bps, big.NewInt(shared.BasisPointMax))
	return bps.Add(bps, shared.OneQ64)
}

// GetPriceFromID returns (1 + binStep/10000)^activeID in Q64.64.
func GetPriceFromID(activeID int32, binStep uint16) (*big.Int, error) {
	price, err := Pow(GetBase(binStep), activeID)
	if err != nil {
		return nil, fmt.Errorf("price of bin %d (step %d): %w", activeID, binStep, err)
	}
	return price, nil
}

// comparePriceAt reports the sign of price(id) - target. Ids whose price
// cannot be represented sit beyond every representable target.
func comparePriceAt(id int32, binStep uint16, target *big.Int) (int, error) {
	price, err := GetPriceFromID(id, binStep)
	if err != nil {
		if !errors.Is(err, shared.ErrOverflow) {
			return 0, err
		}
		if id > 0 {
			return 1, nil
		}
		return -1, nil
	}
	return price.Cmp(target), nil
}

// GetIDFromPrice finds the bin whose price brackets price. With roundDown it
// returns the highest bin priced at or below price, otherwise the lowest bin
// priced at or above it.
func GetIDFromPrice(price *big.Int, binStep uint16, roundDown bool) (int32, error) {
	if price == nil || price.Sign() <= 0 || binStep == 0 {
		return 0, shared.ErrInvalidBinRange
	}

	lo, hi := int32(shared.MinBinID), int32(shared.MaxBinID)
	c, err := comparePriceAt(lo, binStep, price)
	if err != nil {
		return 0, err
	}
	if c > 0 {
		if roundDown {
			return 0, fmt.Errorf("price below bin %d: %w", lo, shared.ErrInvalidBinRange)
		}
		return lo, nil
	}

	for lo < hi {
		mid := lo + (hi-lo+1)/2
		c, err := comparePriceAt(mid, binStep, price)
		if err != nil {
			return 0, err
		}
		if c <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	c, err = comparePriceAt(lo, binStep, price)
	if err != nil {
		return 0, err
	}
	if roundDown || c == 0 {
		return lo, nil
	}
	if lo == shared.MaxBinID {
		return 0, fmt.Errorf("price above bin %d: %w", lo, shared.ErrInvalidBinRange)
	}
	return lo + 1, nil
}

// ToDecimal converts a Q64.64 value to an integer scaled by DecimalPrecision.
func ToDecimal(value *big.Int) (*big.Int, error) {
	if !IsU128(value) {
		return nil, shared.ErrOverflow
	}
	out := new(big.Int).Mul(value, DecimalPrecision)
	out.Rsh(out, shared.ScaleOffset)
	if !IsU128(out) {
		return nil, shared.ErrOverflow
	}
	return out, nil
}

// FromDecimal converts an integer scaled by DecimalPrecision to Q64.64.
func FromDecimal(value *big.Int) (*big.Int, error) {
	if !IsU128(value) {
		return nil, shared.ErrOverflow
	}
	out := new(big.Int).Lsh(value, shared.ScaleOffset)
	out.Div(out, DecimalPrecision)
	if !IsU128(out) {
		return nil, shared.ErrOverflow
	}
	return out, nil
}
