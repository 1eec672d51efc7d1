package decimal_math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimal places kept when leaving Q64.64.
const PricePrecision = 24

var q64One = Lsh(decimal.NewFromInt(1), 64)

// FromQ64 converts a Q64.64 value to a decimal.
func FromQ64(v *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v, 0).DivRound(q64One, PricePrecision)
}

// ToQ64 converts a non-negative decimal to Q64.64, truncating.
func ToQ64(d decimal.Decimal) (*big.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("negative value %s", d)
	}
	return d.Mul(q64One).Truncate(0).BigInt(), nil
}

// PricePerToken turns a Q64.64 price per lamport into a price per whole
// token: price * 10^(decimalsX - decimalsY).
func PricePerToken(price *big.Int, decimalsX, decimalsY uint8) decimal.Decimal {
	return FromQ64(price).Mul(Pow10(int(decimalsX) - int(decimalsY)))
}

// PricePerLamport is the inverse of PricePerToken, as Q64.64.
func PricePerLamport(uiPrice decimal.Decimal, decimalsX, decimalsY uint8) (*big.Int, error) {
	return ToQ64(uiPrice.Div(Pow10(int(decimalsX) - int(decimalsY))))
}

// ToUIAmount scales a raw token amount by its decimals.
func ToUIAmount(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
}

// BinPrice approximates (1 + binStep/10000)^id with decimal arithmetic. It is
// for display and cross checks only.
func BinPrice(binStep uint16, id int32) (decimal.Decimal, error) {
	base := decimal.NewFromInt(1).Add(decimal.New(int64(binStep), -4))
	return base.PowWithPrecision(decimal.NewFromInt32(id), PricePrecision)
}
