package math

import (
	"math/big"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// GetLiquidity returns L = price*x + (y << 64), all in Q64.64.
func GetLiquidity(x, y uint64, price *big.Int) (*big.Int, error) {
	if !IsU128(price) {
		return nil, shared.ErrOverflow
	}
	px := new(big.Int).Mul(price, new(big.Int).SetUint64(x))
	qy := new(big.Int).Lsh(new(big.Int).SetUint64(y), shared.ScaleOffset)
	liquidity := px.Add(px, qy)
	if !IsU128(liquidity) {
		return nil, shared.ErrOverflow
	}
	return liquidity, nil
}
