package decimal_math

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQ64RoundTrip(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 64)
	require.True(t, FromQ64(one).Equal(decimal.NewFromInt(1)))

	half := new(big.Int).Rsh(one, 1)
	require.True(t, FromQ64(half).Equal(decimal.RequireFromString("0.5")))

	q, err := ToQ64(decimal.RequireFromString("2.25"))
	require.NoError(t, err)
	require.Zero(t, q.Cmp(new(big.Int).Add(new(big.Int).Lsh(one, 1), new(big.Int).Rsh(one, 2))))

	_, err = ToQ64(decimal.NewFromInt(-1))
	require.Error(t, err)
}

func TestPricePerToken(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 64)
	// SOL (9) / USDC (6): one lamport per micro-unit is 1000 per token
	require.True(t, PricePerToken(one, 9, 6).Equal(decimal.NewFromInt(1000)))
	require.True(t, PricePerToken(one, 6, 9).Equal(decimal.RequireFromString("0.001")))

	back, err := PricePerLamport(decimal.NewFromInt(1000), 9, 6)
	require.NoError(t, err)
	require.Zero(t, back.Cmp(one))

	require.True(t, ToUIAmount(1_500_000, 6).Equal(decimal.RequireFromString("1.5")))
}

func TestBinPrice(t *testing.T) {
	p, err := BinPrice(10, 0)
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.NewFromInt(1)))

	p, err = BinPrice(10, 2)
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.RequireFromString("1.002001")))

	p, err = BinPrice(100, -1)
	require.NoError(t, err)
	require.Equal(t, "0.990099", p.StringFixed(6))
}
