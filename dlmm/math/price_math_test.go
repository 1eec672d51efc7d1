package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

var binSteps = []uint16{1, 2, 5, 10, 25, 80, 100, 250, 400}

func TestPriceAtZeroIsOne(t *testing.T) {
	for _, step := range binSteps {
		price, err := GetPriceFromID(0, step)
		require.NoError(t, err)
		require.Equal(t, 0, price.Cmp(shared.OneQ64), "bin step %d", step)
	}
}

func TestPriceMonotonic(t *testing.T) {
	for _, step := range []uint16{1, 10, 100} {
		var prev *big.Int
		for id := int32(-2000); id <= 2000; id += 7 {
			price, err := GetPriceFromID(id, step)
			require.NoError(t, err)
			if prev != nil {
				require.Equal(t, 1, price.Cmp(prev), "step %d id %d", step, id)
			}
			prev = price
		}
	}
}

func TestPriceReciprocal(t *testing.T) {
	for _, step := range []uint16{1, 10, 100} {
		for _, id := range []int32{1, 7, 100, 1234, 3000} {
			p, err := GetPriceFromID(id, step)
			require.NoError(t, err)
			q, err := GetPriceFromID(-id, step)
			require.NoError(t, err)

			prod, err := MulShr(p, q, shared.ScaleOffset, shared.RoundingUp)
			require.NoError(t, err)
			diff := new(big.Int).Sub(prod, shared.OneQ64)
			require.True(t, diff.CmpAbs(big.NewInt(1)) <= 0, "step %d id %d diff %s", step, id, diff)
		}
	}
}

func TestPriceScenarioBinStep10(t *testing.T) {
	price, err := GetPriceFromID(100, 10)
	require.NoError(t, err)

	want := new(big.Float).SetPrec(256).SetInt64(1)
	base, _ := new(big.Float).SetPrec(256).SetString("1.001")
	for i := 0; i < 100; i++ {
		want.Mul(want, base)
	}
	got := new(big.Float).SetPrec(256).SetInt(price)
	got.Quo(got, new(big.Float).SetPrec(256).SetInt(shared.OneQ64))

	relErr := new(big.Float).Sub(got, want)
	relErr.Quo(relErr, want)
	f, _ := relErr.Float64()
	if f < 0 {
		f = -f
	}
	require.Less(t, f, 1e-12)
}

func TestPriceOutOfRange(t *testing.T) {
	_, err := Pow(GetBase(1), 0x80000)
	require.ErrorIs(t, err, shared.ErrOverflow)

	_, err = GetPriceFromID(shared.MaxBinID, shared.MaxBinStep)
	require.ErrorIs(t, err, shared.ErrOverflow)
}

func TestGetIDFromPrice(t *testing.T) {
	for _, step := range []uint16{1, 10, 100} {
		for _, id := range []int32{-3000, -70, -1, 0, 1, 69, 3000} {
			price, err := GetPriceFromID(id, step)
			require.NoError(t, err)

			down, err := GetIDFromPrice(price, step, true)
			require.NoError(t, err)
			require.Equal(t, id, down)

			up, err := GetIDFromPrice(price, step, false)
			require.NoError(t, err)
			require.Equal(t, id, up)

			between := new(big.Int).Add(price, big.NewInt(1))
			down, err = GetIDFromPrice(between, step, true)
			require.NoError(t, err)
			require.Equal(t, id, down)
			up, err = GetIDFromPrice(between, step, false)
			require.NoError(t, err)
			require.Equal(t, id+1, up)
		}
	}
}

func TestDecimalConversion(t *testing.T) {
	v, err := ToDecimal(shared.OneQ64)
	require.NoError(t, err)
	require.Equal(t, 0, v.Cmp(DecimalPrecision))

	back, err := FromDecimal(v)
	require.NoError(t, err)
	require.Equal(t, 0, back.Cmp(shared.OneQ64))
}

func TestGetLiquidity(t *testing.T) {
	l, err := GetLiquidity(100, 50, shared.OneQ64)
	require.NoError(t, err)
	require.Equal(t, 0, l.Cmp(new(big.Int).Lsh(big.NewInt(150), 64)))

	_, err = GetLiquidity(^uint64(0), ^uint64(0), shared.MaxU128)
	require.ErrorIs(t, err, shared.ErrOverflow)
}
