package math

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

func TestMulDivRounding(t *testing.T) {
	cases := []struct {
		x, y, d int64
	}{
		{10, 10, 3},
		{10, 10, 4},
		{7, 1, 7},
		{123456789, 987654321, 1000000007},
		{0, 5, 3},
	}
	for _, c := range cases {
		x, y, d := big.NewInt(c.x), big.NewInt(c.y), big.NewInt(c.d)
		down, err := MulDiv(x, y, d, shared.RoundingDown)
		require.NoError(t, err)
		up, err := MulDiv(x, y, d, shared.RoundingUp)
		require.NoError(t, err)
		require.True(t, down.Cmp(up) <= 0)

		exact := new(big.Int).Mod(new(big.Int).Mul(x, y), d).Sign() == 0
		require.Equal(t, exact, down.Cmp(up) == 0, "x=%d y=%d d=%d", c.x, c.y, c.d)
	}
}

func TestMulDivErrors(t *testing.T) {
	_, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), shared.RoundingDown)
	require.True(t, errors.Is(err, shared.ErrDivisionByZero))

	_, err = MulDiv(shared.MaxU128, shared.MaxU128, big.NewInt(1), shared.RoundingDown)
	require.True(t, errors.Is(err, shared.ErrOverflow))

	tooWide := new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = MulDiv(tooWide, big.NewInt(1), big.NewInt(1), shared.RoundingDown)
	require.True(t, errors.Is(err, shared.ErrOverflow))

	// MaxU128 * MaxU128 / MaxU128 fits once divided back down.
	out, err := MulDiv(shared.MaxU128, shared.MaxU128, shared.MaxU128, shared.RoundingUp)
	require.NoError(t, err)
	require.Equal(t, 0, out.Cmp(shared.MaxU128))
}

func TestMulShrShlDiv(t *testing.T) {
	three := new(big.Int).Lsh(big.NewInt(3), 64)

	out, err := MulShr(three, big.NewInt(5), 64, shared.RoundingDown)
	require.NoError(t, err)
	require.Equal(t, int64(15), out.Int64())

	out, err = ShlDiv(big.NewInt(15), three, 64, shared.RoundingDown)
	require.NoError(t, err)
	require.Equal(t, int64(5), out.Int64())

	// 1 / 3 in Q64 rounds differently by direction.
	down, err := ShlDiv(big.NewInt(1), big.NewInt(3), 64, shared.RoundingDown)
	require.NoError(t, err)
	up, err := ShlDiv(big.NewInt(1), big.NewInt(3), 64, shared.RoundingUp)
	require.NoError(t, err)
	require.Equal(t, int64(1), new(big.Int).Sub(up, down).Int64())

	_, err = ShlDiv(big.NewInt(1), big.NewInt(0), 64, shared.RoundingDown)
	require.True(t, errors.Is(err, shared.ErrDivisionByZero))

	_, err = MulShr(big.NewInt(1), big.NewInt(1), 128, shared.RoundingDown)
	require.True(t, errors.Is(err, shared.ErrOverflow))
}

func TestCasts(t *testing.T) {
	v, err := ToU64(new(big.Int).SetUint64(^uint64(0)))
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), v)

	_, err = ToU64(new(big.Int).Lsh(big.NewInt(1), 64))
	require.True(t, errors.Is(err, shared.ErrOverflow))

	_, err = ToU32(big.NewInt(1 << 32))
	require.True(t, errors.Is(err, shared.ErrOverflow))

	u, err := ToU128(shared.MaxU128)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), u.Hi)

	_, err = AddU64(^uint64(0), 1)
	require.True(t, errors.Is(err, shared.ErrOverflow))
	_, err = SubU64(0, 1)
	require.True(t, errors.Is(err, shared.ErrOverflow))
	_, err = MulU64(1<<32, 1<<32)
	require.True(t, errors.Is(err, shared.ErrOverflow))
}
