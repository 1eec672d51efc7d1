package lb_clmm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

func TestBinIDToBinArrayIndex(t *testing.T) {
	cases := map[int32]int32{0: 0, 69: 0, 70: 1, -1: -1, -70: -1, -71: -2, shared.MinBinID: -6338}
	for binID, want := range cases {
		require.Equal(t, want, BinIDToBinArrayIndex(binID), "bin %d", binID)
	}

	lower, upper, err := GetBinArrayLowerUpperBinID(-1)
	require.NoError(t, err)
	require.Equal(t, int32(-70), lower)
	require.Equal(t, int32(-1), upper)

	require.NoError(t, CheckValidIndex(6336))
	require.ErrorIs(t, CheckValidIndex(6337), shared.ErrInvalidStartBinIndex)
}

func TestBinArrayGetBin(t *testing.T) {
	a := newTestArray(t, -1)
	slot, err := a.GetBinIndexInArray(-1)
	require.NoError(t, err)
	require.Equal(t, 69, slot)
	slot, err = a.GetBinIndexInArray(-70)
	require.NoError(t, err)
	require.Equal(t, 0, slot)

	_, err = a.GetBin(0)
	require.ErrorIs(t, err, shared.ErrInvalidBinID)

	_, err = NewBinArrayManager(a).GetBin(70)
	require.ErrorIs(t, err, shared.ErrBinArrayNotFound)
}

func TestBinArrayMigrateToV2(t *testing.T) {
	a := newTestArray(t, 2)
	a.Version = LayoutVersionV0
	a.Bins[3].LiquiditySupply = u128.FromUint64(5)

	require.NoError(t, a.MigrateToV2())
	require.Equal(t, LayoutVersionV1, a.Version)
	require.Equal(t, q64u(5), a.Bins[3].LiquiditySupply)

	// already migrated arrays are left alone
	require.NoError(t, a.MigrateToV2())
	require.Equal(t, q64u(5), a.Bins[3].LiquiditySupply)

	a.Version = 9
	require.ErrorIs(t, a.MigrateToV2(), shared.ErrSchemaMismatch)
}

func TestBinDepositWithdraw(t *testing.T) {
	var bin Bin
	require.True(t, bin.IsZeroLiquidity())
	require.NoError(t, bin.Deposit(100, 200, q64(300)))

	x, y, err := bin.Withdraw(q64(150))
	require.NoError(t, err)
	require.Equal(t, uint64(50), x)
	require.Equal(t, uint64(100), y)
	require.Equal(t, uint64(50), bin.AmountX)
	require.Equal(t, uint64(100), bin.AmountY)
	require.Equal(t, q64u(150), bin.LiquiditySupply)

	_, _, err = bin.Withdraw(q64(151))
	require.Error(t, err)

	price, err := bin.GetOrStorePrice(0, 10)
	require.NoError(t, err)
	require.Zero(t, shared.OneQ64.Cmp(price))
	require.Equal(t, u128.FromBig(shared.OneQ64), bin.Price)
}

func TestVolatilityParameters(t *testing.T) {
	static := DefaultStaticParameters()
	v := VariableParameters{IndexReference: 5, VolatilityAccumulator: 20_000, LastUpdateTimestamp: 1000}

	// within the filter period nothing moves
	require.NoError(t, v.UpdateReferences(8, 1010, &static))
	require.Equal(t, int32(5), v.IndexReference)
	require.Zero(t, v.VolatilityReference)

	require.NoError(t, v.UpdateReferences(8, 1100, &static))
	require.Equal(t, int32(8), v.IndexReference)
	require.Equal(t, uint32(1000), v.VolatilityReference)

	require.NoError(t, v.UpdateVolatilityAccumulator(10, &static))
	require.Equal(t, uint32(21_000), v.VolatilityAccumulator)

	require.NoError(t, v.UpdateVolatilityAccumulator(108, &static))
	require.Equal(t, static.MaxVolatilityAccumulator, v.VolatilityAccumulator)

	// past the decay period the reference resets
	require.NoError(t, v.UpdateReferences(108, 5000, &static))
	require.Zero(t, v.VolatilityReference)
}

func TestStaticParametersUpdate(t *testing.T) {
	s := DefaultStaticParameters()
	require.NoError(t, s.Update(FeeParameter{BaseFactor: s.BaseFactor + shared.MaxBaseFactorStep, ProtocolShare: 2000}))
	require.Equal(t, uint16(2000), s.ProtocolShare)

	err := s.Update(FeeParameter{BaseFactor: s.BaseFactor + shared.MaxBaseFactorStep + 1, ProtocolShare: 2000})
	require.ErrorIs(t, err, shared.ErrExcessiveFeeUpdate)
	err = s.Update(FeeParameter{BaseFactor: s.BaseFactor, ProtocolShare: shared.MaxProtocolShare + 1})
	require.ErrorIs(t, err, shared.ErrExcessiveFeeUpdate)

	small := StaticParameters{BaseFactor: 50}
	require.ErrorIs(t, small.Update(FeeParameter{BaseFactor: 101}), shared.ErrExcessiveFeeUpdate)
}

func TestRewardFunding(t *testing.T) {
	var r RewardInfo
	require.False(t, r.Initialized())
	require.ErrorIs(t, r.UpdateRateAfterFunding(0, 1000), shared.ErrDivisionByZero)

	r.InitReward(testMintY, testPairKey, testMintX, 100)
	require.True(t, r.Initialized())

	require.NoError(t, r.UpdateRateAfterFunding(0, 1000))
	require.Equal(t, q64u(10), r.RewardRate)
	require.Equal(t, uint64(100), r.RewardDurationEnd)

	// half way through, the leftover 500 joins the new funding
	require.NoError(t, r.UpdateRateAfterFunding(50, 500))
	require.Equal(t, q64u(10), r.RewardRate)
	require.Equal(t, uint64(150), r.RewardDurationEnd)
	require.Equal(t, uint64(50), r.LastUpdateTime)

	elapsed, err := r.GetSecondsElapsedSinceLastUpdate(1000)
	require.NoError(t, err)
	require.Equal(t, uint64(100), elapsed)
}

func TestDeriveAddresses(t *testing.T) {
	require.Equal(t, DeriveLbPair2(testMintX, testMintY, 10, 10_000), DeriveLbPair2(testMintY, testMintX, 10, 10_000))
	require.NotEqual(t, DeriveLbPair2(testMintX, testMintY, 10, 10_000), DeriveLbPair2(testMintX, testMintY, 20, 10_000))

	require.Equal(t, DeriveBinArray(testPairKey, -1), DeriveBinArray(testPairKey, -1))
	require.NotEqual(t, DeriveBinArray(testPairKey, -1), DeriveBinArray(testPairKey, 1))
	require.NotEqual(t, DeriveReserve(testPairKey, testMintX), DeriveReserve(testPairKey, testMintY))
	require.NotEqual(t, DerivePosition(testPairKey, testMintX, -5, 10), DerivePosition(testPairKey, testMintX, -5, 11))
}
