package lb_clmm

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

func newTestPosition(t *testing.T, lower, width int32) *DynamicPosition {
	t.Helper()
	p, err := NewDynamicPosition(testPairKey, testMintX, testMintX, lower, width, 1_700_000_000)
	require.NoError(t, err)
	return p
}

func TestNewDynamicPosition(t *testing.T) {
	p := newTestPosition(t, -5, 10)
	require.Equal(t, int32(-5), p.Global.LowerBinID)
	require.Equal(t, int32(4), p.Global.UpperBinID)
	require.Equal(t, uint64(10), p.Global.Length)
	require.Equal(t, 10, p.Width())

	_, err := NewDynamicPosition(testPairKey, testMintX, testMintX, 0, 0, 0)
	require.ErrorIs(t, err, shared.ErrInvalidBinRange)
	_, err = NewDynamicPosition(testPairKey, testMintX, testMintX, shared.MaxBinID, 2, 0)
	require.ErrorIs(t, err, shared.ErrInvalidBinRange)
}

func TestPositionShareAccess(t *testing.T) {
	p := newTestPosition(t, -5, 10)
	require.NoError(t, p.Deposit(0, q64(100)))
	require.NoError(t, p.Deposit(0, q64(20)))

	share, err := p.GetLiquidityShareInBin(0)
	require.NoError(t, err)
	require.Equal(t, q64(120), share)

	require.NoError(t, p.Withdraw(0, q64(120)))
	share, err = p.GetLiquidityShareInBin(0)
	require.NoError(t, err)
	require.Zero(t, share.Sign())

	require.ErrorIs(t, p.Withdraw(0, q64(1)), shared.ErrOverflow)

	_, err = p.GetLiquidityShareInBin(5)
	require.ErrorIs(t, err, shared.ErrInvalidPosition)
	_, err = p.GetLiquidityShareInBin(-6)
	require.ErrorIs(t, err, shared.ErrInvalidPosition)
}

func TestPositionResizeRoundTrip(t *testing.T) {
	for _, side := range []shared.ResizeSide{shared.ResizeSideLower, shared.ResizeSideUpper} {
		p := newTestPosition(t, 10, 5)
		require.NoError(t, p.Deposit(12, q64(7)))
		p.Bins[0].FeeInfo.FeeXPerTokenComplete = q64u(3)
		before := p.Clone()

		require.NoError(t, p.IncreaseLength(4, side))
		require.Equal(t, 9, p.Width())
		require.Equal(t, uint64(9), p.Global.Length)
		require.Equal(t, int(p.Global.UpperBinID-p.Global.LowerBinID+1), p.Width())

		share, err := p.GetLiquidityShareInBin(12)
		require.NoError(t, err)
		require.Equal(t, q64(7), share)

		require.NoError(t, p.DecreaseLength(4, side))
		require.Equal(t, before, p)
	}
}

func TestPositionIncreaseLower(t *testing.T) {
	p := newTestPosition(t, 10, 2)
	require.NoError(t, p.Deposit(10, q64(1)))

	require.NoError(t, p.IncreaseLength(3, shared.ResizeSideLower))
	require.Equal(t, int32(7), p.Global.LowerBinID)
	require.Equal(t, int32(11), p.Global.UpperBinID)
	require.Equal(t, q64u(1), p.Bins[3].LiquidityShare)
	for i := 0; i < 3; i++ {
		require.True(t, p.Bins[i].IsEmpty())
	}
}

func TestPositionDecreaseRejects(t *testing.T) {
	p := newTestPosition(t, 0, 5)
	require.NoError(t, p.Deposit(4, q64(1)))

	require.ErrorIs(t, p.DecreaseLength(1, shared.ResizeSideUpper), shared.ErrNonEmptyBin)
	require.ErrorIs(t, p.DecreaseLength(5, shared.ResizeSideLower), shared.ErrInvalidBinRange)
	require.ErrorIs(t, p.DecreaseLength(0, shared.ResizeSideLower), shared.ErrInvalidBinRange)
	require.Equal(t, 5, p.Width())

	p.Bins[0].FeeInfo.FeeYPending = 1
	require.ErrorIs(t, p.DecreaseLength(1, shared.ResizeSideLower), shared.ErrNonEmptyBin)

	p.Bins[0].FeeInfo.FeeYPending = 0
	require.NoError(t, p.DecreaseLength(2, shared.ResizeSideLower))
	require.Equal(t, int32(2), p.Global.LowerBinID)
	require.Equal(t, 3, p.Width())

	require.ErrorIs(t, p.IncreaseLength(shared.MaxResizeLength+1, shared.ResizeSideUpper), shared.ErrInvalidBinRange)
}

func TestPositionCodecRoundTrip(t *testing.T) {
	p := newTestPosition(t, -3, 6)
	require.NoError(t, p.Deposit(-1, q64(42)))
	p.Bins[5].RewardInfo.RewardPendings[1] = 9

	data, err := EncodeDynamicPosition(p)
	require.NoError(t, err)
	require.Len(t, data, PositionSpace(6))

	decoded, err := DecodeDynamicPosition(data)
	require.NoError(t, err)
	require.Equal(t, p, decoded)

	// header length disagrees with the bin range
	p.Global.Length = 7
	data, err = EncodeDynamicPosition(p)
	require.NoError(t, err)
	_, err = DecodeDynamicPosition(data)
	require.ErrorIs(t, err, shared.ErrSchemaMismatch)

	// tail too short
	p.Global.Length = 6
	data, err = EncodeDynamicPosition(p)
	require.NoError(t, err)
	_, err = DecodeDynamicPosition(data[:len(data)-1])
	require.ErrorIs(t, err, shared.ErrSchemaMismatch)
}

func TestPositionFeeAccrual(t *testing.T) {
	array := newTestArray(t, 0)
	bin, err := array.GetBin(0)
	require.NoError(t, err)
	bin.LiquiditySupply = q64u(1000)
	bin.FeeAmountXPerTokenStored = q64u(5)
	bin.FeeAmountYPerTokenStored = q64u(2)
	m := NewBinArrayManager(array)

	p := newTestPosition(t, 0, 2)
	require.NoError(t, p.Deposit(0, q64(100)))

	feeX, feeY, err := p.ClaimableFees(m)
	require.NoError(t, err)
	require.Equal(t, uint64(500), feeX)
	require.Equal(t, uint64(200), feeY)
	require.Zero(t, p.Bins[0].FeeInfo.FeeXPending)

	require.NoError(t, p.UpdateEarningPerTokenStored(m, 0, 1))
	require.Equal(t, q64u(5), p.Bins[0].FeeInfo.FeeXPerTokenComplete)

	// a second update without new growth adds nothing
	require.NoError(t, p.UpdateEarningPerTokenStored(m, 0, 1))
	feeX, feeY, err = p.ClaimFee(0, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(500), feeX)
	require.Equal(t, uint64(200), feeY)
	p.AccumulateTotalClaimedFees(feeX, feeY)
	require.Equal(t, uint64(500), p.Global.TotalClaimedFeeXAmount)

	empty, err := p.IsEmpty(0, 1)
	require.NoError(t, err)
	require.False(t, empty)

	_, _, err = p.ClaimFee(0, 2)
	require.ErrorIs(t, err, shared.ErrInvalidPosition)

	require.ErrorIs(t, p.UpdateEarningPerTokenStored(NewBinArrayManager(), 0, 0), shared.ErrBinArrayNotFound)
}

func TestPositionClaimableRewards(t *testing.T) {
	pair := newTestPair()
	pair.RewardInfos[0].Mint = testMintY
	pair.RewardInfos[0].RewardRate = q64u(10)
	pair.RewardInfos[0].RewardDuration = 100
	pair.RewardInfos[0].RewardDurationEnd = 100

	array := newTestArray(t, 0)
	bin, err := array.GetBin(0)
	require.NoError(t, err)
	bin.LiquiditySupply = q64u(100)
	m := NewBinArrayManager(array)

	p := newTestPosition(t, 0, 1)
	require.NoError(t, p.Deposit(0, q64(50)))

	rewards, err := p.ClaimableRewards(*pair, m, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(50), rewards[0])
	require.Zero(t, rewards[1])

	// inputs untouched
	require.Equal(t, uint64(0), pair.RewardInfos[0].LastUpdateTime)
	require.True(t, u128.IsZero(bin.RewardPerTokenStored[0]))

	// past the end of the window the rate stops
	rewards, err = p.ClaimableRewards(*pair, m, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(500), rewards[0])

	claimed, err := p.ClaimReward(0, 0, 0)
	require.NoError(t, err)
	require.Zero(t, claimed)

	_, err = p.GetTotalReward(2, 0, 0)
	require.ErrorIs(t, err, shared.ErrInvalidRewardIndex)
}

func TestPositionMigrateFromV1(t *testing.T) {
	old := &Position{
		LbPair:        testPairKey,
		Owner:         testMintY,
		LowerBinID:    10,
		UpperBinID:    12,
		LastUpdatedAt: 99,
	}
	old.LiquidityShares[0] = 1
	old.LiquidityShares[1] = 2
	old.LiquidityShares[2] = 3
	old.FeeInfos[1].FeeXPending = 4

	p := new(DynamicPosition)
	require.NoError(t, p.MigrateFromV1(old))
	require.Equal(t, 3, p.Width())
	require.Equal(t, uint64(3), p.Global.Length)
	require.Equal(t, testMintY, p.Global.Owner)

	share, err := p.GetLiquidityShareInBin(11)
	require.NoError(t, err)
	require.Equal(t, q64(2), share)
	require.Equal(t, uint64(4), p.Bins[1].FeeInfo.FeeXPending)

	old.UpperBinID = 200
	require.ErrorIs(t, p.MigrateFromV1(old), shared.ErrInvalidPosition)
}

func TestPositionLockAndCoverage(t *testing.T) {
	p := newTestPosition(t, -75, 150)
	p.Global.LockReleaseSlot = 100
	require.True(t, p.IsLiquidityLocked(99))
	require.False(t, p.IsLiquidityLocked(100))

	lower, upper := p.GetBinArrayIndexesBound()
	require.Equal(t, int32(-2), lower)
	require.Equal(t, int32(1), upper)

	keys := p.GetBinArrayKeysCoverage()
	require.Len(t, keys, 4)
	require.Equal(t, DeriveBinArray(testPairKey, -2), keys[0])
	require.NotEqual(t, solana.PublicKey{}, keys[3])
}
