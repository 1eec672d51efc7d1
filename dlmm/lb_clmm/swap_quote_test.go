package lb_clmm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

const testNow = 1_700_000_000

// newQuotePool holds Y in bins 0, -1 and -2, spread over arrays 0 and -1.
func newQuotePool(t *testing.T) (*LbPair, *BinArrayManager) {
	t.Helper()
	pair := newTestPair()
	m := NewBinArrayManager(newTestArray(t, 0), newTestArray(t, -1))
	for _, id := range []int32{0, -1, -2} {
		fillBin(t, pair, m, id, 0, 1000)
	}
	return pair, m
}

func requireStepConservation(t *testing.T, r *QuoteResult) {
	t.Helper()
	var sum shared.SwapResult
	for _, step := range r.Steps {
		require.GreaterOrEqual(t, step.Fee, step.ProtocolFeeAfterHostFee+step.HostFee, "bin %d", step.BinID)
		require.GreaterOrEqual(t, step.AmountInWithFees, step.Fee, "bin %d", step.BinID)
		sum.AmountInWithFees += step.AmountInWithFees
		sum.AmountOut += step.AmountOut
		sum.Fee += step.Fee
		sum.ProtocolFeeAfterHostFee += step.ProtocolFeeAfterHostFee
		sum.HostFee += step.HostFee
	}
	require.Equal(t, r.AmountInWithFees, sum.AmountInWithFees)
	require.Equal(t, r.AmountOut, sum.AmountOut)
	require.Equal(t, r.Fee, sum.Fee)
	require.Equal(t, r.ProtocolFeeAfterHostFee, sum.ProtocolFeeAfterHostFee)
	require.Equal(t, r.HostFee, sum.HostFee)
}

func TestQuoteSingleBinExhausted(t *testing.T) {
	pair := newTestPair()
	m := NewBinArrayManager(newTestArray(t, 0))
	fillBin(t, pair, m, 0, 0, 1000)

	r, err := QuoteExactIn(pair, nil, m, 10_000, true, testNow, 0)
	require.NoError(t, err)
	require.False(t, r.IsExactOutAmount)
	require.Equal(t, StopNoLiquidity, r.StopReason)

	// price 1 at bin 0: 1000 in plus ceil(1000 * 0.1% / 99.9%) fee
	require.Equal(t, uint64(1002), r.AmountInWithFees)
	require.Less(t, r.AmountInWithFees, uint64(10_000))
	require.Equal(t, uint64(1000), r.AmountOut)
	require.Equal(t, uint64(2), r.Fee)
	require.Equal(t, uint64(1), r.ProtocolFeeAfterHostFee)
	require.Len(t, r.Steps, 1)
	require.False(t, r.Steps[0].IsExactOutAmount)
	requireStepConservation(t, r)
}

func TestQuoteSingleBinPartial(t *testing.T) {
	pair := newTestPair()
	m := NewBinArrayManager(newTestArray(t, 0))
	fillBin(t, pair, m, 0, 0, 1000)

	r, err := QuoteExactIn(pair, nil, m, 500, true, testNow, 0)
	require.NoError(t, err)
	require.True(t, r.IsExactOutAmount)
	require.Equal(t, StopDone, r.StopReason)
	require.Equal(t, uint64(500), r.AmountInWithFees)
	require.Equal(t, uint64(1), r.Fee)
	require.Equal(t, uint64(499), r.AmountOut)
	require.True(t, r.Steps[0].IsExactOutAmount)
}

func TestQuoteMultiBin(t *testing.T) {
	pair, m := newQuotePool(t)
	pair.Parameters.VariableFeeControl = 40_000

	r, err := QuoteExactIn(pair, nil, m, 2500, true, testNow, 0)
	require.NoError(t, err)
	require.True(t, r.IsExactOutAmount)
	require.Equal(t, StopDone, r.StopReason)
	require.Equal(t, uint64(2500), r.AmountInWithFees)
	require.Greater(t, r.AmountOut, uint64(2000))
	require.Less(t, r.AmountOut, uint64(2500))

	require.Len(t, r.Steps, 3)
	for i, id := range []int32{0, -1, -2} {
		require.Equal(t, id, r.Steps[i].BinID)
		require.LessOrEqual(t, r.Steps[i].AmountOut, uint64(1000))
	}
	require.Equal(t, []int64{0, -1}, r.BinArraysUsed)
	require.Equal(t, int32(0), r.StartBinID)
	require.Equal(t, int32(-2), r.EndBinID)
	require.Equal(t, int32(-2), r.Pair.ActiveID)
	require.Equal(t, uint32(20_000), r.Pair.VParameters.VolatilityAccumulator)
	requireStepConservation(t, r)

	// the pool and its arrays are left alone
	require.Equal(t, int32(0), pair.ActiveID)
	bin, err := m.GetBin(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), bin.AmountY)
	require.Zero(t, bin.AmountX)
}

func TestQuoteExactOut(t *testing.T) {
	pair, m := newQuotePool(t)

	r, err := QuoteExactOut(pair, nil, m, 1500, true, testNow, 0)
	require.NoError(t, err)
	require.True(t, r.IsExactOutAmount)
	require.Equal(t, StopDone, r.StopReason)
	require.GreaterOrEqual(t, r.AmountOut, uint64(1500))
	require.Less(t, r.AmountOut, uint64(1510))
	require.Len(t, r.Steps, 2)
	require.Equal(t, uint64(1000), r.Steps[0].AmountOut)
	requireStepConservation(t, r)

	r, err = QuoteExactOut(pair, nil, m, 5000, true, testNow, 0)
	require.NoError(t, err)
	require.False(t, r.IsExactOutAmount)
	require.Equal(t, StopNoLiquidity, r.StopReason)
	require.Equal(t, uint64(3000), r.AmountOut)
}

func TestQuoteStops(t *testing.T) {
	pair, m := newQuotePool(t)

	r, err := Quote(pair, nil, m, QuoteParams{Amount: 2500, SwapForY: true, Timestamp: testNow, MaxIterations: 1})
	require.NoError(t, err)
	require.Equal(t, StopIterationLimit, r.StopReason)
	require.False(t, r.IsExactOutAmount)
	require.Len(t, r.Steps, 1)

	onlyFirst := NewBinArrayManager(newTestArray(t, 0))
	first, _ := m.Get(0)
	arr, _ := onlyFirst.Get(0)
	*arr = *first
	r, err = QuoteExactIn(pair, nil, onlyFirst, 2500, true, testNow, 0)
	require.NoError(t, err)
	require.Equal(t, StopBinArrayNotLoaded, r.StopReason)
	require.Equal(t, uint64(1000), r.AmountOut)

	// nothing on the X side
	r, err = QuoteExactIn(pair, nil, m, 100, false, testNow, 0)
	require.NoError(t, err)
	require.Equal(t, StopNoLiquidity, r.StopReason)
	require.Empty(t, r.Steps)
}

func TestQuoteSkipsEmptyOutputSide(t *testing.T) {
	pair := newTestPair()
	m := NewBinArrayManager(newTestArray(t, 0), newTestArray(t, -1))
	fillBin(t, pair, m, 0, 500, 0)
	fillBin(t, pair, m, -1, 0, 1000)

	r, err := QuoteExactIn(pair, nil, m, 100, true, testNow, 0)
	require.NoError(t, err)
	require.Equal(t, StopDone, r.StopReason)
	require.Len(t, r.Steps, 1)
	require.Equal(t, int32(-1), r.Steps[0].BinID)
	require.Equal(t, int32(0), r.StartBinID)
}

func TestQuoteFees(t *testing.T) {
	pair := newTestPair()
	m := NewBinArrayManager(newTestArray(t, 0))
	fillBin(t, pair, m, 0, 0, 1_000_000)

	hostBps := uint16(shared.HostFeeBps)
	r, err := Quote(pair, nil, m, QuoteParams{Amount: 100_000, SwapForY: true, Timestamp: testNow, HostFeeBps: &hostBps})
	require.NoError(t, err)
	require.Equal(t, uint64(100), r.Fee)
	require.Equal(t, uint64(2), r.HostFee)
	require.Equal(t, uint64(8), r.ProtocolFeeAfterHostFee)
	require.Equal(t, uint64(90), r.LpFee())
	require.Equal(t, uint64(99_900), r.AmountOut)

	zero := uint64(0)
	r, err = Quote(pair, nil, m, QuoteParams{Amount: 100_000, SwapForY: true, Timestamp: testNow, FeeRate: &zero})
	require.NoError(t, err)
	require.Zero(t, r.Fee)
	require.Equal(t, uint64(100_000), r.AmountOut)

	tooHigh := uint64(shared.MaxFeeRate + 1)
	_, err = Quote(pair, nil, m, QuoteParams{Amount: 1, SwapForY: true, FeeRate: &tooHigh})
	require.ErrorIs(t, err, shared.ErrOverflow)
}

func TestQuoteActivation(t *testing.T) {
	pair, m := newQuotePool(t)
	pair.ActivationPoint = 500

	_, err := QuoteExactIn(pair, nil, m, 100, true, testNow, 100)
	require.ErrorIs(t, err, shared.ErrPairNotActivated)

	_, err = QuoteExactIn(pair, nil, m, 100, true, testNow, 500)
	require.NoError(t, err)

	pair.ActivationType = uint8(shared.ActivationTypeTimestamp)
	_, err = QuoteExactIn(pair, nil, m, 100, true, testNow, 0)
	require.NoError(t, err)

	pair.Status = uint8(shared.PairStatusDisabled)
	_, err = QuoteExactIn(pair, nil, m, 100, true, testNow, 0)
	require.ErrorIs(t, err, shared.ErrPairDisabled)
}
