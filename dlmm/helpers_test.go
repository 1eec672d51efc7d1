package dlmm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

var (
	testPairKey = solana.PublicKeyFromBytes(bytes.Repeat([]byte{7}, 32))
	testOwner   = solana.PublicKeyFromBytes(bytes.Repeat([]byte{9}, 32))
	testMintX   = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testMintY   = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

const testNow = 1_700_000_000

func q64(v uint64) *big.Int {
	return new(big.Int).Lsh(new(big.Int).SetUint64(v), 64)
}

// newTestState is a 10 bps pair at bin 0 holding 1000 Y in bins 0, -1, -2.
func newTestState(t *testing.T) *PoolState {
	t.Helper()
	pair := &lb_clmm.LbPair{
		BinStep:    10,
		TokenXMint: testMintX,
		TokenYMint: testMintY,
	}
	pair.Parameters = lb_clmm.DefaultStaticParameters()
	pair.Parameters.VariableFeeControl = 0

	var arrays []*lb_clmm.BinArray
	for _, index := range []int64{0, -1} {
		a := new(lb_clmm.BinArray)
		require.NoError(t, a.Initialize(index, testPairKey))
		arrays = append(arrays, a)
		require.NoError(t, pair.FlipBinArrayBit(nil, int32(index)))
	}
	m := lb_clmm.NewBinArrayManager(arrays...)
	for _, id := range []int32{0, -1, -2} {
		bin, err := m.GetBin(id)
		require.NoError(t, err)
		require.NoError(t, bin.Deposit(0, 1000, q64(1000)))
	}
	return &PoolState{Address: testPairKey, Pair: pair, BinArrays: m}
}

// newTestPosition holds a share of 100 in bin 0, where every share unit
// has earned 5 X and 2 Y in fees.
func newTestPosition(t *testing.T, state *PoolState) *lb_clmm.DynamicPosition {
	t.Helper()
	p, err := lb_clmm.NewDynamicPosition(testPairKey, testOwner, testOwner, 0, 1, testNow)
	require.NoError(t, err)
	require.NoError(t, p.Deposit(0, q64(100)))

	bin, err := state.BinArrays.GetBin(0)
	require.NoError(t, err)
	bin.LiquiditySupply = u128.FromBig(q64(100))
	bin.FeeAmountXPerTokenStored = u128.FromBig(q64(5))
	bin.FeeAmountYPerTokenStored = u128.FromBig(q64(2))
	return p
}
