package lb_clmm

import (
	"bytes"
	"math/big"
	"testing"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/u128"
)

var (
	testPairKey = solana.PublicKeyFromBytes(bytes.Repeat([]byte{7}, 32))
	testMintX   = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testMintY   = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// newTestPair is a 10 bps pair at bin 0 with a 0.1% base fee, no variable
// fee and a 10% protocol share.
func newTestPair() *LbPair {
	pair := &LbPair{
		ActiveID:   0,
		BinStep:    10,
		TokenXMint: testMintX,
		TokenYMint: testMintY,
	}
	pair.Parameters = DefaultStaticParameters()
	pair.Parameters.VariableFeeControl = 0
	return pair
}

func newTestArray(t *testing.T, index int64) *BinArray {
	t.Helper()
	a := new(BinArray)
	require.NoError(t, a.Initialize(index, testPairKey))
	return a
}

// fillBin deposits reserves into binID and marks its array in the bitmap.
func fillBin(t *testing.T, pair *LbPair, m *BinArrayManager, binID int32, amountX, amountY uint64) {
	t.Helper()
	index := int64(BinIDToBinArrayIndex(binID))
	a, ok := m.Get(index)
	require.True(t, ok)
	wasEmpty := a.IsZeroLiquidity()

	bin, err := a.GetBin(binID)
	require.NoError(t, err)
	supply := new(big.Int).Lsh(new(big.Int).SetUint64(amountX+amountY), 64)
	require.NoError(t, bin.Deposit(amountX, amountY, supply))

	if wasEmpty {
		require.NoError(t, pair.FlipBinArrayBit(nil, int32(index)))
	}
}

func q64(v uint64) *big.Int {
	return new(big.Int).Lsh(new(big.Int).SetUint64(v), 64)
}

func q64u(v uint64) binary.Uint128 {
	return u128.FromBig(q64(v))
}
