package meteora

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
)

// testInit connects to the cluster named by DLMM_TEST_RPC (devnet by
// default) and skips unless DLMM_TEST_PAIR names a pair on it.
func testInit(t *testing.T) (*dlmm.DLMM, solana.PublicKey, context.Context) {
	t.Helper()
	pairKey := os.Getenv("DLMM_TEST_PAIR")
	if pairKey == "" {
		t.Skip("DLMM_TEST_PAIR not set")
	}
	endpoint := os.Getenv("DLMM_TEST_RPC")
	if endpoint == "" {
		endpoint = rpc.DevNet_RPC
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	client := NewDLMMClient(rpc.New(endpoint), WithRetry(3, 500*time.Millisecond))
	return client, solana.MustPublicKeyFromBase58(pairKey), ctx
}

func TestLiveQuote(t *testing.T) {
	client, pairKey, ctx := testInit(t)

	pair, err := client.FetchLbPair(ctx, pairKey)
	require.NoError(t, err)

	active, err := client.GetActiveBin(ctx, pairKey)
	require.NoError(t, err)
	require.Equal(t, pair.ActiveID, active.BinID)
	t.Logf("active bin %d price %s", active.BinID, active.PricePerToken)

	for _, swapForY := range []bool{true, false} {
		quote, err := client.SwapQuote(ctx, pairKey, dlmm.QuoteRequest{Amount: 1_000, SwapForY: swapForY, SlippageBps: 100})
		require.NoError(t, err)
		require.LessOrEqual(t, quote.AmountInWithFees, uint64(1_000))
		require.LessOrEqual(t, quote.MinOutAmount, quote.AmountOut)
		t.Logf("swapForY=%v in %d out %d fee %d stop %s", swapForY, quote.AmountInWithFees, quote.AmountOut, quote.Fee, quote.StopReason)
	}

	reserveX, reserveY, err := client.FetchReserves(ctx, pair)
	require.NoError(t, err)
	t.Logf("reserves %d / %d", reserveX, reserveY)
}
