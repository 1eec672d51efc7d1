package meteora

import (
	"github.com/krazyTry/meteora-dlmm-go/dlmm"
)

// NewDLMMClient creates a new DLMM client.
//
// Example:
//
// meteoraDLMM := NewDLMMClient(rpcClient, WithLogger(logger))
//
// quote, _ := meteoraDLMM.SwapQuote(ctx, lbPair, dlmm.QuoteRequest{Amount: 1_000_000, SwapForY: true, SlippageBps: 50})
//
// positions, _ := meteoraDLMM.GetPositionsByUserAndPair(ctx, owner, lbPair)
var NewDLMMClient = dlmm.NewDLMM

var (
	WithCommitment = dlmm.WithCommitment
	WithLogger     = dlmm.WithLogger
	WithRetry      = dlmm.WithRetry
)

// QuoteFromState quotes against already loaded state without RPC.
var QuoteFromState = dlmm.QuoteFromState
