package dlmm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/krazyTry/meteora-dlmm-go/decimal_math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	solanago "github.com/krazyTry/meteora-dlmm-go/solana"
)

type QuoteRequest struct {
	// Amount is what the user sends, or wants to receive when ExactOut.
	// Transfer fees are on the user side of both.
	Amount   uint64
	SwapForY bool
	ExactOut bool
	// SlippageBps widens MinOutAmount / MaxInAmount.
	SlippageBps uint16
	HostFeeBps  *uint16
	// BinArrayCount is the number of bin arrays fetched in the swap
	// direction, DefaultBinArrayCountForSwap when zero.
	BinArrayCount int
	MaxIterations int
}

type SwapQuote struct {
	*lb_clmm.QuoteResult
	Pair solana.PublicKey

	// ConsumedInAmount leaves the user's wallet and ReceivedOutAmount
	// arrives there, token-2022 transfer fees applied.
	ConsumedInAmount  uint64
	ReceivedOutAmount uint64
	TransferFeeIn     uint64
	TransferFeeOut    uint64

	MinOutAmount uint64
	MaxInAmount  uint64
	// Price of the start bin in output per input lamport.
	SpotPrice decimal.Decimal
	// Percent between the spot price and the realized price, fees excluded.
	PriceImpact decimal.Decimal
	BinArrays   []solana.PublicKey
}

// Filled reports whether the whole requested amount was quoted.
func (q *SwapQuote) Filled() bool {
	return q.StopReason == lb_clmm.StopDone
}

// SlippageMinOut is amount less bps, rounded down.
func SlippageMinOut(amount uint64, bps uint16) (uint64, error) {
	if bps > shared.BasisPointMax {
		return 0, fmt.Errorf("slippage %d bps: %w", bps, shared.ErrOverflow)
	}
	out, err := dmath.MulDiv(new(big.Int).SetUint64(amount), big.NewInt(int64(shared.BasisPointMax-bps)), big.NewInt(shared.BasisPointMax), shared.RoundingDown)
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(out)
}

// SlippageMaxIn is amount plus bps, rounded up.
func SlippageMaxIn(amount uint64, bps uint16) (uint64, error) {
	in, err := dmath.MulDiv(new(big.Int).SetUint64(amount), big.NewInt(int64(shared.BasisPointMax)+int64(bps)), big.NewInt(shared.BasisPointMax), shared.RoundingUp)
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(in)
}

// QuoteFromState quotes req against a loaded pool at the given slot and
// unix timestamp. It does no I/O.
func QuoteFromState(state *PoolState, req QuoteRequest, slot uint64, timestamp int64) (*SwapQuote, error) {
	feeIn, feeOut := state.TransferFeeX, state.TransferFeeY
	if !req.SwapForY {
		feeIn, feeOut = feeOut, feeIn
	}

	amount := req.Amount
	if req.ExactOut {
		var err error
		if amount, _, err = feeOut.IncludedAmount(req.Amount); err != nil {
			return nil, err
		}
	} else {
		amount, _ = feeIn.ExcludedAmount(req.Amount)
	}

	result, err := lb_clmm.Quote(state.Pair, state.Extension, state.BinArrays, lb_clmm.QuoteParams{
		Amount:        amount,
		SwapForY:      req.SwapForY,
		ExactOut:      req.ExactOut,
		Timestamp:     timestamp,
		Slot:          slot,
		HostFeeBps:    req.HostFeeBps,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		return nil, err
	}

	quote := &SwapQuote{QuoteResult: result, Pair: state.Address}
	if !req.ExactOut && result.StopReason == lb_clmm.StopDone {
		quote.ConsumedInAmount = req.Amount
		quote.TransferFeeIn = req.Amount - result.AmountInWithFees
	} else if quote.ConsumedInAmount, quote.TransferFeeIn, err = feeIn.IncludedAmount(result.AmountInWithFees); err != nil {
		return nil, err
	}
	quote.ReceivedOutAmount, quote.TransferFeeOut = feeOut.ExcludedAmount(result.AmountOut)

	if req.ExactOut {
		quote.MinOutAmount = quote.ReceivedOutAmount
		if quote.MaxInAmount, err = SlippageMaxIn(quote.ConsumedInAmount, req.SlippageBps); err != nil {
			return nil, err
		}
	} else {
		quote.MaxInAmount = quote.ConsumedInAmount
		if quote.MinOutAmount, err = SlippageMinOut(quote.ReceivedOutAmount, req.SlippageBps); err != nil {
			return nil, err
		}
	}

	if quote.SpotPrice, err = spotPrice(state.Pair, result.StartBinID, req.SwapForY); err != nil {
		return nil, err
	}
	quote.PriceImpact = priceImpact(quote.SpotPrice, result)

	for _, index := range result.BinArraysUsed {
		quote.BinArrays = append(quote.BinArrays, lb_clmm.DeriveBinArray(state.Address, index))
	}
	return quote, nil
}

// spotPrice is the price of binID in output per input.
func spotPrice(pair *lb_clmm.LbPair, binID int32, swapForY bool) (decimal.Decimal, error) {
	price, err := dmath.GetPriceFromID(binID, pair.BinStep)
	if err != nil {
		return decimal.Zero, err
	}
	spot := decimal_math.FromQ64(price)
	if !swapForY {
		spot = decimal.NewFromInt(1).DivRound(spot, decimal_math.PricePrecision)
	}
	return spot, nil
}

func priceImpact(spot decimal.Decimal, result *lb_clmm.QuoteResult) decimal.Decimal {
	in := result.AmountInWithFees - result.Fee
	if in == 0 || spot.IsZero() {
		return decimal.Zero
	}
	realized := decimal.NewFromBigInt(new(big.Int).SetUint64(result.AmountOut), 0).
		DivRound(decimal.NewFromBigInt(new(big.Int).SetUint64(in), 0), decimal_math.PricePrecision)
	return spot.Sub(realized).Abs().Div(spot).Mul(decimal.NewFromInt(100)).Round(6)
}

// SwapQuote fetches the pool and the cluster clock and quotes req.
func (m *DLMM) SwapQuote(ctx context.Context, lbPair solana.PublicKey, req QuoteRequest) (*SwapQuote, error) {
	clock, err := m.GetClock(ctx)
	if err != nil {
		return nil, err
	}
	state, err := m.FetchPoolState(ctx, lbPair, req.SwapForY, req.BinArrayCount, clock.Epoch)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteFromState(state, req, clock.Slot, clock.UnixTimestamp)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", lbPair, err)
	}
	m.logger.Debug("swap quote",
		zap.Stringer("pair", lbPair),
		zap.Bool("swap_for_y", req.SwapForY),
		zap.Bool("exact_out", req.ExactOut),
		zap.Uint64("amount_in", quote.ConsumedInAmount),
		zap.Uint64("amount_out", quote.ReceivedOutAmount),
		zap.Uint64("fee", quote.Fee),
		zap.Stringer("stop", quote.StopReason),
		zap.Int32("end_bin", quote.EndBinID),
	)
	return quote, nil
}

func (m *DLMM) GetClock(ctx context.Context) (*solanago.Clock, error) {
	var clock *solanago.Clock
	err := m.withRetry(ctx, "getClock", func(ctx context.Context) error {
		var err error
		clock, err = solanago.GetClock(ctx, m.rpcClient, m.commitment)
		return err
	})
	return clock, err
}
