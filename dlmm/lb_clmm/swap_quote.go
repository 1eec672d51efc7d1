package lb_clmm

import (
	"fmt"
	stdmath "math"
	"math/big"

	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// BinArrayProvider hands out loaded bin arrays by index. *BinArrayManager
// implements it.
type BinArrayProvider interface {
	Get(index int64) (*BinArray, bool)
}

// StopReason tells why a quote stopped walking bins.
type StopReason uint8

const (
	StopDone StopReason = iota
	StopNoLiquidity
	StopBinRangeEdge
	StopIterationLimit
	StopBinArrayNotLoaded
)

func (r StopReason) String() string {
	switch r {
	case StopDone:
		return "done"
	case StopNoLiquidity:
		return "no_liquidity"
	case StopBinRangeEdge:
		return "bin_range_edge"
	case StopIterationLimit:
		return "iteration_limit"
	case StopBinArrayNotLoaded:
		return "bin_array_not_loaded"
	default:
		return fmt.Sprintf("stop_reason(%d)", uint8(r))
	}
}

type QuoteParams struct {
	// Amount is the input, fees included, for exact-in quotes and the
	// requested output for exact-out quotes.
	Amount   uint64
	SwapForY bool
	ExactOut bool

	Timestamp int64
	Slot      uint64

	HostFeeBps *uint16
	// FeeRate replaces the pair's base + variable fee, in FeePrecision units.
	FeeRate *uint64
	// MaxIterations bounds the number of bins visited. Zero means
	// DefaultMaxSwapIterations.
	MaxIterations int
}

// QuoteStep is the swap inside one bin.
type QuoteStep struct {
	BinID int32
	Price *big.Int
	shared.SwapResult
}

// QuoteResult sums the steps of a quote. IsExactOutAmount is set when the
// whole requested amount was met.
type QuoteResult struct {
	shared.SwapResult
	StopReason    StopReason
	StartBinID    int32
	EndBinID      int32
	Steps         []QuoteStep
	BinArraysUsed []int64
	// Pair after the walk: active bin and volatility as a swap would leave them.
	Pair LbPair
}

func (r *QuoteResult) add(step shared.SwapResult) error {
	var err error
	if r.AmountInWithFees, err = dmath.AddU64(r.AmountInWithFees, step.AmountInWithFees); err != nil {
		return err
	}
	if r.AmountOut, err = dmath.AddU64(r.AmountOut, step.AmountOut); err != nil {
		return err
	}
	if r.Fee, err = dmath.AddU64(r.Fee, step.Fee); err != nil {
		return err
	}
	if r.ProtocolFeeAfterHostFee, err = dmath.AddU64(r.ProtocolFeeAfterHostFee, step.ProtocolFeeAfterHostFee); err != nil {
		return err
	}
	if r.HostFee, err = dmath.AddU64(r.HostFee, step.HostFee); err != nil {
		return err
	}
	return nil
}

func (r *QuoteResult) useArray(index int32) {
	if n := len(r.BinArraysUsed); n > 0 && r.BinArraysUsed[n-1] == int64(index) {
		return
	}
	r.BinArraysUsed = append(r.BinArraysUsed, int64(index))
}

// Quote walks the bins of pool from its active bin in the swap direction and
// simulates the swap. pool and the arrays of provider are not modified.
// Running out of liquidity, bins or iterations ends the walk with a partial
// result, only arithmetic and layout failures are errors.
func Quote(pool *LbPair, ext *BinArrayBitmapExtension, provider BinArrayProvider, params QuoteParams) (*QuoteResult, error) {
	pair := *pool
	if err := pair.ValidateSwapActivation(pair.CurrentPoint(params.Slot, params.Timestamp)); err != nil {
		return nil, err
	}
	if err := pair.UpdateReferences(params.Timestamp); err != nil {
		return nil, err
	}

	var fees FeeCalculator = &pair
	if params.FeeRate != nil {
		if *params.FeeRate > shared.MaxFeeRate {
			return nil, fmt.Errorf("fee rate %d: %w", *params.FeeRate, shared.ErrOverflow)
		}
		fees = FixedFee{Rate: *params.FeeRate, ProtocolShare: pair.Parameters.ProtocolShare}
	}
	maxIterations := params.MaxIterations
	if maxIterations <= 0 {
		maxIterations = shared.DefaultMaxSwapIterations
	}

	result := &QuoteResult{StartBinID: pair.ActiveID, EndBinID: pair.ActiveID}
	remaining := params.Amount
	iterations := 0

	for remaining > 0 {
		current := BinIDToBinArrayIndex(pair.ActiveID)
		index, found, err := pair.NextBinArrayIndexWithLiquidity(ext, params.SwapForY, current)
		if err != nil {
			return nil, err
		}
		if !found {
			result.StopReason = StopNoLiquidity
			break
		}
		array, ok := provider.Get(int64(index))
		if !ok {
			result.StopReason = StopBinArrayNotLoaded
			break
		}
		if index != current {
			if err := pair.ShiftActiveBin(params.SwapForY, index); err != nil {
				return nil, err
			}
		}
		result.useArray(index)

		stop, err := quoteInArray(&pair, array, fees, params, &remaining, &iterations, maxIterations, result)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}

	if remaining == 0 {
		result.StopReason = StopDone
		result.IsExactOutAmount = true
	}
	result.Pair = pair
	return result, nil
}

// quoteInArray swaps bin by bin inside array until the request is met or the
// walk leaves the array. It reports true when the quote must stop.
func quoteInArray(pair *LbPair, array *BinArray, fees FeeCalculator, params QuoteParams, remaining *uint64, iterations *int, maxIterations int, result *QuoteResult) (bool, error) {
	for *remaining > 0 {
		if array.IsBinIDWithinRange(pair.ActiveID) != nil {
			return false, nil
		}
		if *iterations >= maxIterations {
			result.StopReason = StopIterationLimit
			return true, nil
		}
		*iterations++

		if err := pair.UpdateVolatilityAccumulator(); err != nil {
			return false, err
		}

		stored, err := array.GetBin(pair.ActiveID)
		if err != nil {
			return false, err
		}
		if !stored.IsEmpty(!params.SwapForY) {
			bin := *stored
			price, err := bin.GetOrStorePrice(pair.ActiveID, pair.BinStep)
			if err != nil {
				return false, err
			}

			amountIn := *remaining
			if params.ExactOut {
				if amountIn, err = amountInForOut(&bin, *remaining, price, params.SwapForY, fees); err != nil {
					return false, err
				}
			}
			step, err := bin.Swap(amountIn, price, params.SwapForY, fees, params.HostFeeBps)
			if err != nil {
				return false, err
			}

			if step.AmountInWithFees > 0 || step.AmountOut > 0 {
				if err := result.add(step); err != nil {
					return false, err
				}
				result.Steps = append(result.Steps, QuoteStep{BinID: pair.ActiveID, Price: price, SwapResult: step})
				result.EndBinID = pair.ActiveID
			}

			if params.ExactOut {
				*remaining -= min(step.AmountOut, *remaining)
			} else {
				*remaining -= step.AmountInWithFees
			}
			if *remaining == 0 {
				return true, nil
			}
		}

		if err := pair.AdvanceActiveBin(params.SwapForY); err != nil {
			result.StopReason = StopBinRangeEdge
			return true, nil
		}
	}
	return true, nil
}

// amountInForOut sizes the input, fees included, that buys out from bin. An
// out at or above the bin reserve drains the bin.
func amountInForOut(bin *Bin, out uint64, price *big.Int, swapForY bool, fees FeeCalculator) (uint64, error) {
	if out >= bin.GetMaxAmountOut(swapForY) {
		return stdmath.MaxUint64, nil
	}
	in, err := GetAmountIn(out, price, swapForY)
	if err != nil {
		return 0, err
	}
	fee, err := fees.ComputeFee(in)
	if err != nil {
		return 0, err
	}
	return dmath.AddU64(in, fee)
}

// QuoteExactIn quotes selling amountIn, fees included.
func QuoteExactIn(pool *LbPair, ext *BinArrayBitmapExtension, provider BinArrayProvider, amountIn uint64, swapForY bool, timestamp int64, slot uint64) (*QuoteResult, error) {
	return Quote(pool, ext, provider, QuoteParams{Amount: amountIn, SwapForY: swapForY, Timestamp: timestamp, Slot: slot})
}

// QuoteExactOut quotes buying amountOut.
func QuoteExactOut(pool *LbPair, ext *BinArrayBitmapExtension, provider BinArrayProvider, amountOut uint64, swapForY bool, timestamp int64, slot uint64) (*QuoteResult, error) {
	return Quote(pool, ext, provider, QuoteParams{Amount: amountOut, SwapForY: swapForY, ExactOut: true, Timestamp: timestamp, Slot: slot})
}
