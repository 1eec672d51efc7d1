package lb_clmm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

func (p *LbPair) GetStatus() shared.PairStatus {
	return shared.PairStatus(p.Status)
}

func (p *LbPair) GetPairType() shared.PairType {
	return shared.PairType(p.PairType)
}

func (p *LbPair) GetActivationType() shared.ActivationType {
	return shared.ActivationType(p.ActivationType)
}

func (p *LbPair) IsPermissionPair() bool {
	return p.GetPairType() == shared.PairTypePermission
}

// SwapForY reports whether receiving outMint means selling X for Y.
func (p *LbPair) SwapForY(outMint solana.PublicKey) bool {
	return outMint.Equals(p.TokenYMint)
}

// ValidateSwapActivation rejects swaps on a disabled pair or before the
// activation point. currentPoint is a slot or a unix timestamp depending on
// the pair's activation type.
func (p *LbPair) ValidateSwapActivation(currentPoint uint64) error {
	if p.GetStatus() != shared.PairStatusEnabled {
		return shared.ErrPairDisabled
	}
	if currentPoint < p.ActivationPoint {
		return fmt.Errorf("activation point %d, current %d: %w", p.ActivationPoint, currentPoint, shared.ErrPairNotActivated)
	}
	return nil
}

// CurrentPoint picks the slot or the timestamp by activation type.
func (p *LbPair) CurrentPoint(slot uint64, timestamp int64) uint64 {
	if p.GetActivationType() == shared.ActivationTypeTimestamp {
		if timestamp < 0 {
			return 0
		}
		return uint64(timestamp)
	}
	return slot
}

// AdvanceActiveBin moves the active bin one step in the swap direction.
func (p *LbPair) AdvanceActiveBin(swapForY bool) error {
	next := int64(p.ActiveID) + 1
	if swapForY {
		next = int64(p.ActiveID) - 1
	}
	if next < shared.MinBinID || next > shared.MaxBinID {
		return fmt.Errorf("advance from bin %d: %w", p.ActiveID, shared.ErrInsufficientLiquidity)
	}
	p.ActiveID = int32(next)
	return nil
}

// GetBaseFee is in FeePrecision units.
func (p *LbPair) GetBaseFee() (*big.Int, error) {
	return dmath.GetBaseFee(p.Parameters.BaseFactor, p.BinStep, p.Parameters.BaseFeePowerFactor)
}

func (p *LbPair) GetVariableFee() (*big.Int, error) {
	return p.ComputeVariableFee(p.VParameters.VolatilityAccumulator)
}

func (p *LbPair) ComputeVariableFee(volatilityAccumulator uint32) (*big.Int, error) {
	return dmath.GetVariableFee(volatilityAccumulator, p.BinStep, p.Parameters.VariableFeeControl)
}

// GetTotalFee is base + variable, capped at MaxFeeRate.
func (p *LbPair) GetTotalFee() (uint64, error) {
	base, err := p.GetBaseFee()
	if err != nil {
		return 0, err
	}
	variable, err := p.GetVariableFee()
	if err != nil {
		return 0, err
	}
	return dmath.CapTotalFee(base, variable)
}

// GetMaxTotalFee is the fee rate at the maximum volatility accumulator.
func (p *LbPair) GetMaxTotalFee() (uint64, error) {
	base, err := p.GetBaseFee()
	if err != nil {
		return 0, err
	}
	variable, err := p.ComputeVariableFee(p.Parameters.MaxVolatilityAccumulator)
	if err != nil {
		return 0, err
	}
	return dmath.CapTotalFee(base, variable)
}

func (p *LbPair) ComputeFee(amount uint64) (uint64, error) {
	rate, err := p.GetTotalFee()
	if err != nil {
		return 0, err
	}
	return dmath.ComputeFee(amount, rate)
}

func (p *LbPair) ComputeFeeFromAmount(amountWithFees uint64) (uint64, error) {
	rate, err := p.GetTotalFee()
	if err != nil {
		return 0, err
	}
	return dmath.ComputeFeeFromAmount(amountWithFees, rate)
}

func (p *LbPair) ComputeProtocolFee(fee uint64) (uint64, error) {
	return dmath.ComputeProtocolFee(fee, p.Parameters.ProtocolShare)
}

func (p *LbPair) ComputeCompositionFee(swapAmount uint64) (uint64, error) {
	rate, err := p.GetTotalFee()
	if err != nil {
		return 0, err
	}
	return dmath.ComputeCompositionFee(swapAmount, rate)
}

func (p *LbPair) AccumulateProtocolFees(feeX, feeY uint64) error {
	x, err := dmath.AddU64(p.ProtocolFee.AmountX, feeX)
	if err != nil {
		return err
	}
	y, err := dmath.AddU64(p.ProtocolFee.AmountY, feeY)
	if err != nil {
		return err
	}
	p.ProtocolFee.AmountX, p.ProtocolFee.AmountY = x, y
	return nil
}

func (p *LbPair) UpdateReferences(now int64) error {
	return p.VParameters.UpdateReferences(p.ActiveID, now, &p.Parameters)
}

func (p *LbPair) UpdateVolatilityAccumulator() error {
	return p.VParameters.UpdateVolatilityAccumulator(p.ActiveID, &p.Parameters)
}

func (p *LbPair) UpdateVolatilityParameters(now int64) error {
	return p.VParameters.UpdateVolatilityParameter(p.ActiveID, now, &p.Parameters)
}

// BitmapRange is the bin array index range of the inline bitmap.
func BitmapRange() (int32, int32) {
	return -shared.BinArrayBitmapSize, shared.BinArrayBitmapSize - 1
}

func (p *LbPair) IsOverflowDefaultBinArrayBitmap(index int32) bool {
	lo, hi := BitmapRange()
	return index > hi || index < lo
}

func getBinArrayOffset(index int32) int {
	return int(index + shared.BinArrayBitmapSize)
}

func (p *LbPair) internalBit(index int32) bool {
	return dmath.BitWords(p.BinArrayBitmap[:], getBinArrayOffset(index))
}

// IsBinArrayHasLiquidity reads the bit of a bin array, from the extension when
// the index is outside the inline range.
func (p *LbPair) IsBinArrayHasLiquidity(ext *BinArrayBitmapExtension, index int32) (bool, error) {
	if p.IsOverflowDefaultBinArrayBitmap(index) {
		if ext == nil {
			return false, fmt.Errorf("bin array %d: %w", index, shared.ErrBitmapExtensionNotProvided)
		}
		return ext.Bit(index)
	}
	return p.internalBit(index), nil
}

// FlipBinArrayBit toggles the bit of a bin array. Callers flip once per
// empty <-> non-empty transition of the array.
func (p *LbPair) FlipBinArrayBit(ext *BinArrayBitmapExtension, index int32) error {
	if p.IsOverflowDefaultBinArrayBitmap(index) {
		if ext == nil {
			return fmt.Errorf("bin array %d: %w", index, shared.ErrBitmapExtensionNotProvided)
		}
		return ext.FlipBinArrayBit(index)
	}
	dmath.FlipBitWords(p.BinArrayBitmap[:], getBinArrayOffset(index))
	return nil
}

// FlipBinArrays flips every array of m whose emptiness differs from before.
func (p *LbPair) FlipBinArrays(ext *BinArrayBitmapExtension, before map[int64]bool, m *BinArrayManager) error {
	for index, wasEmpty := range before {
		a, ok := m.Get(index)
		if !ok {
			return fmt.Errorf("bin array %d: %w", index, shared.ErrBinArrayNotFound)
		}
		if a.IsZeroLiquidity() != wasEmpty {
			if err := p.FlipBinArrayBit(ext, int32(index)); err != nil {
				return err
			}
		}
	}
	return nil
}

// highestSetBitAtOrBelow returns the highest set bit <= k.
func highestSetBitAtOrBelow(words []uint64, k int) (int, bool) {
	width := len(words) * 64
	shifted := dmath.ShlWords(words, uint(width-1-k))
	if dmath.IsZeroWords(shifted) {
		return 0, false
	}
	return k - dmath.LeadingZerosWords(shifted), true
}

// lowestSetBitAtOrAbove returns the lowest set bit >= k.
func lowestSetBitAtOrAbove(words []uint64, k int) (int, bool) {
	shifted := dmath.ShrWords(words, uint(k))
	if dmath.IsZeroWords(shifted) {
		return 0, false
	}
	return k + dmath.TrailingZerosWords(shifted), true
}

// NextBinArrayIndexWithLiquidityInternal searches the inline bitmap from
// start (inclusive) downwards when swapForY, upwards otherwise. When nothing
// is found it returns the first index past the inline range in that direction.
func (p *LbPair) NextBinArrayIndexWithLiquidityInternal(swapForY bool, start int32) (int32, bool, error) {
	lo, hi := BitmapRange()
	if start < lo || start > hi {
		return 0, false, fmt.Errorf("bin array %d: %w", start, shared.ErrInvalidIndex)
	}
	offset := getBinArrayOffset(start)
	if swapForY {
		bit, ok := highestSetBitAtOrBelow(p.BinArrayBitmap[:], offset)
		if !ok {
			return lo - 1, false, nil
		}
		return int32(bit) - shared.BinArrayBitmapSize, true, nil
	}
	bit, ok := lowestSetBitAtOrAbove(p.BinArrayBitmap[:], offset)
	if !ok {
		return hi + 1, false, nil
	}
	return int32(bit) - shared.BinArrayBitmapSize, true, nil
}

// NextBinArrayIndexWithLiquidity returns the nearest bin array with liquidity
// from start (inclusive) in the swap direction: decreasing indexes when
// swapForY, increasing otherwise. It walks the inline bitmap and the
// extension. A nil extension counts as an empty one.
func (p *LbPair) NextBinArrayIndexWithLiquidity(ext *BinArrayBitmapExtension, swapForY bool, start int32) (int32, bool, error) {
	if p.IsOverflowDefaultBinArrayBitmap(start) {
		if ext == nil {
			// Outside the inline range with no extension: only the inline
			// bitmap towards zero can hold liquidity.
			lo, hi := BitmapRange()
			if (start > hi && !swapForY) || (start < lo && swapForY) {
				return 0, false, nil
			}
			start = clampToInline(start)
		} else {
			idx, ok, err := ext.NextBinArrayIndexWithLiquidity(swapForY, start)
			if errors.Is(err, shared.ErrCannotFindNonZeroLiquidityBinArrayID) {
				return 0, false, nil
			}
			if err != nil || ok {
				return idx, ok, err
			}
			start = idx
		}
	}

	idx, ok, err := p.NextBinArrayIndexWithLiquidityInternal(swapForY, start)
	if err != nil || ok {
		return idx, ok, err
	}
	if ext == nil {
		return 0, false, nil
	}

	idx, ok, err = ext.NextBinArrayIndexWithLiquidity(swapForY, idx)
	if errors.Is(err, shared.ErrCannotFindNonZeroLiquidityBinArrayID) {
		return 0, false, nil
	}
	return idx, ok, err
}

func clampToInline(index int32) int32 {
	lo, hi := BitmapRange()
	return max(lo, min(hi, index))
}

// ShiftActiveBin moves the active bin to the edge of the bin array the swap
// enters: its upper bin when swapping for Y, its lower bin otherwise.
func (p *LbPair) ShiftActiveBin(swapForY bool, index int32) error {
	lower, upper, err := GetBinArrayLowerUpperBinID(index)
	if err != nil {
		return err
	}
	if swapForY {
		p.ActiveID = upper
	} else {
		p.ActiveID = lower
	}
	return nil
}

// BinRange is an inclusive bin array index range.
type BinRange struct {
	Lower int32
	Upper int32
}

// BinRangeList splits an index range over the negative extension, the
// inline bitmap and the positive extension.
type BinRangeList struct {
	Negative *BinRange
	Internal *BinRange
	Positive *BinRange
}

func (l BinRangeList) IncludesExtension() bool {
	return l.Negative != nil || l.Positive != nil
}

// GetBinArrayRanges splits [start, end], start <= end.
func GetBinArrayRanges(start, end int32) BinRangeList {
	lo, hi := BitmapRange()
	if end < lo {
		return BinRangeList{Negative: &BinRange{start, end}}
	}
	if start > hi {
		return BinRangeList{Positive: &BinRange{start, end}}
	}

	var out BinRangeList
	if start < lo {
		out.Negative = &BinRange{start, lo - 1}
	}
	if end > hi {
		out.Positive = &BinRange{hi + 1, end}
	}
	out.Internal = &BinRange{max(start, lo), min(end, hi)}
	return out
}

// IsBinArrayRangeEmptyInternal checks the inline bits of [start, end].
func (p *LbPair) IsBinArrayRangeEmptyInternal(start, end int32) bool {
	return isBitRangeEmpty(p.BinArrayBitmap[:], getBinArrayOffset(start), getBinArrayOffset(end))
}

// isBitRangeEmpty reports whether bits [from, to] of words are all clear.
func isBitRangeEmpty(words []uint64, from, to int) bool {
	width := len(words) * 64
	v := dmath.ShrWords(words, uint(from))
	v = dmath.ShlWords(v, uint(width-1+from-to))
	return dmath.IsZeroWords(v)
}

// IsBinArrayRangeEmpty reports whether no bin array in [start, end] has
// liquidity.
func (p *LbPair) IsBinArrayRangeEmpty(ext *BinArrayBitmapExtension, start, end int32) (bool, error) {
	if start > end {
		return false, fmt.Errorf("range [%d, %d]: %w", start, end, shared.ErrInvalidIndex)
	}
	ranges := GetBinArrayRanges(start, end)
	if r := ranges.Internal; r != nil && !p.IsBinArrayRangeEmptyInternal(r.Lower, r.Upper) {
		return false, nil
	}
	if !ranges.IncludesExtension() {
		return true, nil
	}
	if ext == nil {
		return false, fmt.Errorf("range [%d, %d]: %w", start, end, shared.ErrBitmapExtensionNotProvided)
	}
	for _, r := range []*BinRange{ranges.Positive, ranges.Negative} {
		if r == nil {
			continue
		}
		empty, err := ext.IsBinArrayRangeEmpty(r.Lower, r.Upper)
		if err != nil || !empty {
			return false, err
		}
	}
	return true, nil
}
