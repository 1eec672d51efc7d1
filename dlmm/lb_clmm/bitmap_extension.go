package lb_clmm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// The extension holds twelve 512-bit words per side. Positive word w covers
// bin array indexes [(w+1)*512, (w+2)*512); negative word w mirrors it with
// index -(x)-1, so bit 0 of negative word 0 is array -513.

// ExtensionBitmapRange is the bin array index range covered by the inline
// bitmap and the extension together.
func ExtensionBitmapRange() (int32, int32) {
	return -shared.BinArrayBitmapSize * (shared.ExtensionBinArrayBitmapSize + 1),
		shared.BinArrayBitmapSize*(shared.ExtensionBinArrayBitmapSize+1) - 1
}

// GetBitmapOffset returns the word of the extension holding index.
func GetBitmapOffset(index int32) (int, error) {
	var offset int32
	if index > 0 {
		offset = index/shared.BinArrayBitmapSize - 1
	} else {
		offset = -(index+1)/shared.BinArrayBitmapSize - 1
	}
	if offset < 0 || offset >= shared.ExtensionBinArrayBitmapSize {
		return 0, fmt.Errorf("bin array %d outside extension: %w", index, shared.ErrInvalidIndex)
	}
	return int(offset), nil
}

// BinArrayOffsetInBitmap returns the bit of index inside its word.
func BinArrayOffsetInBitmap(index int32) int {
	if index > 0 {
		return int(index % shared.BinArrayBitmapSize)
	}
	return int(-(index + 1) % shared.BinArrayBitmapSize)
}

// ToBinArrayIndex inverts GetBitmapOffset and BinArrayOffsetInBitmap.
func ToBinArrayIndex(offset, bit int, positive bool) int32 {
	v := int32(offset+1)*shared.BinArrayBitmapSize + int32(bit)
	if positive {
		return v
	}
	return -v - 1
}

func (e *BinArrayBitmapExtension) Initialize(lbPair solana.PublicKey) {
	e.LbPair = lbPair
	e.PositiveBinArrayBitmap = [shared.ExtensionBinArrayBitmapSize][8]uint64{}
	e.NegativeBinArrayBitmap = [shared.ExtensionBinArrayBitmapSize][8]uint64{}
}

func (e *BinArrayBitmapExtension) side(index int32) *[shared.ExtensionBinArrayBitmapSize][8]uint64 {
	if index < 0 {
		return &e.NegativeBinArrayBitmap
	}
	return &e.PositiveBinArrayBitmap
}

func (e *BinArrayBitmapExtension) locate(index int32) (*[8]uint64, int, error) {
	offset, err := GetBitmapOffset(index)
	if err != nil {
		return nil, 0, err
	}
	return &e.side(index)[offset], BinArrayOffsetInBitmap(index), nil
}

func (e *BinArrayBitmapExtension) Bit(index int32) (bool, error) {
	word, bit, err := e.locate(index)
	if err != nil {
		return false, err
	}
	return word[bit/64]&(1<<(uint(bit)%64)) != 0, nil
}

func (e *BinArrayBitmapExtension) FlipBinArrayBit(index int32) error {
	word, bit, err := e.locate(index)
	if err != nil {
		return err
	}
	word[bit/64] ^= 1 << (uint(bit) % 64)
	return nil
}

// IterBitmap returns the first index with liquidity walking from start
// towards end, start included. The walk stays on start's side and runs to
// the edge of that side; end only gives the direction.
func (e *BinArrayBitmapExtension) IterBitmap(start, end int32) (int32, bool, error) {
	if start == end {
		ok, err := e.Bit(start)
		return start, ok && err == nil, err
	}

	offset, err := GetBitmapOffset(start)
	if err != nil {
		return 0, false, err
	}
	bit := BinArrayOffsetInBitmap(start)
	positive := start > 0
	words := e.side(start)

	// Offsets and bits grow with |index| on both sides.
	outward := (positive && start < end) || (!positive && start > end)
	if outward {
		for i := offset; i < shared.ExtensionBinArrayBitmapSize; i++ {
			from := 0
			if i == offset {
				from = bit
			}
			if b, ok := lowestSetBitAtOrAbove(words[i][:], from); ok {
				return ToBinArrayIndex(i, b, positive), true, nil
			}
		}
		return 0, false, nil
	}

	for i := offset; i >= 0; i-- {
		from := shared.BinArrayBitmapSize - 1
		if i == offset {
			from = bit
		}
		if b, ok := highestSetBitAtOrBelow(words[i][:], from); ok {
			return ToBinArrayIndex(i, b, positive), true, nil
		}
	}
	return 0, false, nil
}

// NextBinArrayIndexWithLiquidity searches the extension from start. Walking
// towards zero without a hit hands over to the inline bitmap by returning its
// edge with found == false; walking outwards without a hit is
// ErrCannotFindNonZeroLiquidityBinArrayID.
func (e *BinArrayBitmapExtension) NextBinArrayIndexWithLiquidity(swapForY bool, start int32) (int32, bool, error) {
	minID, maxID := ExtensionBitmapRange()
	if start > 0 {
		if swapForY {
			idx, ok, err := e.IterBitmap(start, shared.BinArrayBitmapSize)
			if err != nil || ok {
				return idx, ok, err
			}
			return shared.BinArrayBitmapSize - 1, false, nil
		}
		idx, ok, err := e.IterBitmap(start, maxID)
		if err != nil || ok {
			return idx, ok, err
		}
		return 0, false, shared.ErrCannotFindNonZeroLiquidityBinArrayID
	}

	if swapForY {
		idx, ok, err := e.IterBitmap(start, minID)
		if err != nil || ok {
			return idx, ok, err
		}
		return 0, false, shared.ErrCannotFindNonZeroLiquidityBinArrayID
	}
	idx, ok, err := e.IterBitmap(start, -shared.BinArrayBitmapSize-1)
	if err != nil || ok {
		return idx, ok, err
	}
	return -shared.BinArrayBitmapSize, false, nil
}

// IsBinArrayRangeEmpty reports whether [lower, upper], lying on one side of
// the extension, has no bit set.
func (e *BinArrayBitmapExtension) IsBinArrayRangeEmpty(lower, upper int32) (bool, error) {
	if lower > upper || (lower < 0) != (upper < 0) {
		return false, fmt.Errorf("extension range [%d, %d]: %w", lower, upper, shared.ErrInvalidIndex)
	}

	// On the negative side the lower index sits at the higher bit.
	from, to := lower, upper
	if lower < 0 {
		from, to = upper, lower
	}
	fromOffset, err := GetBitmapOffset(from)
	if err != nil {
		return false, err
	}
	toOffset, err := GetBitmapOffset(to)
	if err != nil {
		return false, err
	}
	fromBit, toBit := BinArrayOffsetInBitmap(from), BinArrayOffsetInBitmap(to)
	words := e.side(from)

	if fromOffset == toOffset {
		return isBitRangeEmpty(words[fromOffset][:], fromBit, toBit), nil
	}
	if !isBitRangeEmpty(words[fromOffset][:], fromBit, shared.BinArrayBitmapSize-1) {
		return false, nil
	}
	for i := fromOffset + 1; i < toOffset; i++ {
		for _, w := range words[i] {
			if w != 0 {
				return false, nil
			}
		}
	}
	return isBitRangeEmpty(words[toOffset][:], 0, toBit), nil
}
