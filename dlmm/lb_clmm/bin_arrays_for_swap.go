package lb_clmm

import (
	"github.com/gagliardetto/solana-go"
)

// GetBinArrayIndexesForSwap lists up to count bin arrays with liquidity a
// swap from the active bin would cross, in walk order.
func GetBinArrayIndexesForSwap(pair *LbPair, ext *BinArrayBitmapExtension, swapForY bool, count int) ([]int32, error) {
	minIndex, maxIndex := ExtensionBitmapRange()
	start := BinIDToBinArrayIndex(pair.ActiveID)

	var out []int32
	for len(out) < count && start >= minIndex && start <= maxIndex {
		index, found, err := pair.NextBinArrayIndexWithLiquidity(ext, swapForY, start)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		out = append(out, index)
		if swapForY {
			start = index - 1
		} else {
			start = index + 1
		}
	}
	return out, nil
}

// GetBinArrayPubkeysForSwap derives the addresses of GetBinArrayIndexesForSwap.
func GetBinArrayPubkeysForSwap(lbPair solana.PublicKey, pair *LbPair, ext *BinArrayBitmapExtension, swapForY bool, count int) ([]solana.PublicKey, error) {
	indexes, err := GetBinArrayIndexesForSwap(pair, ext, swapForY, count)
	if err != nil {
		return nil, err
	}
	keys := make([]solana.PublicKey, len(indexes))
	for i, index := range indexes {
		keys[i] = DeriveBinArray(lbPair, int64(index))
	}
	return keys, nil
}
