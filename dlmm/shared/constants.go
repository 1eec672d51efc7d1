package shared

import "math/big"

const (
	ScaleOffset   = 64
	BasisPointMax = 10_000

	MaxBinPerArray    = 70
	MaxBinPerPosition = 70
	MaxResizeLength   = 70
	PositionMaxLength = 1400

	MinBinID = -443636
	MaxBinID = 443636

	// Inline bitmap covers bin array indexes [-BinArrayBitmapSize, BinArrayBitmapSize-1].
	BinArrayBitmapSize = 512

	// Words of the bitmap extension on each side.
	ExtensionBinArrayBitmapSize = 12

	FeePrecision      = 1_000_000_000
	MaxFeeRate        = 100_000_000
	MaxProtocolShare  = 2_500
	HostFeeBps        = 2_000
	MaxBinStep        = 400
	MaxBaseFactorStep = 100
	MaxBaseFee        = 100_000_000
	MinBaseFee        = 100_000

	NumRewards        = 2
	MaxRewardDuration = 31_536_000

	// Variable fee is computed in 1e20 units and scaled down to FeePrecision.
	VariableFeeScale    = 100_000_000_000
	VariableFeeRounding = 99_999_999_999

	DefaultBinArrayCountForSwap = 3
	DefaultMaxSwapIterations    = MaxBinPerArray * 64
)

var (
	OneQ64         = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)
	MaxExponential = big.NewInt(0x80000)
	MaxU128        = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	MaxU64         = new(big.Int).SetUint64(^uint64(0))
)
