package lb_clmm

import "github.com/gagliardetto/solana-go"

// Account key constants for the DLMM program accounts
var (
	AccountKeyLbPair                  = "LbPair"
	AccountKeyBinArray                = "BinArray"
	AccountKeyBinArrayBitmapExtension = "BinArrayBitmapExtension"
	AccountKeyPosition                = "Position"
	AccountKeyPositionV3              = "PositionV3"
	AccountKeyOracle                  = "Oracle"
	AccountKeyPresetParameter2        = "PresetParameter2"
)

// PDA seeds
var (
	SeedBinArray                 = []byte("bin_array")
	SeedBitmap                   = []byte("bitmap")
	SeedOracle                   = []byte("oracle")
	SeedPosition                 = []byte("position")
	SeedPresetParameter          = []byte("preset_parameter")
	SeedPresetParameter2         = []byte("preset_parameter2")
	SeedTokenBadge               = []byte("token_badge")
	SeedClaimProtocolFeeOperator = []byte("cf_operator")
	SeedEventAuthority           = []byte("__event_authority")
)

// ILMBaseKey is the base of customizable permissionless pairs.
var ILMBaseKey = solana.MustPublicKeyFromBase58("MFGQxwAmB91SwuYX36okv2Qmdc9aMuHTwWGUrp4AtB1")

// Layout sizes in bytes, discriminator excluded.
const (
	DiscriminatorSize           = 8
	LbPairSize                  = 896
	BinSize                     = 144
	BinArraySize                = 8 + 8 + 32 + 70*BinSize
	BinArrayBitmapExtensionSize = 32 + 2*12*8*8
	PositionSize                = 32 + 32 + 70*(8+48+48) + 4 + 4 + 8 + 8 + 8 + 16 + 160
	PositionV3Size              = 336
	PositionBinDataSize         = 112
	OracleSize                  = 24
	PresetParameter2Size        = 184
)

// Byte offsets inside the LbPair account, discriminator included.
const (
	LbPairActiveIDOffset   = 76
	LbPairTokenXMintOffset = 88
	LbPairTokenYMintOffset = 120
)

// Byte offsets inside the PositionV3 account, discriminator included.
const (
	PositionLbPairOffset = 8
	PositionOwnerOffset  = 40
)

// LayoutVersion of a bin array. Version 0 stores liquidity supply unscaled.
const (
	LayoutVersionV0 uint8 = 0
	LayoutVersionV1 uint8 = 1
)
