package lb_clmm

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StaticParameters are the fee parameters set by the pair creator.
type StaticParameters struct {
	// Used for base fee calculation. base_fee_rate = base_factor * bin_step * 10 * 10^base_fee_power_factor
	BaseFactor uint16
	// Filter period determine high frequency trading time window.
	FilterPeriod uint16
	// Decay period determine when the volatile fee start decay / decrease.
	DecayPeriod uint16
	// Reduction factor controls the volatile fee rate decrement rate.
	ReductionFactor uint16
	// Used to scale the variable fee component depending on the dynamic of the market
	VariableFeeControl uint32
	// Maximum number of bin crossed can be accumulated. Used to cap volatile fee rate.
	MaxVolatilityAccumulator uint32
	MinBinID                 int32
	MaxBinID                 int32
	// Portion of swap fees retained by the protocol, in basis points.
	ProtocolShare      uint16
	BaseFeePowerFactor uint8
	Padding            [5]uint8
}

// VariableParameters change with every swap.
type VariableParameters struct {
	// Volatility accumulator measure the number of bin crossed since reference bin ID.
	VolatilityAccumulator uint32
	// Volatility reference is decayed volatility accumulator.
	VolatilityReference uint32
	IndexReference      int32
	Padding             [4]uint8
	// Last timestamp the variable parameters was updated
	LastUpdateTimestamp int64
	Padding1            [8]uint8
}

type ProtocolFee struct {
	AmountX uint64
	AmountY uint64
}

// RewardInfo is a farming reward stream attached to a pair.
type RewardInfo struct {
	Mint   solana.PublicKey
	Vault  solana.PublicKey
	Funder solana.PublicKey
	// Reward duration in seconds
	RewardDuration    uint64
	RewardDurationEnd uint64
	// Reward per second, Q64.64
	RewardRate     binary.Uint128
	LastUpdateTime uint64
	// Seconds the active bin had no liquidity. Rewards of that window are carried to the next funding.
	CumulativeSecondsWithEmptyLiquidityReward uint64
}

// LbPair is the pool account.
type LbPair struct {
	Parameters              StaticParameters
	VParameters             VariableParameters
	BumpSeed                [1]uint8
	BinStepSeed             [2]uint8
	PairType                uint8
	ActiveID                int32
	BinStep                 uint16
	Status                  uint8
	RequireBaseFactorSeed   uint8
	BaseFactorSeed          [2]uint8
	ActivationType          uint8
	CreatorPoolOnOffControl uint8
	TokenXMint              solana.PublicKey
	TokenYMint              solana.PublicKey
	ReserveX                solana.PublicKey
	ReserveY                solana.PublicKey
	ProtocolFee             ProtocolFee
	Padding1                [32]uint8
	RewardInfos             [2]RewardInfo
	Oracle                  solana.PublicKey
	// Inline bitmap of bin arrays [-512, 511]
	BinArrayBitmap           [16]uint64
	LastUpdatedAt            int64
	Padding2                 [32]uint8
	PreActivationSwapAddress solana.PublicKey
	BaseKey                  solana.PublicKey
	// Slot or timestamp, depending on ActivationType
	ActivationPoint       uint64
	PreActivationDuration uint64
	Padding3              [8]uint8
	Padding4              uint64
	Creator               solana.PublicKey
	TokenMintXProgramFlag uint8
	TokenMintYProgramFlag uint8
	Reserved              [22]uint8
}

// Bin is one price level of a pair.
type Bin struct {
	// Amount of token X in the bin, protocol fees excluded
	AmountX uint64
	// Amount of token Y in the bin, protocol fees excluded
	AmountY uint64
	Price   binary.Uint128
	// Q64.64 liquidity supply, the LP share total of the bin
	LiquiditySupply          binary.Uint128
	RewardPerTokenStored     [2]binary.Uint128
	FeeAmountXPerTokenStored binary.Uint128
	FeeAmountYPerTokenStored binary.Uint128
	// Analytics only
	AmountXIn binary.Uint128
	AmountYIn binary.Uint128
}

// BinArray holds 70 contiguous bins starting at Index*70.
type BinArray struct {
	Index   int64
	Version uint8
	Padding [7]uint8
	LbPair  solana.PublicKey
	Bins    [70]Bin
}

// BinArrayBitmapExtension extends the inline bitmap to [-6656, -513] and [512, 6655].
type BinArrayBitmapExtension struct {
	LbPair                 solana.PublicKey
	PositiveBinArrayBitmap [12][8]uint64
	NegativeBinArrayBitmap [12][8]uint64
}

type UserRewardInfo struct {
	RewardPerTokenCompletes [2]binary.Uint128
	RewardPendings          [2]uint64
}

type FeeInfo struct {
	FeeXPerTokenComplete binary.Uint128
	FeeYPerTokenComplete binary.Uint128
	FeeXPending          uint64
	FeeYPending          uint64
}

// PositionBinData is the per-bin tail record of a dynamic position.
type PositionBinData struct {
	LiquidityShare binary.Uint128
	RewardInfo     UserRewardInfo
	FeeInfo        FeeInfo
}

// PositionV3 is the fixed header of a dynamic position account.
type PositionV3 struct {
	LbPair                               solana.PublicKey
	Owner                                solana.PublicKey
	LowerBinID                           int32
	UpperBinID                           int32
	LastUpdatedAt                        int64
	TotalClaimedFeeXAmount               uint64
	TotalClaimedFeeYAmount               uint64
	TotalClaimedRewards                  [2]uint64
	Operator                             solana.PublicKey
	LockReleaseSlot                      uint64
	SubjectedToBootstrapLiquidityLocking uint8
	Padding0                             [7]uint8
	FeeOwner                             solana.PublicKey
	Length                               uint64
	Reserved                             [128]uint8
}

// Position is the legacy fixed-width position, superseded by PositionV3.
type Position struct {
	LbPair                 solana.PublicKey
	Owner                  solana.PublicKey
	LiquidityShares        [70]uint64
	RewardInfos            [70]UserRewardInfo
	FeeInfos               [70]FeeInfo
	LowerBinID             int32
	UpperBinID             int32
	LastUpdatedAt          int64
	TotalClaimedFeeXAmount uint64
	TotalClaimedFeeYAmount uint64
	TotalClaimedRewards    [2]uint64
	Reserved               [160]uint8
}

// Oracle header. Observations follow in the account data.
type Oracle struct {
	Idx        uint64
	ActiveSize uint64
	Length     uint64
}

// PresetParameter2 is an admin-created fee preset pairs can be created from.
type PresetParameter2 struct {
	BinStep                  uint16
	BaseFactor               uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	VariableFeeControl       uint32
	MaxVolatilityAccumulator uint32
	ReductionFactor          uint16
	ProtocolShare            uint16
	Index                    uint16
	BaseFeePowerFactor       uint8
	Padding0                 uint8
	Padding1                 [20]uint64
}
