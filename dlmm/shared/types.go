package shared

// Enums and result types shared by math, lb_clmm and the client.
type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

func (r Rounding) String() string {
	if r == RoundingUp {
		return "up"
	}
	return "down"
}

// ResizeSide selects which end of a dynamic position grows or shrinks.
type ResizeSide uint8

const (
	ResizeSideLower ResizeSide = 0
	ResizeSideUpper ResizeSide = 1
)

type PairType uint8

const (
	PairTypePermissionless             PairType = 0
	PairTypePermission                 PairType = 1
	PairTypeCustomizablePermissionless PairType = 2
	PairTypePermissionlessV2           PairType = 3
)

type PairStatus uint8

const (
	PairStatusEnabled  PairStatus = 0
	PairStatusDisabled PairStatus = 1
)

type ActivationType uint8

const (
	ActivationTypeSlot      ActivationType = 0
	ActivationTypeTimestamp ActivationType = 1
)

type TokenProgramFlag uint8

const (
	TokenProgramFlagToken     TokenProgramFlag = 0
	TokenProgramFlagToken2022 TokenProgramFlag = 1
)

// SwapResult is the outcome of a swap inside one bin, or the sum over several.
//
// AmountInWithFees == amount consumed at the bin price + Fee.
// Fee == ProtocolFeeAfterHostFee + HostFee + LP share.
type SwapResult struct {
	AmountInWithFees        uint64
	AmountOut               uint64
	Fee                     uint64
	ProtocolFeeAfterHostFee uint64
	HostFee                 uint64
	// IsExactOutAmount reports whether the whole requested amount was met
	// without draining the liquidity that was walked.
	IsExactOutAmount bool
}

// LpFee is the part of Fee left to liquidity providers.
func (r SwapResult) LpFee() uint64 {
	return r.Fee - r.ProtocolFeeAfterHostFee - r.HostFee
}
