package shared

import "errors"

var (
	ErrOverflow              = errors.New("math overflow")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrSchemaMismatch        = errors.New("account schema mismatch")
	ErrNonEmptyBin           = errors.New("bin is not empty")
	ErrInvalidBinRange       = errors.New("invalid bin range")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	ErrCannotFindNonZeroLiquidityBinArrayID = errors.New("cannot find non-zero liquidity bin array id")
	ErrBitmapExtensionNotProvided           = errors.New("bitmap extension account is not provided")
	ErrInvalidPosition                      = errors.New("invalid position")
	ErrInvalidBinID                         = errors.New("invalid bin id")
	ErrInvalidStartBinIndex                 = errors.New("invalid start bin index")
	ErrInvalidIndex                         = errors.New("invalid index")
	ErrExcessiveFeeUpdate                   = errors.New("excessive fee update")
	ErrInvalidRewardIndex                   = errors.New("invalid reward index")
	ErrPairDisabled                         = errors.New("pair is disabled")
	ErrPairNotActivated                     = errors.New("pair is not activated")
	ErrBinArrayNotFound                     = errors.New("bin array not found")
)
