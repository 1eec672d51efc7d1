package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

var (
	feePrecision        = big.NewInt(shared.FeePrecision)
	basisPointMax       = big.NewInt(shared.BasisPointMax)
	variableFeeScale    = big.NewInt(shared.VariableFeeScale)
	variableFeeRounding = big.NewInt(shared.VariableFeeRounding)
)

// GetBaseFee returns baseFactor * binStep * 10 * 10^powerFactor, in 1e9 units.
func GetBaseFee(baseFactor, binStep uint16, powerFactor uint8) (*big.Int, error) {
	fee := new(big.Int).Mul(big.NewInt(int64(baseFactor)), big.NewInt(int64(binStep)))
	fee.Mul(fee, big.NewInt(10))
	fee.Mul(fee, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(powerFactor)), nil))
	if !IsU128(fee) {
		return nil, fmt.Errorf("base fee: %w", shared.ErrOverflow)
	}
	return fee, nil
}

// GetVariableFee returns ceil(vfc * (va * binStep)^2 / 1e11), in 1e9 units.
func GetVariableFee(volatilityAccumulator uint32, binStep uint16, variableFeeControl uint32) (*big.Int, error) {
	if variableFeeControl == 0 {
		return big.NewInt(0), nil
	}
	square := new(big.Int).Mul(big.NewInt(int64(volatilityAccumulator)), big.NewInt(int64(binStep)))
	square.Mul(square, square)
	fee := square.Mul(square, big.NewInt(int64(variableFeeControl)))
	if !IsU128(fee) {
		return nil, fmt.Errorf("variable fee: %w", shared.ErrOverflow)
	}
	fee.Add(fee, variableFeeRounding)
	fee.Div(fee, variableFeeScale)
	return fee, nil
}

// CapTotalFee returns min(baseFee + variableFee, MaxFeeRate).
func CapTotalFee(baseFee, variableFee *big.Int) (uint64, error) {
	total, err := Add128(baseFee, variableFee)
	if err != nil {
		return 0, err
	}
	if total.Cmp(big.NewInt(shared.MaxFeeRate)) > 0 {
		return shared.MaxFeeRate, nil
	}
	return total.Uint64(), nil
}

// ComputeFee returns the fee charged on top of amount:
// ceil(amount * rate / (1e9 - rate)).
func ComputeFee(amount, feeRate uint64) (uint64, error) {
	if feeRate >= shared.FeePrecision {
		return 0, fmt.Errorf("fee rate %d: %w", feeRate, shared.ErrOverflow)
	}
	denominator := new(big.Int).SetUint64(shared.FeePrecision - feeRate)
	fee := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(feeRate))
	fee.Add(fee, denominator)
	fee.Sub(fee, big.NewInt(1))
	fee.Div(fee, denominator)
	return ToU64(fee)
}

// ComputeFeeFromAmount returns the fee contained in amountWithFees:
// ceil(amountWithFees * rate / 1e9).
func ComputeFeeFromAmount(amountWithFees, feeRate uint64) (uint64, error) {
	fee := new(big.Int).Mul(new(big.Int).SetUint64(amountWithFees), new(big.Int).SetUint64(feeRate))
	fee.Add(fee, big.NewInt(shared.FeePrecision-1))
	fee.Div(fee, feePrecision)
	return ToU64(fee)
}

// ComputeProtocolFee returns ceil(fee * protocolShare / 10000).
func ComputeProtocolFee(fee uint64, protocolShare uint16) (uint64, error) {
	return ceilBps(fee, protocolShare)
}

// ComputeHostFee returns ceil(protocolFee * hostFeeBps / 10000).
func ComputeHostFee(protocolFee uint64, hostFeeBps uint16) (uint64, error) {
	return ceilBps(protocolFee, hostFeeBps)
}

func ceilBps(amount uint64, bps uint16) (uint64, error) {
	if bps > shared.BasisPointMax {
		return 0, fmt.Errorf("bps %d: %w", bps, shared.ErrOverflow)
	}
	out, err := MulDiv(new(big.Int).SetUint64(amount), big.NewInt(int64(bps)), basisPointMax, shared.RoundingUp)
	if err != nil {
		return 0, err
	}
	return ToU64(out)
}

// ComputeCompositionFee returns swapAmount * rate * (1e9 + rate) / 1e18.
func ComputeCompositionFee(swapAmount, feeRate uint64) (uint64, error) {
	rate := new(big.Int).SetUint64(feeRate)
	fee := new(big.Int).Mul(new(big.Int).SetUint64(swapAmount), rate)
	fee.Mul(fee, new(big.Int).Add(feePrecision, rate))
	fee.Div(fee, new(big.Int).Mul(feePrecision, feePrecision))
	return ToU64(fee)
}
