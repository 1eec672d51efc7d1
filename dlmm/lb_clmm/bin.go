package lb_clmm

import (
	"math/big"

	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

// FeeCalculator prices the swap fee inside a bin. *LbPair implements it from
// its fee parameters; quotes with an explicit rate use FixedFee.
type FeeCalculator interface {
	// ComputeFee returns the fee charged on top of amount.
	ComputeFee(amount uint64) (uint64, error)
	// ComputeFeeFromAmount returns the fee included in amountWithFees.
	ComputeFeeFromAmount(amountWithFees uint64) (uint64, error)
	// ComputeProtocolFee returns the protocol part of fee.
	ComputeProtocolFee(fee uint64) (uint64, error)
}

// FixedFee is a FeeCalculator with a constant rate in FeePrecision units.
type FixedFee struct {
	Rate          uint64
	ProtocolShare uint16
}

func (f FixedFee) ComputeFee(amount uint64) (uint64, error) {
	return dmath.ComputeFee(amount, f.Rate)
}

func (f FixedFee) ComputeFeeFromAmount(amountWithFees uint64) (uint64, error) {
	return dmath.ComputeFeeFromAmount(amountWithFees, f.Rate)
}

func (f FixedFee) ComputeProtocolFee(fee uint64) (uint64, error) {
	return dmath.ComputeProtocolFee(fee, f.ProtocolShare)
}

// GetOutAmount returns share * binAmount / supply, rounded down. Zero supply
// yields zero.
func GetOutAmount(share *big.Int, binAmount uint64, supply *big.Int) (uint64, error) {
	if supply.Sign() == 0 {
		return 0, nil
	}
	out, err := dmath.MulDiv(share, new(big.Int).SetUint64(binAmount), supply, shared.RoundingDown)
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(out)
}

// GetLiquidityShare returns the share minted for inLiquidity deposited into a
// bin holding binLiquidity with the given supply, rounded down.
func GetLiquidityShare(inLiquidity, binLiquidity, supply *big.Int) (*big.Int, error) {
	return dmath.MulDiv(inLiquidity, supply, binLiquidity, shared.RoundingDown)
}

func (b *Bin) IsZeroLiquidity() bool {
	return b.LiquiditySupply.Lo == 0 && b.LiquiditySupply.Hi == 0
}

func (b *Bin) IsEmpty(isX bool) bool {
	if isX {
		return b.AmountX == 0
	}
	return b.AmountY == 0
}

func (b *Bin) Deposit(amountX, amountY uint64, share *big.Int) error {
	x, err := dmath.AddU64(b.AmountX, amountX)
	if err != nil {
		return err
	}
	y, err := dmath.AddU64(b.AmountY, amountY)
	if err != nil {
		return err
	}
	supply, err := dmath.Add128(u128.ToBig(b.LiquiditySupply), share)
	if err != nil {
		return err
	}
	b.AmountX, b.AmountY = x, y
	b.LiquiditySupply = u128.FromBig(supply)
	return nil
}

func (b *Bin) DepositCompositionFee(feeX, feeY uint64) error {
	x, err := dmath.AddU64(b.AmountX, feeX)
	if err != nil {
		return err
	}
	y, err := dmath.AddU64(b.AmountY, feeY)
	if err != nil {
		return err
	}
	b.AmountX, b.AmountY = x, y
	return nil
}

// GetOrStorePrice returns the cached bin price, computing it on first use.
func (b *Bin) GetOrStorePrice(id int32, binStep uint16) (*big.Int, error) {
	if b.Price.Lo == 0 && b.Price.Hi == 0 {
		price, err := dmath.GetPriceFromID(id, binStep)
		if err != nil {
			return nil, err
		}
		b.Price = u128.FromBig(price)
	}
	return u128.ToBig(b.Price), nil
}

// UpdateFeePerTokenStored adds fee / (supply >> 64), Q64.64, to the fee
// growth of the input token.
func (b *Bin) UpdateFeePerTokenStored(fee uint64, swapForY bool) error {
	supply := new(big.Int).Rsh(u128.ToBig(b.LiquiditySupply), shared.ScaleOffset)
	if _, err := dmath.ToU64(supply); err != nil {
		return err
	}
	perToken, err := dmath.ShlDiv(new(big.Int).SetUint64(fee), supply, shared.ScaleOffset, shared.RoundingDown)
	if err != nil {
		return err
	}

	stored := &b.FeeAmountYPerTokenStored
	if swapForY {
		stored = &b.FeeAmountXPerTokenStored
	}
	sum, err := dmath.Add128(u128.ToBig(*stored), perToken)
	if err != nil {
		return err
	}
	*stored = u128.FromBig(sum)
	return nil
}

// Withdraw removes share from the bin and returns the token amounts it owned.
func (b *Bin) Withdraw(share *big.Int) (uint64, uint64, error) {
	outX, outY, err := b.CalculateOutAmount(share)
	if err != nil {
		return 0, 0, err
	}
	x, err := dmath.SubU64(b.AmountX, outX)
	if err != nil {
		return 0, 0, err
	}
	y, err := dmath.SubU64(b.AmountY, outY)
	if err != nil {
		return 0, 0, err
	}
	supply, err := dmath.Sub128(u128.ToBig(b.LiquiditySupply), share)
	if err != nil {
		return 0, 0, err
	}
	b.AmountX, b.AmountY = x, y
	b.LiquiditySupply = u128.FromBig(supply)
	return outX, outY, nil
}

// CalculateOutAmount returns the amounts owned by share, rounded down.
func (b *Bin) CalculateOutAmount(share *big.Int) (uint64, uint64, error) {
	supply := u128.ToBig(b.LiquiditySupply)
	outX, err := GetOutAmount(share, b.AmountX, supply)
	if err != nil {
		return 0, 0, err
	}
	outY, err := GetOutAmount(share, b.AmountY, supply)
	if err != nil {
		return 0, 0, err
	}
	return outX, outY, nil
}

// AccumulateAmountsIn tracks swapped-in volume. It wraps on overflow.
func (b *Bin) AccumulateAmountsIn(amountXIn, amountYIn uint64) {
	b.AmountXIn = u128.FromBig(dmath.WrappingAdd128(u128.ToBig(b.AmountXIn), new(big.Int).SetUint64(amountXIn)))
	b.AmountYIn = u128.FromBig(dmath.WrappingAdd128(u128.ToBig(b.AmountYIn), new(big.Int).SetUint64(amountYIn)))
}

// GetMaxAmountOut is the reserve on the output side.
func (b *Bin) GetMaxAmountOut(swapForY bool) uint64 {
	if swapForY {
		return b.AmountY
	}
	return b.AmountX
}

// GetAmountOut converts amountIn at price, rounded down.
// X -> Y: in * price; Y -> X: in / price.
func GetAmountOut(amountIn uint64, price *big.Int, swapForY bool) (uint64, error) {
	var (
		out *big.Int
		err error
	)
	if swapForY {
		out, err = dmath.MulShr(price, new(big.Int).SetUint64(amountIn), shared.ScaleOffset, shared.RoundingDown)
	} else {
		out, err = dmath.ShlDiv(new(big.Int).SetUint64(amountIn), price, shared.ScaleOffset, shared.RoundingDown)
	}
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(out)
}

// GetAmountIn is the input, fees excluded, needed to receive amountOut at
// price, rounded up.
func GetAmountIn(amountOut uint64, price *big.Int, swapForY bool) (uint64, error) {
	var (
		in  *big.Int
		err error
	)
	if swapForY {
		in, err = dmath.ShlDiv(new(big.Int).SetUint64(amountOut), price, shared.ScaleOffset, shared.RoundingUp)
	} else {
		in, err = dmath.MulShr(new(big.Int).SetUint64(amountOut), price, shared.ScaleOffset, shared.RoundingUp)
	}
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(in)
}

// GetMaxAmountIn is the input, fees excluded, that drains the output side of
// the bin, rounded up.
func (b *Bin) GetMaxAmountIn(price *big.Int, swapForY bool) (uint64, error) {
	return GetAmountIn(b.GetMaxAmountOut(swapForY), price, swapForY)
}

func (b *Bin) GetMaxAmountsIn(price *big.Int) (uint64, uint64, error) {
	inX, err := b.GetMaxAmountIn(price, true)
	if err != nil {
		return 0, 0, err
	}
	inY, err := b.GetMaxAmountIn(price, false)
	if err != nil {
		return 0, 0, err
	}
	return inX, inY, nil
}

// Swap exchanges up to amountIn (fees included) against the bin at price and
// moves the reserves. The fee stays outside the reserves, it is tracked by
// the fee growth instead.
func (b *Bin) Swap(amountIn uint64, price *big.Int, swapForY bool, fees FeeCalculator, hostFeeBps *uint16) (shared.SwapResult, error) {
	maxAmountOut := b.GetMaxAmountOut(swapForY)
	maxAmountIn, err := b.GetMaxAmountIn(price, swapForY)
	if err != nil {
		return shared.SwapResult{}, err
	}
	maxFee, err := fees.ComputeFee(maxAmountIn)
	if err != nil {
		return shared.SwapResult{}, err
	}
	if maxAmountIn, err = dmath.AddU64(maxAmountIn, maxFee); err != nil {
		return shared.SwapResult{}, err
	}

	var (
		result shared.SwapResult
		fee    uint64
	)
	if amountIn > maxAmountIn {
		result.AmountInWithFees = maxAmountIn
		result.AmountOut = maxAmountOut
		fee = maxFee
	} else {
		if fee, err = fees.ComputeFeeFromAmount(amountIn); err != nil {
			return shared.SwapResult{}, err
		}
		afterFee, err := dmath.SubU64(amountIn, fee)
		if err != nil {
			return shared.SwapResult{}, err
		}
		out, err := GetAmountOut(afterFee, price, swapForY)
		if err != nil {
			return shared.SwapResult{}, err
		}
		result.AmountInWithFees = amountIn
		result.AmountOut = min(out, maxAmountOut)
		result.IsExactOutAmount = true
	}
	result.Fee = fee

	protocolFee, err := fees.ComputeProtocolFee(fee)
	if err != nil {
		return shared.SwapResult{}, err
	}
	if hostFeeBps != nil {
		if result.HostFee, err = dmath.ComputeHostFee(protocolFee, *hostFeeBps); err != nil {
			return shared.SwapResult{}, err
		}
	}
	if result.ProtocolFeeAfterHostFee, err = dmath.SubU64(protocolFee, result.HostFee); err != nil {
		return shared.SwapResult{}, err
	}

	intoBin, err := dmath.SubU64(result.AmountInWithFees, fee)
	if err != nil {
		return shared.SwapResult{}, err
	}
	if swapForY {
		x, err := dmath.AddU64(b.AmountX, intoBin)
		if err != nil {
			return shared.SwapResult{}, err
		}
		y, err := dmath.SubU64(b.AmountY, result.AmountOut)
		if err != nil {
			return shared.SwapResult{}, err
		}
		b.AmountX, b.AmountY = x, y
	} else {
		y, err := dmath.AddU64(b.AmountY, intoBin)
		if err != nil {
			return shared.SwapResult{}, err
		}
		x, err := dmath.SubU64(b.AmountX, result.AmountOut)
		if err != nil {
			return shared.SwapResult{}, err
		}
		b.AmountX, b.AmountY = x, y
	}
	return result, nil
}

