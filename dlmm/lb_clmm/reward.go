package lb_clmm

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

// Initialized reports whether the reward slot has a mint. A slot never
// returns to the uninitialized state.
func (r *RewardInfo) Initialized() bool {
	return !r.Mint.Equals(solana.PublicKey{})
}

func (r *RewardInfo) InitReward(mint, vault, funder solana.PublicKey, duration uint64) {
	r.Mint = mint
	r.Vault = vault
	r.Funder = funder
	r.RewardDuration = duration
}

func (r *RewardInfo) UpdateLastUpdateTime(now uint64) {
	r.LastUpdateTime = min(now, r.RewardDurationEnd)
}

func (r *RewardInfo) GetSecondsElapsedSinceLastUpdate(now uint64) (uint64, error) {
	return dmath.SubU64(min(now, r.RewardDurationEnd), r.LastUpdateTime)
}

// CalculateRewardPerTokenStoredSinceLastUpdate returns elapsed * rate / supply.
// The supply is the bin liquidity with its fractional part dropped.
func (r *RewardInfo) CalculateRewardPerTokenStoredSinceLastUpdate(now uint64, liquiditySupply uint64) (*big.Int, error) {
	elapsed, err := r.GetSecondsElapsedSinceLastUpdate(now)
	if err != nil {
		return nil, err
	}
	return dmath.MulDiv(
		new(big.Int).SetUint64(elapsed),
		u128.ToBig(r.RewardRate),
		new(big.Int).SetUint64(liquiditySupply),
		shared.RoundingDown,
	)
}

// CalculateRewardAccumulatedSinceLastUpdate returns elapsed * rate, Q64.64, unbounded.
func (r *RewardInfo) CalculateRewardAccumulatedSinceLastUpdate(now uint64) (*big.Int, error) {
	elapsed, err := r.GetSecondsElapsedSinceLastUpdate(now)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(elapsed), u128.ToBig(r.RewardRate)), nil
}

// UpdateRateAfterFunding spreads the leftover of the running window plus the
// funded amount over a fresh reward duration starting now.
func (r *RewardInfo) UpdateRateAfterFunding(now uint64, fundingAmount uint64) error {
	if r.RewardDuration == 0 {
		return fmt.Errorf("reward duration: %w", shared.ErrDivisionByZero)
	}

	total := fundingAmount
	if now < r.RewardDurationEnd {
		remaining := r.RewardDurationEnd - now
		leftoverBig, err := dmath.MulShr(u128.ToBig(r.RewardRate), new(big.Int).SetUint64(remaining), shared.ScaleOffset, shared.RoundingDown)
		if err != nil {
			return err
		}
		leftover, err := dmath.ToU64(leftoverBig)
		if err != nil {
			return err
		}
		if total, err = dmath.AddU64(leftover, fundingAmount); err != nil {
			return err
		}
	}

	rate, err := dmath.ShlDiv(new(big.Int).SetUint64(total), new(big.Int).SetUint64(r.RewardDuration), shared.ScaleOffset, shared.RoundingDown)
	if err != nil {
		return err
	}
	if r.RewardRate, err = dmath.ToU128(rate); err != nil {
		return err
	}

	end, err := dmath.AddU64(now, r.RewardDuration)
	if err != nil {
		return err
	}
	r.LastUpdateTime = now
	r.RewardDurationEnd = end
	return nil
}
