package dlmm

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/meteora-dlmm-go/decimal_math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	solanago "github.com/krazyTry/meteora-dlmm-go/solana"
)

// PositionInfo is a position with what it can claim right now.
type PositionInfo struct {
	*Position
	FeeX    uint64
	FeeY    uint64
	Rewards [2]uint64
}

// ClaimableFromState computes the fees and rewards pos could claim at now.
// Inputs are not modified.
func ClaimableFromState(pos *lb_clmm.DynamicPosition, pair *lb_clmm.LbPair, arrays *lb_clmm.BinArrayManager, now int64) (uint64, uint64, [2]uint64, error) {
	feeX, feeY, err := pos.ClaimableFees(arrays)
	if err != nil {
		return 0, 0, [2]uint64{}, err
	}
	if now < 0 {
		now = 0
	}
	rewards, err := pos.ClaimableRewards(*pair, arrays, uint64(now))
	if err != nil {
		return 0, 0, [2]uint64{}, err
	}
	return feeX, feeY, rewards, nil
}

// positionArrayIndexes lists the bin arrays covering every position, ascending.
func positionArrayIndexes(positions []*Position) []int64 {
	var indexes []int64
	for _, p := range positions {
		lower, upper := p.GetBinArrayIndexesBound()
		for index := lower; index <= upper; index++ {
			indexes = append(indexes, int64(index))
		}
	}
	slices.Sort(indexes)
	return slices.Compact(indexes)
}

// GetPositionsByUserAndPair returns the positions of owner in lbPair with
// their claimable fees and rewards.
func (m *DLMM) GetPositionsByUserAndPair(ctx context.Context, owner, lbPair solana.PublicKey) ([]*PositionInfo, error) {
	positions, err := m.FetchPositionsByUserAndPair(ctx, owner, lbPair)
	if err != nil || len(positions) == 0 {
		return nil, err
	}
	pair, err := m.FetchLbPair(ctx, lbPair)
	if err != nil {
		return nil, err
	}
	arrays, err := m.FetchBinArrays(ctx, lbPair, positionArrayIndexes(positions))
	if err != nil {
		return nil, err
	}
	clock, err := m.GetClock(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*PositionInfo, len(positions))
	for i, p := range positions {
		info := &PositionInfo{Position: p}
		if info.FeeX, info.FeeY, info.Rewards, err = ClaimableFromState(p.DynamicPosition, pair.LbPair, arrays, clock.UnixTimestamp); err != nil {
			return nil, fmt.Errorf("position %s: %w", p.Address, err)
		}
		infos[i] = info
	}
	return infos, nil
}

// ActiveBin is the bin swaps currently trade in.
type ActiveBin struct {
	BinID int32
	// Q64.64 price, Y lamports per X lamport
	Price         *big.Int
	PricePerToken decimal.Decimal
	AmountX       uint64
	AmountY       uint64
}

func (m *DLMM) GetActiveBin(ctx context.Context, lbPair solana.PublicKey) (*ActiveBin, error) {
	pair, err := m.FetchLbPair(ctx, lbPair)
	if err != nil {
		return nil, err
	}
	price, err := dmath.GetPriceFromID(pair.ActiveID, pair.BinStep)
	if err != nil {
		return nil, err
	}
	active := &ActiveBin{BinID: pair.ActiveID, Price: price}

	arrays, err := m.FetchBinArrays(ctx, lbPair, []int64{int64(lb_clmm.BinIDToBinArrayIndex(pair.ActiveID))})
	if err != nil {
		return nil, err
	}
	if bin, err := arrays.GetBin(pair.ActiveID); err == nil {
		active.AmountX, active.AmountY = bin.AmountX, bin.AmountY
	}

	var decimalsX, decimalsY uint8
	err = m.withRetry(ctx, "getMintDecimals", func(ctx context.Context) error {
		var err error
		decimalsX, decimalsY, err = solanago.GetMintDecimals(ctx, m.rpcClient, m.commitment, pair.TokenXMint, pair.TokenYMint)
		return err
	})
	if err != nil {
		return nil, err
	}
	active.PricePerToken = decimal_math.PricePerToken(price, decimalsX, decimalsY)
	return active, nil
}
