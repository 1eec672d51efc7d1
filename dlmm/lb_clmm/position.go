package lb_clmm

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/gagliardetto/solana-go"

	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/u128"
)

// DynamicPosition is a PositionV3 header plus one PositionBinData per bin of
// [LowerBinID, UpperBinID], ascending.
type DynamicPosition struct {
	Global PositionV3
	Bins   []PositionBinData
}

// NewDynamicPosition opens a position over [lowerBinID, lowerBinID+width-1].
func NewDynamicPosition(lbPair, owner, operator solana.PublicKey, lowerBinID, width int32, now int64) (*DynamicPosition, error) {
	if width <= 0 || width > shared.PositionMaxLength {
		return nil, fmt.Errorf("width %d: %w", width, shared.ErrInvalidBinRange)
	}
	upper := int64(lowerBinID) + int64(width) - 1
	if lowerBinID < shared.MinBinID || upper > shared.MaxBinID {
		return nil, fmt.Errorf("bins [%d, %d]: %w", lowerBinID, upper, shared.ErrInvalidBinRange)
	}
	return &DynamicPosition{
		Global: PositionV3{
			LbPair:        lbPair,
			Owner:         owner,
			Operator:      operator,
			LowerBinID:    lowerBinID,
			UpperBinID:    int32(upper),
			LastUpdatedAt: now,
			Length:        uint64(width),
		},
		Bins: make([]PositionBinData, width),
	}, nil
}

func (p *DynamicPosition) Width() int {
	return len(p.Bins)
}

func (p *DynamicPosition) Clone() *DynamicPosition {
	return &DynamicPosition{Global: p.Global, Bins: slices.Clone(p.Bins)}
}

// IncreaseLength adds n empty bins on side. Lower grows towards smaller bin
// ids and shifts the existing entries up.
func (p *DynamicPosition) IncreaseLength(n int, side shared.ResizeSide) error {
	if n <= 0 || n > shared.MaxResizeLength || p.Width()+n > shared.PositionMaxLength {
		return fmt.Errorf("increase by %d from %d: %w", n, p.Width(), shared.ErrInvalidBinRange)
	}

	fresh := make([]PositionBinData, n)
	switch side {
	case shared.ResizeSideLower:
		lower := int64(p.Global.LowerBinID) - int64(n)
		if lower < shared.MinBinID {
			return fmt.Errorf("lower bin %d: %w", lower, shared.ErrInvalidBinRange)
		}
		p.Global.LowerBinID = int32(lower)
		p.Bins = append(fresh, p.Bins...)
	case shared.ResizeSideUpper:
		upper := int64(p.Global.UpperBinID) + int64(n)
		if upper > shared.MaxBinID {
			return fmt.Errorf("upper bin %d: %w", upper, shared.ErrInvalidBinRange)
		}
		p.Global.UpperBinID = int32(upper)
		p.Bins = append(p.Bins, fresh...)
	default:
		return fmt.Errorf("resize side %d: %w", side, shared.ErrInvalidBinRange)
	}
	p.Global.Length = uint64(len(p.Bins))
	return nil
}

// DecreaseLength drops n bins from side. At least one bin stays and every
// dropped bin must be empty.
func (p *DynamicPosition) DecreaseLength(n int, side shared.ResizeSide) error {
	if n <= 0 || n > shared.MaxResizeLength || n >= p.Width() {
		return fmt.Errorf("decrease by %d from %d: %w", n, p.Width(), shared.ErrInvalidBinRange)
	}

	var dropped []PositionBinData
	switch side {
	case shared.ResizeSideLower:
		dropped = p.Bins[:n]
	case shared.ResizeSideUpper:
		dropped = p.Bins[len(p.Bins)-n:]
	default:
		return fmt.Errorf("resize side %d: %w", side, shared.ErrInvalidBinRange)
	}
	for i := range dropped {
		if !dropped[i].IsEmpty() {
			return fmt.Errorf("decrease %d bins on side %d: %w", n, side, shared.ErrNonEmptyBin)
		}
	}

	if side == shared.ResizeSideLower {
		p.Global.LowerBinID += int32(n)
		p.Bins = slices.Clone(p.Bins[n:])
	} else {
		p.Global.UpperBinID -= int32(n)
		p.Bins = slices.Clone(p.Bins[:len(p.Bins)-n])
	}
	p.Global.Length = uint64(len(p.Bins))
	return nil
}

func (p *DynamicPosition) IDWithinPosition(binID int32) error {
	if binID < p.Global.LowerBinID || binID > p.Global.UpperBinID {
		return fmt.Errorf("bin %d outside [%d, %d]: %w", binID, p.Global.LowerBinID, p.Global.UpperBinID, shared.ErrInvalidPosition)
	}
	return nil
}

func (p *DynamicPosition) assertRange(minBinID, maxBinID int32) error {
	if minBinID > maxBinID || minBinID < p.Global.LowerBinID || maxBinID > p.Global.UpperBinID {
		return fmt.Errorf("range [%d, %d] outside [%d, %d]: %w",
			minBinID, maxBinID, p.Global.LowerBinID, p.Global.UpperBinID, shared.ErrInvalidPosition)
	}
	return nil
}

func (p *DynamicPosition) binData(binID int32) (*PositionBinData, error) {
	if err := p.IDWithinPosition(binID); err != nil {
		return nil, err
	}
	return &p.Bins[binID-p.Global.LowerBinID], nil
}

func (p *DynamicPosition) GetLiquidityShareInBin(binID int32) (*big.Int, error) {
	d, err := p.binData(binID)
	if err != nil {
		return nil, err
	}
	return u128.ToBig(d.LiquidityShare), nil
}

func (p *DynamicPosition) Deposit(binID int32, share *big.Int) error {
	d, err := p.binData(binID)
	if err != nil {
		return err
	}
	sum, err := dmath.Add128(u128.ToBig(d.LiquidityShare), share)
	if err != nil {
		return err
	}
	d.LiquidityShare = u128.FromBig(sum)
	return nil
}

func (p *DynamicPosition) Withdraw(binID int32, share *big.Int) error {
	d, err := p.binData(binID)
	if err != nil {
		return err
	}
	left, err := dmath.Sub128(u128.ToBig(d.LiquidityShare), share)
	if err != nil {
		return err
	}
	d.LiquidityShare = u128.FromBig(left)
	return nil
}

// ClaimFee collects and clears the pending fees of [minBinID, maxBinID].
func (p *DynamicPosition) ClaimFee(minBinID, maxBinID int32) (uint64, uint64, error) {
	if err := p.assertRange(minBinID, maxBinID); err != nil {
		return 0, 0, err
	}
	var feeX, feeY uint64
	for id := minBinID; id <= maxBinID; id++ {
		info := &p.Bins[id-p.Global.LowerBinID].FeeInfo
		var err error
		if feeX, err = dmath.AddU64(feeX, info.FeeXPending); err != nil {
			return 0, 0, err
		}
		if feeY, err = dmath.AddU64(feeY, info.FeeYPending); err != nil {
			return 0, 0, err
		}
		info.FeeXPending, info.FeeYPending = 0, 0
	}
	return feeX, feeY, nil
}

func checkRewardIndex(rewardIndex int) error {
	if rewardIndex < 0 || rewardIndex >= shared.NumRewards {
		return fmt.Errorf("reward %d: %w", rewardIndex, shared.ErrInvalidRewardIndex)
	}
	return nil
}

func (p *DynamicPosition) GetTotalReward(rewardIndex int, minBinID, maxBinID int32) (uint64, error) {
	if err := checkRewardIndex(rewardIndex); err != nil {
		return 0, err
	}
	if err := p.assertRange(minBinID, maxBinID); err != nil {
		return 0, err
	}
	var total uint64
	for id := minBinID; id <= maxBinID; id++ {
		var err error
		if total, err = dmath.AddU64(total, p.Bins[id-p.Global.LowerBinID].RewardInfo.RewardPendings[rewardIndex]); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (p *DynamicPosition) ResetAllPendingReward(rewardIndex int, minBinID, maxBinID int32) error {
	if err := checkRewardIndex(rewardIndex); err != nil {
		return err
	}
	if err := p.assertRange(minBinID, maxBinID); err != nil {
		return err
	}
	for id := minBinID; id <= maxBinID; id++ {
		p.Bins[id-p.Global.LowerBinID].RewardInfo.RewardPendings[rewardIndex] = 0
	}
	return nil
}

// ClaimReward collects and clears the pending reward rewardIndex of
// [minBinID, maxBinID].
func (p *DynamicPosition) ClaimReward(rewardIndex int, minBinID, maxBinID int32) (uint64, error) {
	total, err := p.GetTotalReward(rewardIndex, minBinID, maxBinID)
	if err != nil {
		return 0, err
	}
	return total, p.ResetAllPendingReward(rewardIndex, minBinID, maxBinID)
}

// AccumulateTotalClaimedFees wraps on overflow, the totals are informational.
func (p *DynamicPosition) AccumulateTotalClaimedFees(feeX, feeY uint64) {
	p.Global.TotalClaimedFeeXAmount += feeX
	p.Global.TotalClaimedFeeYAmount += feeY
}

func (p *DynamicPosition) AccumulateTotalClaimedRewards(rewardIndex int, reward uint64) error {
	if err := checkRewardIndex(rewardIndex); err != nil {
		return err
	}
	p.Global.TotalClaimedRewards[rewardIndex] += reward
	return nil
}

// IsEmpty reports whether [minBinID, maxBinID] holds no share, fee or reward.
func (p *DynamicPosition) IsEmpty(minBinID, maxBinID int32) (bool, error) {
	if err := p.assertRange(minBinID, maxBinID); err != nil {
		return false, err
	}
	for id := minBinID; id <= maxBinID; id++ {
		if !p.Bins[id-p.Global.LowerBinID].IsEmpty() {
			return false, nil
		}
	}
	return true, nil
}

// UpdateEarningPerTokenStored moves the fee and reward growth of every bin in
// [minBinID, maxBinID] into the pending amounts of the position.
func (p *DynamicPosition) UpdateEarningPerTokenStored(m *BinArrayManager, minBinID, maxBinID int32) error {
	if err := p.assertRange(minBinID, maxBinID); err != nil {
		return err
	}
	for id := minBinID; id <= maxBinID; id++ {
		bin, err := m.GetBin(id)
		if err != nil {
			return err
		}
		d := &p.Bins[id-p.Global.LowerBinID]
		if err := d.UpdateRewardPerTokenStored(bin); err != nil {
			return fmt.Errorf("bin %d: %w", id, err)
		}
		if err := d.UpdateFeePerTokenStored(bin); err != nil {
			return fmt.Errorf("bin %d: %w", id, err)
		}
	}
	return nil
}

func (p *DynamicPosition) SetLastUpdatedAt(now int64) {
	p.Global.LastUpdatedAt = now
}

func (p *DynamicPosition) IsLiquidityLocked(currentSlot uint64) bool {
	return currentSlot < p.Global.LockReleaseSlot
}

func (p *DynamicPosition) IsSubjectedToInitialLiquidityLocking() bool {
	return p.Global.SubjectedToBootstrapLiquidityLocking != 0
}

// GetBinArrayIndexesBound returns the first and last bin array the position
// touches.
func (p *DynamicPosition) GetBinArrayIndexesBound() (int32, int32) {
	return BinIDToBinArrayIndex(p.Global.LowerBinID), BinIDToBinArrayIndex(p.Global.UpperBinID)
}

// GetBinArrayKeysCoverage lists the bin arrays of the position, ascending.
func (p *DynamicPosition) GetBinArrayKeysCoverage() []solana.PublicKey {
	lower, upper := p.GetBinArrayIndexesBound()
	keys := make([]solana.PublicKey, 0, upper-lower+1)
	for i := lower; i <= upper; i++ {
		keys = append(keys, DeriveBinArray(p.Global.LbPair, int64(i)))
	}
	return keys
}

// MigrateFromV1 copies a legacy position. Its shares were unscaled u64 and
// become Q64.64.
func (p *DynamicPosition) MigrateFromV1(old *Position) error {
	width := int(int64(old.UpperBinID) - int64(old.LowerBinID) + 1)
	if width <= 0 || width > len(old.LiquidityShares) {
		return fmt.Errorf("legacy bins [%d, %d]: %w", old.LowerBinID, old.UpperBinID, shared.ErrInvalidPosition)
	}

	p.Global.LbPair = old.LbPair
	p.Global.Owner = old.Owner
	p.Global.LowerBinID = old.LowerBinID
	p.Global.UpperBinID = old.UpperBinID
	p.Global.LastUpdatedAt = old.LastUpdatedAt
	p.Global.TotalClaimedFeeXAmount = old.TotalClaimedFeeXAmount
	p.Global.TotalClaimedFeeYAmount = old.TotalClaimedFeeYAmount
	p.Global.TotalClaimedRewards = old.TotalClaimedRewards
	p.Global.Length = uint64(width)

	p.Bins = make([]PositionBinData, width)
	for i := range p.Bins {
		share := new(big.Int).Lsh(new(big.Int).SetUint64(old.LiquidityShares[i]), shared.ScaleOffset)
		p.Bins[i] = PositionBinData{
			LiquidityShare: u128.FromBig(share),
			RewardInfo:     old.RewardInfos[i],
			FeeInfo:        old.FeeInfos[i],
		}
	}
	return nil
}

// ClaimableFees is what ClaimFee over the whole position would pay after an
// earning update against m. Neither p nor m change.
func (p *DynamicPosition) ClaimableFees(m *BinArrayManager) (uint64, uint64, error) {
	c := p.Clone()
	if err := c.UpdateEarningPerTokenStored(m, c.Global.LowerBinID, c.Global.UpperBinID); err != nil {
		return 0, 0, err
	}
	return c.ClaimFee(c.Global.LowerBinID, c.Global.UpperBinID)
}

// ClaimableRewards accrues the pair rewards up to now on copies of pair and
// m, then sums the pending rewards of the position.
func (p *DynamicPosition) ClaimableRewards(pair LbPair, m *BinArrayManager, now uint64) ([shared.NumRewards]uint64, error) {
	var out [shared.NumRewards]uint64
	arrays := m.Clone()
	if err := arrays.UpdateRewards(&pair, now); err != nil {
		return out, err
	}
	c := p.Clone()
	if err := c.UpdateEarningPerTokenStored(arrays, c.Global.LowerBinID, c.Global.UpperBinID); err != nil {
		return out, err
	}
	for i := range out {
		total, err := c.GetTotalReward(i, c.Global.LowerBinID, c.Global.UpperBinID)
		if err != nil {
			return out, err
		}
		out[i] = total
	}
	return out, nil
}

func (d *PositionBinData) IsEmpty() bool {
	if d.LiquidityShare.Lo != 0 || d.LiquidityShare.Hi != 0 {
		return false
	}
	if d.FeeInfo.FeeXPending != 0 || d.FeeInfo.FeeYPending != 0 {
		return false
	}
	for _, pending := range d.RewardInfo.RewardPendings {
		if pending != 0 {
			return false
		}
	}
	return true
}

// pendingSince returns (share >> 64) * (stored - complete) >> 64, rounded down.
func (d *PositionBinData) pendingSince(stored, complete *big.Int) (uint64, error) {
	share, err := dmath.ToU64(new(big.Int).Rsh(u128.ToBig(d.LiquidityShare), shared.ScaleOffset))
	if err != nil {
		return 0, err
	}
	growth, err := dmath.Sub128(stored, complete)
	if err != nil {
		return 0, err
	}
	v, err := dmath.MulShr(new(big.Int).SetUint64(share), growth, shared.ScaleOffset, shared.RoundingDown)
	if err != nil {
		return 0, err
	}
	return dmath.ToU64(v)
}

func (d *PositionBinData) UpdateFeePerTokenStored(bin *Bin) error {
	info := &d.FeeInfo

	newX, err := d.pendingSince(u128.ToBig(bin.FeeAmountXPerTokenStored), u128.ToBig(info.FeeXPerTokenComplete))
	if err != nil {
		return err
	}
	if info.FeeXPending, err = dmath.AddU64(info.FeeXPending, newX); err != nil {
		return err
	}
	info.FeeXPerTokenComplete = bin.FeeAmountXPerTokenStored

	newY, err := d.pendingSince(u128.ToBig(bin.FeeAmountYPerTokenStored), u128.ToBig(info.FeeYPerTokenComplete))
	if err != nil {
		return err
	}
	if info.FeeYPending, err = dmath.AddU64(info.FeeYPending, newY); err != nil {
		return err
	}
	info.FeeYPerTokenComplete = bin.FeeAmountYPerTokenStored
	return nil
}

func (d *PositionBinData) UpdateRewardPerTokenStored(bin *Bin) error {
	info := &d.RewardInfo
	for i := range info.RewardPendings {
		reward, err := d.pendingSince(u128.ToBig(bin.RewardPerTokenStored[i]), u128.ToBig(info.RewardPerTokenCompletes[i]))
		if err != nil {
			return err
		}
		if info.RewardPendings[i], err = dmath.AddU64(info.RewardPendings[i], reward); err != nil {
			return err
		}
		info.RewardPerTokenCompletes[i] = bin.RewardPerTokenStored[i]
	}
	return nil
}
