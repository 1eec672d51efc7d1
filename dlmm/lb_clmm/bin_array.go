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

// BinIDToBinArrayIndex returns floor(binID / 70).
func BinIDToBinArrayIndex(binID int32) int32 {
	idx, rem := binID/shared.MaxBinPerArray, binID%shared.MaxBinPerArray
	if binID < 0 && rem != 0 {
		idx--
	}
	return idx
}

// GetBinArrayLowerUpperBinID returns the first and last bin id of the array.
func GetBinArrayLowerUpperBinID(index int32) (int32, int32, error) {
	lower := int64(index) * shared.MaxBinPerArray
	upper := lower + shared.MaxBinPerArray - 1
	if lower < -1<<31 || upper > 1<<31-1 {
		return 0, 0, fmt.Errorf("bin array %d: %w", index, shared.ErrOverflow)
	}
	return int32(lower), int32(upper), nil
}

// CheckValidIndex rejects bin arrays reaching outside [MinBinID, MaxBinID].
func CheckValidIndex(index int32) error {
	lower, upper, err := GetBinArrayLowerUpperBinID(index)
	if err != nil {
		return err
	}
	if lower < shared.MinBinID || upper > shared.MaxBinID {
		return fmt.Errorf("bin array %d: %w", index, shared.ErrInvalidStartBinIndex)
	}
	return nil
}

func (a *BinArray) Initialize(index int64, lbPair solana.PublicKey) error {
	if index < -1<<31 || index > 1<<31-1 {
		return fmt.Errorf("bin array %d: %w", index, shared.ErrInvalidStartBinIndex)
	}
	if err := CheckValidIndex(int32(index)); err != nil {
		return err
	}
	a.Index = index
	a.LbPair = lbPair
	a.Version = LayoutVersionV1
	a.Bins = [shared.MaxBinPerArray]Bin{}
	return nil
}

func (a *BinArray) IsZeroLiquidity() bool {
	for i := range a.Bins {
		if !a.Bins[i].IsZeroLiquidity() {
			return false
		}
	}
	return true
}

// MigrateToV2 upgrades a version 0 array, whose supplies were stored
// unscaled, to Q64.64 supplies.
func (a *BinArray) MigrateToV2() error {
	switch a.Version {
	case LayoutVersionV1:
		return nil
	case LayoutVersionV0:
	default:
		return fmt.Errorf("bin array version %d: %w", a.Version, shared.ErrSchemaMismatch)
	}

	shifted := make([]*big.Int, len(a.Bins))
	for i := range a.Bins {
		v := new(big.Int).Lsh(u128.ToBig(a.Bins[i].LiquiditySupply), shared.ScaleOffset)
		if !dmath.IsU128(v) {
			return fmt.Errorf("bin %d supply: %w", i, shared.ErrOverflow)
		}
		shifted[i] = v
	}
	for i := range a.Bins {
		a.Bins[i].LiquiditySupply = u128.FromBig(shifted[i])
	}
	a.Version = LayoutVersionV1
	return nil
}

func (a *BinArray) IsBinIDWithinRange(binID int32) error {
	lower, upper, err := GetBinArrayLowerUpperBinID(int32(a.Index))
	if err != nil {
		return err
	}
	if binID < lower || binID > upper {
		return fmt.Errorf("bin %d outside array %d: %w", binID, a.Index, shared.ErrInvalidBinID)
	}
	return nil
}

// GetBinIndexInArray returns the slot of binID. Slots ascend with the bin id
// on both sides of zero, bin -1 is the last slot of array -1.
func (a *BinArray) GetBinIndexInArray(binID int32) (int, error) {
	if err := a.IsBinIDWithinRange(binID); err != nil {
		return 0, err
	}
	lower, _, err := GetBinArrayLowerUpperBinID(int32(a.Index))
	if err != nil {
		return 0, err
	}
	return int(binID - lower), nil
}

// GetBin returns a pointer into the array.
func (a *BinArray) GetBin(binID int32) (*Bin, error) {
	i, err := a.GetBinIndexInArray(binID)
	if err != nil {
		return nil, err
	}
	return &a.Bins[i], nil
}

// UpdateAllRewards accrues every initialized reward of the pair into the
// active bin up to now. Time with an empty active bin is carried over in the
// reward info.
func (a *BinArray) UpdateAllRewards(pair *LbPair, now uint64) error {
	bin, err := a.GetBin(pair.ActiveID)
	if err != nil {
		return err
	}

	for i := range pair.RewardInfos {
		reward := &pair.RewardInfos[i]
		if !reward.Initialized() {
			continue
		}

		if !bin.IsZeroLiquidity() {
			supply, err := dmath.ToU64(new(big.Int).Rsh(u128.ToBig(bin.LiquiditySupply), shared.ScaleOffset))
			if err != nil {
				return err
			}
			delta, err := reward.CalculateRewardPerTokenStoredSinceLastUpdate(now, supply)
			if err != nil {
				return err
			}
			stored, err := dmath.Add128(u128.ToBig(bin.RewardPerTokenStored[i]), delta)
			if err != nil {
				return err
			}
			bin.RewardPerTokenStored[i] = u128.FromBig(stored)
		} else {
			elapsed, err := reward.GetSecondsElapsedSinceLastUpdate(now)
			if err != nil {
				return err
			}
			if reward.CumulativeSecondsWithEmptyLiquidityReward, err = dmath.AddU64(reward.CumulativeSecondsWithEmptyLiquidityReward, elapsed); err != nil {
				return err
			}
		}
		reward.UpdateLastUpdateTime(now)
	}
	return nil
}

// BinArrayManager resolves bins over a set of bin arrays keyed by index.
type BinArrayManager struct {
	arrays map[int64]*BinArray
}

func NewBinArrayManager(arrays ...*BinArray) *BinArrayManager {
	m := &BinArrayManager{arrays: make(map[int64]*BinArray, len(arrays))}
	for _, a := range arrays {
		m.arrays[a.Index] = a
	}
	return m
}

func (m *BinArrayManager) Get(index int64) (*BinArray, bool) {
	a, ok := m.arrays[index]
	return a, ok
}

func (m *BinArrayManager) GetBin(binID int32) (*Bin, error) {
	a, ok := m.arrays[int64(BinIDToBinArrayIndex(binID))]
	if !ok {
		return nil, fmt.Errorf("bin %d: %w", binID, shared.ErrBinArrayNotFound)
	}
	return a.GetBin(binID)
}

// UpdateRewards accrues rewards into the active bin if its array is held.
func (m *BinArrayManager) UpdateRewards(pair *LbPair, now uint64) error {
	a, ok := m.arrays[int64(BinIDToBinArrayIndex(pair.ActiveID))]
	if !ok {
		return nil
	}
	return a.UpdateAllRewards(pair, now)
}

func (m *BinArrayManager) MigrateToV2() error {
	for _, a := range m.arrays {
		if err := a.MigrateToV2(); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep copies the held arrays.
func (m *BinArrayManager) Clone() *BinArrayManager {
	out := &BinArrayManager{arrays: make(map[int64]*BinArray, len(m.arrays))}
	for index, a := range m.arrays {
		c := *a
		out.arrays[index] = &c
	}
	return out
}

// Indexes returns the held array indexes in ascending order.
func (m *BinArrayManager) Indexes() []int64 {
	out := make([]int64, 0, len(m.arrays))
	for index := range m.arrays {
		out = append(out, index)
	}
	slices.Sort(out)
	return out
}
