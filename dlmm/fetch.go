package dlmm

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	dlmmidl "github.com/krazyTry/meteora-dlmm-go/gen/dlmm"
	solanago "github.com/krazyTry/meteora-dlmm-go/solana"
	"github.com/krazyTry/meteora-dlmm-go/solana/token2022"
)

// LbPair is a decoded pair with its address.
type LbPair struct {
	*lb_clmm.LbPair
	Address solana.PublicKey
}

// Position is a decoded position with its address. Legacy positions are
// migrated to the dynamic layout on load.
type Position struct {
	*lb_clmm.DynamicPosition
	Address solana.PublicKey
}

// PoolState is everything a quote reads. Transfer fees are nil for mints
// without one.
type PoolState struct {
	Address      solana.PublicKey
	Pair         *lb_clmm.LbPair
	Extension    *lb_clmm.BinArrayBitmapExtension
	BinArrays    *lb_clmm.BinArrayManager
	TransferFeeX *token2022.TransferFee
	TransferFeeY *token2022.TransferFee
}

var (
	positionLbPairOffset = solanago.ComputeStructOffset(new(lb_clmm.PositionV3), "LbPair")
	positionOwnerOffset  = solanago.ComputeStructOffset(new(lb_clmm.PositionV3), "Owner")
	pairTokenXMintOffset = solanago.ComputeStructOffset(new(lb_clmm.LbPair), "TokenXMint")
	pairTokenYMintOffset = solanago.ComputeStructOffset(new(lb_clmm.LbPair), "TokenYMint")
)

// getAccount returns the account data, or nil when it does not exist.
func (m *DLMM) getAccount(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	var data []byte
	err := m.withRetry(ctx, "getAccountInfo", func(ctx context.Context) error {
		out, err := solanago.GetAccountInfo(ctx, m.rpcClient, address, m.commitment)
		if err != nil {
			return err
		}
		data = out.GetBinary()
		return nil
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	return data, nil
}

func (m *DLMM) getMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([]*rpc.Account, error) {
	var outs []*rpc.Account
	err := m.withRetry(ctx, "getMultipleAccounts", func(ctx context.Context) error {
		var err error
		outs, err = solanago.GetMultipleAccountInfo(ctx, m.rpcClient, addresses, m.commitment)
		return err
	})
	return outs, err
}

func (m *DLMM) getProgramAccounts(ctx context.Context, opt *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	var outs rpc.GetProgramAccountsResult
	err := m.withRetry(ctx, "getProgramAccounts", func(ctx context.Context) error {
		var err error
		outs, err = m.rpcClient.GetProgramAccountsWithOpts(ctx, dlmmidl.ProgramID, opt)
		return err
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	return outs, err
}

func (m *DLMM) FetchLbPair(ctx context.Context, address solana.PublicKey) (*LbPair, error) {
	data, err := m.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("lb pair %s: %w", address, ErrAccountNotFound)
	}
	pair, err := lb_clmm.DecodeLbPair(data)
	if err != nil {
		return nil, fmt.Errorf("lb pair %s: %w", address, err)
	}
	return &LbPair{pair, address}, nil
}

// FetchBinArrayBitmapExtension returns nil when the pair has no extension.
func (m *DLMM) FetchBinArrayBitmapExtension(ctx context.Context, lbPair solana.PublicKey) (*lb_clmm.BinArrayBitmapExtension, error) {
	address := lb_clmm.DeriveBinArrayBitmapExtension(lbPair)
	data, err := m.getAccount(ctx, address)
	if err != nil || data == nil {
		return nil, err
	}
	ext, err := lb_clmm.DecodeBinArrayBitmapExtension(data)
	if err != nil {
		return nil, fmt.Errorf("bitmap extension %s: %w", address, err)
	}
	return ext, nil
}

// FetchBinArrays loads the bin arrays of lbPair at indexes. Arrays that do
// not exist are left out of the manager.
func (m *DLMM) FetchBinArrays(ctx context.Context, lbPair solana.PublicKey, indexes []int64) (*lb_clmm.BinArrayManager, error) {
	keys := make([]solana.PublicKey, len(indexes))
	for i, index := range indexes {
		keys[i] = lb_clmm.DeriveBinArray(lbPair, index)
	}
	outs, err := m.getMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("bin arrays of %s: %w", lbPair, err)
	}

	arrays := make([]*lb_clmm.BinArray, 0, len(outs))
	for i, out := range outs {
		if out == nil {
			m.logger.Debug("bin array missing", zap.Stringer("pair", lbPair), zap.Int64("index", indexes[i]))
			continue
		}
		array, err := lb_clmm.DecodeBinArray(out.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("bin array %d of %s: %w", indexes[i], lbPair, err)
		}
		arrays = append(arrays, array)
	}

	manager := lb_clmm.NewBinArrayManager(arrays...)
	if err := manager.MigrateToV2(); err != nil {
		return nil, err
	}
	return manager, nil
}

// FetchTransferFees returns the token-2022 transfer fees of both pair mints
// in force at epoch.
func (m *DLMM) FetchTransferFees(ctx context.Context, pair *lb_clmm.LbPair, epoch uint64) (*token2022.TransferFee, *token2022.TransferFee, error) {
	outs, err := m.getMultipleAccounts(ctx, []solana.PublicKey{pair.TokenXMint, pair.TokenYMint})
	if err != nil {
		return nil, nil, fmt.Errorf("pair mints: %w", err)
	}
	var fees [2]*token2022.TransferFee
	for i, out := range outs {
		if out == nil {
			return nil, nil, fmt.Errorf("mint %d: %w", i, ErrAccountNotFound)
		}
		mint, err := solanago.DecodeMint(out.Owner, out.Data.GetBinary())
		if err != nil {
			return nil, nil, fmt.Errorf("mint %d: %w", i, err)
		}
		fees[i] = mint.TransferFee.EpochFee(epoch)
	}
	return fees[0], fees[1], nil
}

// FetchPoolState loads the pair, its extension, count bin arrays with
// liquidity in the swap direction and the mint transfer fees at epoch.
func (m *DLMM) FetchPoolState(ctx context.Context, lbPair solana.PublicKey, swapForY bool, count int, epoch uint64) (*PoolState, error) {
	pair, err := m.FetchLbPair(ctx, lbPair)
	if err != nil {
		return nil, err
	}
	ext, err := m.FetchBinArrayBitmapExtension(ctx, lbPair)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = shared.DefaultBinArrayCountForSwap
	}

	indexes, err := lb_clmm.GetBinArrayIndexesForSwap(pair.LbPair, ext, swapForY, count)
	if err != nil {
		return nil, err
	}
	wide := make([]int64, len(indexes))
	for i, index := range indexes {
		wide[i] = int64(index)
	}
	arrays, err := m.FetchBinArrays(ctx, lbPair, wide)
	if err != nil {
		return nil, err
	}
	feeX, feeY, err := m.FetchTransferFees(ctx, pair.LbPair, epoch)
	if err != nil {
		return nil, err
	}
	return &PoolState{
		Address:      lbPair,
		Pair:         pair.LbPair,
		Extension:    ext,
		BinArrays:    arrays,
		TransferFeeX: feeX,
		TransferFeeY: feeY,
	}, nil
}

func decodePosition(address solana.PublicKey, data []byte) (*Position, error) {
	obj, err := lb_clmm.ParseAnyAccount(data)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", address, err)
	}
	switch p := obj.(type) {
	case *lb_clmm.DynamicPosition:
		return &Position{p, address}, nil
	case *lb_clmm.Position:
		migrated := new(lb_clmm.DynamicPosition)
		if err := migrated.MigrateFromV1(p); err != nil {
			return nil, fmt.Errorf("position %s: %w", address, err)
		}
		return &Position{migrated, address}, nil
	default:
		return nil, fmt.Errorf("position %s: %T: %w", address, obj, shared.ErrSchemaMismatch)
	}
}

func (m *DLMM) FetchPosition(ctx context.Context, address solana.PublicKey) (*Position, error) {
	data, err := m.getAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("position %s: %w", address, ErrAccountNotFound)
	}
	return decodePosition(address, data)
}

// FetchPositionsByUserAndPair lists the positions owner holds in lbPair,
// ordered by lower bin id.
func (m *DLMM) FetchPositionsByUserAndPair(ctx context.Context, owner, lbPair solana.PublicKey) ([]*Position, error) {
	opt := solanago.GenProgramAccountFilter(lb_clmm.AccountKeyPositionV3, m.commitment,
		solanago.Filter{Owner: lbPair, Offset: positionLbPairOffset},
		solanago.Filter{Owner: owner, Offset: positionOwnerOffset},
	)
	outs, err := m.getProgramAccounts(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("positions of %s in %s: %w", owner, lbPair, err)
	}

	positions := make([]*Position, 0, len(outs))
	for _, out := range outs {
		position, err := decodePosition(out.Pubkey, out.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	slices.SortFunc(positions, func(a, b *Position) int {
		return int(a.Global.LowerBinID) - int(b.Global.LowerBinID)
	})
	return positions, nil
}

// FetchLbPairsByMints lists the pairs of the two mints, in either order.
func (m *DLMM) FetchLbPairsByMints(ctx context.Context, mintA, mintB solana.PublicKey) ([]*LbPair, error) {
	var pairs []*LbPair
	for _, mints := range [][2]solana.PublicKey{{mintA, mintB}, {mintB, mintA}} {
		opt := solanago.GenProgramAccountFilter(lb_clmm.AccountKeyLbPair, m.commitment,
			solanago.Filter{Owner: mints[0], Offset: pairTokenXMintOffset},
			solanago.Filter{Owner: mints[1], Offset: pairTokenYMintOffset},
		)
		outs, err := m.getProgramAccounts(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("pairs of %s/%s: %w", mints[0], mints[1], err)
		}
		for _, out := range outs {
			pair, err := lb_clmm.DecodeLbPair(out.Account.Data.GetBinary())
			if err != nil {
				return nil, fmt.Errorf("lb pair %s: %w", out.Pubkey, err)
			}
			pairs = append(pairs, &LbPair{pair, out.Pubkey})
		}
		if mintA.Equals(mintB) {
			break
		}
	}
	return pairs, nil
}

// FetchReserves returns the token balances held by the pair reserves.
func (m *DLMM) FetchReserves(ctx context.Context, pair *LbPair) (uint64, uint64, error) {
	var accounts []*solanago.Account
	err := m.withRetry(ctx, "getTokenAccounts", func(ctx context.Context) error {
		var err error
		accounts, err = solanago.GetTokenAccounts(ctx, m.rpcClient, m.commitment, pair.ReserveX, pair.ReserveY)
		return err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("reserves of %s: %w", pair.Address, err)
	}
	if accounts[0] == nil || accounts[1] == nil {
		return 0, 0, fmt.Errorf("reserves of %s: %w", pair.Address, ErrAccountNotFound)
	}
	return accounts[0].Amount, accounts[1].Amount, nil
}
