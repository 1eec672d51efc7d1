package main

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

type pairOutput struct {
	Address         string          `json:"address"`
	TokenXMint      string          `json:"tokenXMint"`
	TokenYMint      string          `json:"tokenYMint"`
	BinStep         uint16          `json:"binStep"`
	ActiveID        int32           `json:"activeId"`
	Status          uint8           `json:"status"`
	ActivationType  uint8           `json:"activationType"`
	ActivationPoint uint64          `json:"activationPoint"`
	BaseFeePct      decimal.Decimal `json:"baseFeePct"`
	TotalFeePct     decimal.Decimal `json:"totalFeePct"`
	ReserveX        uint64          `json:"reserveX,omitempty"`
	ReserveY        uint64          `json:"reserveY,omitempty"`
	ActivePrice     decimal.Decimal `json:"activePrice"`
	ActiveAmountX   uint64          `json:"activeAmountX,omitempty"`
	ActiveAmountY   uint64          `json:"activeAmountY,omitempty"`
}

// feePct converts a fee rate in FeePrecision units to percent.
func feePct(rate uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(rate), 0).Div(decimal.NewFromInt(shared.FeePrecision / 100))
}

func newPairOutput(pair *dlmm.LbPair) (*pairOutput, error) {
	baseFee, err := pair.GetBaseFee()
	if err != nil {
		return nil, err
	}
	totalFee, err := pair.GetTotalFee()
	if err != nil {
		return nil, err
	}
	return &pairOutput{
		Address:         pair.Address.String(),
		TokenXMint:      pair.TokenXMint.String(),
		TokenYMint:      pair.TokenYMint.String(),
		BinStep:         pair.BinStep,
		ActiveID:        pair.ActiveID,
		Status:          pair.Status,
		ActivationType:  pair.ActivationType,
		ActivationPoint: pair.ActivationPoint,
		BaseFeePct:      feePct(baseFee.Uint64()),
		TotalFeePct:     feePct(totalFee),
	}, nil
}

func newPairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Show a pair with its reserves and active bin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			address, err := pairFlag(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			pair, err := rt.client.FetchLbPair(ctx, address)
			if err != nil {
				return err
			}
			out, err := newPairOutput(pair)
			if err != nil {
				return err
			}
			if out.ReserveX, out.ReserveY, err = rt.client.FetchReserves(ctx, pair); err != nil {
				return err
			}
			active, err := rt.client.GetActiveBin(ctx, address)
			if err != nil {
				return err
			}
			out.ActivePrice = active.PricePerToken
			out.ActiveAmountX, out.ActiveAmountY = active.AmountX, active.AmountY
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("pair", "", "lb pair address")
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}

func newPairsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List the pairs of two mints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			mintA, err := keyFlag(cmd, "mint-a")
			if err != nil {
				return err
			}
			mintB, err := keyFlag(cmd, "mint-b")
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			pairs, err := rt.client.FetchLbPairsByMints(ctx, mintA, mintB)
			if err != nil {
				return err
			}
			outs := make([]*pairOutput, 0, len(pairs))
			for _, pair := range pairs {
				out, err := newPairOutput(pair)
				if err != nil {
					return err
				}
				outs = append(outs, out)
			}
			return printJSON(cmd.OutOrStdout(), outs)
		},
	}
	cmd.Flags().String("mint-a", "", "first token mint")
	cmd.Flags().String("mint-b", "", "second token mint")
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired("mint-a")
	_ = cmd.MarkFlagRequired("mint-b")
	return cmd
}

type binArrayOutput struct {
	Index   int64  `json:"index"`
	Address string `json:"address"`
	Loaded  bool   `json:"loaded"`
}

func newBinArraysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bin-arrays",
		Short: "List the bin arrays a swap would cross",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			address, err := pairFlag(cmd)
			if err != nil {
				return err
			}
			swapForY, _ := cmd.Flags().GetBool("swap-for-y")
			ctx, stop := signalContext()
			defer stop()

			outs, err := swapBinArrays(ctx, rt.client, address, swapForY, rt.cfg.BinArrayCount)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), outs)
		},
	}
	cmd.Flags().String("pair", "", "lb pair address")
	cmd.Flags().Bool("swap-for-y", true, "swap X for Y")
	cmd.Flags().Int("bin-array-count", 3, "bin arrays to list")
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}

func swapBinArrays(ctx context.Context, client *dlmm.DLMM, address solana.PublicKey, swapForY bool, count int) ([]binArrayOutput, error) {
	pair, err := client.FetchLbPair(ctx, address)
	if err != nil {
		return nil, err
	}
	ext, err := client.FetchBinArrayBitmapExtension(ctx, address)
	if err != nil {
		return nil, err
	}
	indexes, err := lb_clmm.GetBinArrayIndexesForSwap(pair.LbPair, ext, swapForY, count)
	if err != nil {
		return nil, err
	}
	wide := make([]int64, len(indexes))
	for i, index := range indexes {
		wide[i] = int64(index)
	}
	arrays, err := client.FetchBinArrays(ctx, address, wide)
	if err != nil {
		return nil, err
	}

	outs := make([]binArrayOutput, len(wide))
	for i, index := range wide {
		_, loaded := arrays.Get(index)
		outs[i] = binArrayOutput{Index: index, Address: lb_clmm.DeriveBinArray(address, index).String(), Loaded: loaded}
	}
	return outs, nil
}

type positionOutput struct {
	Address    string    `json:"address"`
	Owner      string    `json:"owner"`
	LowerBinID int32     `json:"lowerBinId"`
	UpperBinID int32     `json:"upperBinId"`
	FeeX       uint64    `json:"feeX"`
	FeeY       uint64    `json:"feeY"`
	Rewards    [2]uint64 `json:"rewards"`
}

func newPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List an owner's positions in a pair with claimable fees and rewards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			address, err := pairFlag(cmd)
			if err != nil {
				return err
			}
			owner, err := keyFlag(cmd, "owner")
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			infos, err := rt.client.GetPositionsByUserAndPair(ctx, owner, address)
			if err != nil {
				return err
			}
			outs := make([]positionOutput, len(infos))
			for i, info := range infos {
				outs[i] = positionOutput{
					Address:    info.Address.String(),
					Owner:      info.Global.Owner.String(),
					LowerBinID: info.Global.LowerBinID,
					UpperBinID: info.Global.UpperBinID,
					FeeX:       info.FeeX,
					FeeY:       info.FeeY,
					Rewards:    info.Rewards,
				}
			}
			return printJSON(cmd.OutOrStdout(), outs)
		},
	}
	cmd.Flags().String("pair", "", "lb pair address")
	cmd.Flags().String("owner", "", "position owner")
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired("pair")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
