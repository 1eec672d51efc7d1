package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
	"github.com/krazyTry/meteora-dlmm-go/internal/snapshot"
	"github.com/krazyTry/meteora-dlmm-go/internal/storage"
)

type quoteOutput struct {
	Pair         string          `json:"pair"`
	Slot         uint64          `json:"slot"`
	AmountIn     uint64          `json:"amountIn"`
	AmountOut    uint64          `json:"amountOut"`
	TransferFee  [2]uint64       `json:"transferFee"`
	Fee          uint64          `json:"fee"`
	ProtocolFee  uint64          `json:"protocolFee"`
	HostFee      uint64          `json:"hostFee"`
	MinOut       uint64          `json:"minOut"`
	MaxIn        uint64          `json:"maxIn"`
	StartBinID   int32           `json:"startBinId"`
	EndBinID     int32           `json:"endBinId"`
	Filled       bool            `json:"filled"`
	StopReason   string          `json:"stopReason"`
	SpotPrice    decimal.Decimal `json:"spotPrice"`
	PriceImpact  decimal.Decimal `json:"priceImpact"`
	BinArrays    []string        `json:"binArrays"`
	FromSnapshot bool            `json:"fromSnapshot,omitempty"`
}

func newQuoteOutput(q *dlmm.SwapQuote, slot uint64) *quoteOutput {
	out := &quoteOutput{
		Pair:        q.Pair.String(),
		Slot:        slot,
		AmountIn:    q.ConsumedInAmount,
		AmountOut:   q.ReceivedOutAmount,
		TransferFee: [2]uint64{q.TransferFeeIn, q.TransferFeeOut},
		Fee:         q.Fee,
		ProtocolFee: q.ProtocolFeeAfterHostFee,
		HostFee:     q.HostFee,
		MinOut:      q.MinOutAmount,
		MaxIn:       q.MaxInAmount,
		StartBinID:  q.StartBinID,
		EndBinID:    q.EndBinID,
		Filled:      q.Filled(),
		StopReason:  q.StopReason.String(),
		SpotPrice:   q.SpotPrice,
		PriceImpact: q.PriceImpact,
	}
	for _, key := range q.BinArrays {
		out.BinArrays = append(out.BinArrays, key.String())
	}
	return out
}

func quoteRequestFromFlags(cmd *cobra.Command, binArrayCount int) (dlmm.QuoteRequest, error) {
	amount, _ := cmd.Flags().GetUint64("amount")
	if amount == 0 {
		return dlmm.QuoteRequest{}, errors.New("amount must be positive")
	}
	req := dlmm.QuoteRequest{Amount: amount, BinArrayCount: binArrayCount}
	req.SwapForY, _ = cmd.Flags().GetBool("swap-for-y")
	req.ExactOut, _ = cmd.Flags().GetBool("exact-out")
	req.SlippageBps, _ = cmd.Flags().GetUint16("slippage-bps")
	req.MaxIterations, _ = cmd.Flags().GetInt("max-iterations")
	if cmd.Flags().Changed("host-fee-bps") {
		hostFee, _ := cmd.Flags().GetUint16("host-fee-bps")
		req.HostFeeBps = &hostFee
	}
	return req, nil
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a live pair or a snapshot",
		RunE:  runQuote,
	}
	cmd.Flags().String("pair", "", "lb pair address")
	cmd.Flags().String("snapshot", "", "quote offline against a snapshot file")
	cmd.Flags().Uint64("amount", 0, "input amount, or output amount with --exact-out")
	cmd.Flags().Bool("swap-for-y", true, "swap X for Y")
	cmd.Flags().Bool("exact-out", false, "amount is the wanted output")
	cmd.Flags().Uint16("slippage-bps", 50, "slippage tolerance in basis points")
	cmd.Flags().Uint16("host-fee-bps", 0, "host fee share of the protocol fee")
	cmd.Flags().Int("max-iterations", 0, "bin crossing limit, 0 for the default")
	cmd.Flags().Int("bin-array-count", 3, "bin arrays fetched in the swap direction")
	cmd.Flags().String("out", "./data/quotes.jsonl", "quote JSONL log, empty to disable")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the quote log")
	cmd.Flags().String("sqlite", "", "SQLite file for the quote log")
	addClientFlags(cmd)
	cmd.MarkFlagsOneRequired("pair", "snapshot")
	cmd.MarkFlagsMutuallyExclusive("pair", "snapshot")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	req, err := quoteRequestFromFlags(cmd, rt.cfg.BinArrayCount)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var (
		quote *dlmm.SwapQuote
		slot  uint64
	)
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	if snapshotPath != "" {
		loaded, err := snapshot.ReadFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		slot = loaded.Clock.Slot
		if quote, err = dlmm.QuoteFromState(loaded.State, req, slot, loaded.Clock.UnixTimestamp); err != nil {
			return err
		}
	} else {
		pair, err := pairFlag(cmd)
		if err != nil {
			return err
		}
		clock, err := rt.client.GetClock(ctx)
		if err != nil {
			return err
		}
		state, err := rt.client.FetchPoolState(ctx, pair, req.SwapForY, req.BinArrayCount, clock.Epoch)
		if err != nil {
			return err
		}
		slot = clock.Slot
		if quote, err = dlmm.QuoteFromState(state, req, slot, clock.UnixTimestamp); err != nil {
			return err
		}
	}

	rt.logger.Info("quote",
		zap.Stringer("pair", quote.Pair),
		zap.Uint64("slot", slot),
		zap.Uint64("amount_in", quote.ConsumedInAmount),
		zap.Uint64("amount_out", quote.ReceivedOutAmount),
		zap.Stringer("stop", quote.StopReason),
	)

	sinks, err := rt.openSinks(ctx)
	if err != nil {
		return err
	}
	defer sinks.Close()
	record := storage.NewQuoteRecord(quote, req, slot, time.Now())
	if err := sinks.PutQuotes(ctx, []storage.QuoteRecord{record}); err != nil {
		return fmt.Errorf("store quote: %w", err)
	}

	out := newQuoteOutput(quote, slot)
	out.FromSnapshot = snapshotPath != ""
	return printJSON(cmd.OutOrStdout(), out)
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the accounts a quote reads for offline replay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			pair, err := pairFlag(cmd)
			if err != nil {
				return err
			}
			swapForY, _ := cmd.Flags().GetBool("swap-for-y")
			path, _ := cmd.Flags().GetString("file")

			ctx, stop := signalContext()
			defer stop()

			clock, err := rt.client.GetClock(ctx)
			if err != nil {
				return err
			}
			state, err := rt.client.FetchPoolState(ctx, pair, swapForY, rt.cfg.BinArrayCount, clock.Epoch)
			if err != nil {
				return err
			}
			snap, err := snapshot.FromState(state, snapshot.Clock{Slot: clock.Slot, UnixTimestamp: clock.UnixTimestamp})
			if err != nil {
				return err
			}
			if err := snap.WriteFile(path); err != nil {
				return err
			}
			rt.logger.Info("snapshot saved",
				zap.Stringer("pair", pair),
				zap.String("file", path),
				zap.Int("accounts", len(snap.Accounts)),
				zap.Uint64("slot", clock.Slot),
			)
			return nil
		},
	}
	cmd.Flags().String("pair", "", "lb pair address")
	cmd.Flags().String("file", "./data/snapshot.json", "snapshot output file")
	cmd.Flags().Bool("swap-for-y", true, "fetch bin arrays for swapping X for Y")
	cmd.Flags().Int("bin-array-count", 3, "bin arrays fetched in the swap direction")
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}

func pairFlag(cmd *cobra.Command) (solana.PublicKey, error) {
	return keyFlag(cmd, "pair")
}

func keyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	raw, _ := cmd.Flags().GetString(name)
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s %q: %w", name, raw, err)
	}
	return key, nil
}
