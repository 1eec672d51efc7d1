package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/krazyTry/meteora-dlmm-go/decimal_math"
	dmath "github.com/krazyTry/meteora-dlmm-go/dlmm/math"
)

type priceOutput struct {
	BinStep       uint16          `json:"binStep"`
	BinID         int32           `json:"binId"`
	PriceQ64      string          `json:"priceQ64"`
	Price         decimal.Decimal `json:"price"`
	PricePerToken decimal.Decimal `json:"pricePerToken"`
}

func newPriceOutput(binStep uint16, id int32, decimalsX, decimalsY uint8) (*priceOutput, error) {
	price, err := dmath.GetPriceFromID(id, binStep)
	if err != nil {
		return nil, err
	}
	return &priceOutput{
		BinStep:       binStep,
		BinID:         id,
		PriceQ64:      price.String(),
		Price:         decimal_math.FromQ64(price),
		PricePerToken: decimal_math.PricePerToken(price, decimalsX, decimalsY),
	}, nil
}

func addDecimalsFlags(cmd *cobra.Command) {
	cmd.Flags().Uint8("decimals-x", 0, "token X decimals")
	cmd.Flags().Uint8("decimals-y", 0, "token Y decimals")
}

func getDecimals(cmd *cobra.Command) (uint8, uint8) {
	x, _ := cmd.Flags().GetUint8("decimals-x")
	y, _ := cmd.Flags().GetUint8("decimals-y")
	return x, y
}

func newPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Print the price of a bin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			binStep, _ := cmd.Flags().GetUint16("bin-step")
			id, _ := cmd.Flags().GetInt32("id")
			decimalsX, decimalsY := getDecimals(cmd)

			out, err := newPriceOutput(binStep, id, decimalsX, decimalsY)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Uint16("bin-step", 0, "bin step in basis points")
	cmd.Flags().Int32("id", 0, "bin id")
	addDecimalsFlags(cmd)
	_ = cmd.MarkFlagRequired("bin-step")
	return cmd
}

func newBinIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bin-id",
		Short: "Find the bin of a per-token price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			binStep, _ := cmd.Flags().GetUint16("bin-step")
			roundDown, _ := cmd.Flags().GetBool("round-down")
			decimalsX, decimalsY := getDecimals(cmd)

			raw, _ := cmd.Flags().GetString("price")
			ui, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("price %q: %w", raw, err)
			}
			price, err := decimal_math.PricePerLamport(ui, decimalsX, decimalsY)
			if err != nil {
				return err
			}
			id, err := dmath.GetIDFromPrice(price, binStep, roundDown)
			if err != nil {
				return err
			}

			out, err := newPriceOutput(binStep, id, decimalsX, decimalsY)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Uint16("bin-step", 0, "bin step in basis points")
	cmd.Flags().String("price", "", "price of one X token in Y tokens")
	cmd.Flags().Bool("round-down", true, "pick the highest bin at or below the price")
	addDecimalsFlags(cmd)
	_ = cmd.MarkFlagRequired("bin-step")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}
