package storage

import (
	"context"
	"errors"
	"time"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
)

// QuoteRecord is one quote as persisted by a sink.
type QuoteRecord struct {
	QuotedAt    time.Time `json:"quotedAt"`
	Pair        string    `json:"pair"`
	Slot        uint64    `json:"slot"`
	SwapForY    bool      `json:"swapForY"`
	ExactOut    bool      `json:"exactOut"`
	Amount      uint64    `json:"amount"`
	AmountIn    uint64    `json:"amountIn"`
	AmountOut   uint64    `json:"amountOut"`
	Fee         uint64    `json:"fee"`
	ProtocolFee uint64    `json:"protocolFee"`
	HostFee     uint64    `json:"hostFee"`
	MinOut      uint64    `json:"minOut"`
	MaxIn       uint64    `json:"maxIn"`
	StartBinID  int32     `json:"startBinId"`
	EndBinID    int32     `json:"endBinId"`
	StopReason  string    `json:"stopReason"`
	PriceImpact string    `json:"priceImpact"`
}

func NewQuoteRecord(q *dlmm.SwapQuote, req dlmm.QuoteRequest, slot uint64, at time.Time) QuoteRecord {
	return QuoteRecord{
		QuotedAt:    at.UTC(),
		Pair:        q.Pair.String(),
		Slot:        slot,
		SwapForY:    req.SwapForY,
		ExactOut:    req.ExactOut,
		Amount:      req.Amount,
		AmountIn:    q.ConsumedInAmount,
		AmountOut:   q.ReceivedOutAmount,
		Fee:         q.Fee,
		ProtocolFee: q.ProtocolFeeAfterHostFee,
		HostFee:     q.HostFee,
		MinOut:      q.MinOutAmount,
		MaxIn:       q.MaxInAmount,
		StartBinID:  q.StartBinID,
		EndBinID:    q.EndBinID,
		StopReason:  q.StopReason.String(),
		PriceImpact: q.PriceImpact.String(),
	}
}

// Sink persists quote records.
type Sink interface {
	PutQuotes(ctx context.Context, records []QuoteRecord) error
	Close() error
}

// Multi writes to every sink in order and returns the joined errors.
type Multi []Sink

func (m Multi) PutQuotes(ctx context.Context, records []QuoteRecord) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PutQuotes(ctx, records))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
