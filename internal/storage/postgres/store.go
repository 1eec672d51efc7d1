package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krazyTry/meteora-dlmm-go/internal/storage"
)

const Schema = `
CREATE TABLE IF NOT EXISTS dlmm_quotes (
	id            BIGSERIAL PRIMARY KEY,
	quoted_at     TIMESTAMPTZ NOT NULL,
	pair          TEXT NOT NULL,
	slot          NUMERIC(20) NOT NULL,
	swap_for_y    BOOLEAN NOT NULL,
	exact_out     BOOLEAN NOT NULL,
	amount        NUMERIC(20) NOT NULL,
	amount_in     NUMERIC(20) NOT NULL,
	amount_out    NUMERIC(20) NOT NULL,
	fee           NUMERIC(20) NOT NULL,
	protocol_fee  NUMERIC(20) NOT NULL,
	host_fee      NUMERIC(20) NOT NULL,
	min_out       NUMERIC(20) NOT NULL,
	max_in        NUMERIC(20) NOT NULL,
	start_bin_id  INTEGER NOT NULL,
	end_bin_id    INTEGER NOT NULL,
	stop_reason   TEXT NOT NULL,
	price_impact  NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS dlmm_quotes_pair_time ON dlmm_quotes (pair, quoted_at);
`

// Store provides Postgres persistence for quotes.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Sink = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// PutQuotes inserts records in one batch.
func (s *Store) PutQuotes(ctx context.Context, records []storage.QuoteRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO dlmm_quotes (
				quoted_at, pair, slot, swap_for_y, exact_out, amount, amount_in, amount_out,
				fee, protocol_fee, host_fee, min_out, max_in, start_bin_id, end_bin_id,
				stop_reason, price_impact
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`,
			r.QuotedAt,
			r.Pair,
			r.Slot,
			r.SwapForY,
			r.ExactOut,
			r.Amount,
			r.AmountIn,
			r.AmountOut,
			r.Fee,
			r.ProtocolFee,
			r.HostFee,
			r.MinOut,
			r.MaxIn,
			r.StartBinID,
			r.EndBinID,
			r.StopReason,
			r.PriceImpact,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
