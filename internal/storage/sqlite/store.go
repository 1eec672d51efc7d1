package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/krazyTry/meteora-dlmm-go/internal/storage"
)

// amounts are TEXT: database/sql rejects uint64 values above MaxInt64.
const schema = `
CREATE TABLE IF NOT EXISTS dlmm_quotes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	quoted_at     TEXT NOT NULL,
	pair          TEXT NOT NULL,
	slot          TEXT NOT NULL,
	swap_for_y    INTEGER NOT NULL,
	exact_out     INTEGER NOT NULL,
	amount        TEXT NOT NULL,
	amount_in     TEXT NOT NULL,
	amount_out    TEXT NOT NULL,
	fee           TEXT NOT NULL,
	protocol_fee  TEXT NOT NULL,
	host_fee      TEXT NOT NULL,
	min_out       TEXT NOT NULL,
	max_in        TEXT NOT NULL,
	start_bin_id  INTEGER NOT NULL,
	end_bin_id    INTEGER NOT NULL,
	stop_reason   TEXT NOT NULL,
	price_impact  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS dlmm_quotes_pair_time ON dlmm_quotes (pair, quoted_at);
`

const insertQuote = `
INSERT INTO dlmm_quotes (
	quoted_at, pair, slot, swap_for_y, exact_out, amount, amount_in, amount_out,
	fee, protocol_fee, host_fee, min_out, max_in, start_bin_id, end_bin_id,
	stop_reason, price_impact
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

// Store keeps quotes in a local SQLite file.
type Store struct {
	db *sql.DB
}

var _ storage.Sink = (*Store)(nil)

// Open opens or creates the database at path and its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// PutQuotes inserts records in one transaction.
func (s *Store) PutQuotes(ctx context.Context, records []storage.QuoteRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertQuote)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.QuotedAt.Format(time.RFC3339Nano),
			r.Pair,
			u64(r.Slot),
			r.SwapForY,
			r.ExactOut,
			u64(r.Amount),
			u64(r.AmountIn),
			u64(r.AmountOut),
			u64(r.Fee),
			u64(r.ProtocolFee),
			u64(r.HostFee),
			u64(r.MinOut),
			u64(r.MaxIn),
			r.StartBinID,
			r.EndBinID,
			r.StopReason,
			r.PriceImpact,
		); err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
	}
	return tx.Commit()
}

// Quotes returns the stored records of pair, oldest first.
func (s *Store) Quotes(ctx context.Context, pair string) ([]storage.QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quoted_at, pair, slot, swap_for_y, exact_out, amount, amount_in, amount_out,
			fee, protocol_fee, host_fee, min_out, max_in, start_bin_id, end_bin_id,
			stop_reason, price_impact
		FROM dlmm_quotes WHERE pair = ? ORDER BY id`, pair)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.QuoteRecord
	for rows.Next() {
		var (
			r        storage.QuoteRecord
			quotedAt string
			amounts  [9]string
		)
		if err := rows.Scan(&quotedAt, &r.Pair, &amounts[0], &r.SwapForY, &r.ExactOut,
			&amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6], &amounts[7], &amounts[8],
			&r.StartBinID, &r.EndBinID, &r.StopReason, &r.PriceImpact); err != nil {
			return nil, err
		}
		if r.QuotedAt, err = time.Parse(time.RFC3339Nano, quotedAt); err != nil {
			return nil, err
		}
		fields := []*uint64{&r.Slot, &r.Amount, &r.AmountIn, &r.AmountOut, &r.Fee, &r.ProtocolFee, &r.HostFee, &r.MinOut, &r.MaxIn}
		for i, field := range fields {
			if *field, err = strconv.ParseUint(amounts[i], 10, 64); err != nil {
				return nil, fmt.Errorf("column %d: %w", i, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
