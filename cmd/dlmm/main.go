package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
	"github.com/krazyTry/meteora-dlmm-go/internal/config"
	"github.com/krazyTry/meteora-dlmm-go/internal/storage"
	"github.com/krazyTry/meteora-dlmm-go/internal/storage/postgres"
	"github.com/krazyTry/meteora-dlmm-go/internal/storage/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dlmm",
		Short:        "Meteora DLMM pool inspector and swap quoter",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(
		newPriceCmd(),
		newBinIDCmd(),
		newQuoteCmd(),
		newSnapshotCmd(),
		newPairCmd(),
		newPairsCmd(),
		newBinArraysCmd(),
		newPositionsCmd(),
	)
	return root
}

// addClientFlags registers the flags every RPC backed command reads.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", rpc.MainNetBeta_RPC, "Solana RPC URL")
	cmd.Flags().String("commitment", string(rpc.CommitmentConfirmed), "commitment (processed, confirmed, finalized)")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per RPC call")
	cmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// runtime is what an RPC backed command needs, built from its flags.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	client *dlmm.DLMM
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	client := dlmm.NewDLMM(rpc.New(cfg.RPCURL),
		dlmm.WithCommitment(cfg.Commitment),
		dlmm.WithLogger(logger),
		dlmm.WithRetry(cfg.MaxRetries, cfg.RetryBackoff),
	)
	return &runtime{cfg: cfg, logger: logger, client: client}, nil
}

func (r *runtime) close() {
	_ = r.logger.Sync()
	_ = r.client.RPC().Close()
}

// openSinks opens every configured quote sink.
func (r *runtime) openSinks(ctx context.Context) (storage.Multi, error) {
	var sinks storage.Multi
	if r.cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(r.cfg.Out))
	}
	if r.cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, r.cfg.PgDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		sinks = append(sinks, store)
	}
	if r.cfg.SQLite != "" {
		store, err := sqlite.Open(r.cfg.SQLite)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, store)
	}
	return sinks, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v any) error {
	data, err := sonnet.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
