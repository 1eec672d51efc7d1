package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL        string
	Commitment    rpc.CommitmentType
	BinArrayCount int
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
	// Out is the JSONL quote log, empty to disable.
	Out    string
	PgDSN  string
	SQLite string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", rpc.MainNetBeta_RPC)
	v.SetDefault("commitment", string(rpc.CommitmentConfirmed))
	v.SetDefault("bin-array-count", 3)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("out", "./data/quotes.jsonl")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	commitment, err := parseCommitment(v.GetString("commitment"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		Commitment:    commitment,
		BinArrayCount: v.GetInt("bin-array-count"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
		Out:           v.GetString("out"),
		PgDSN:         v.GetString("pg-dsn"),
		SQLite:        v.GetString("sqlite"),
	}
	if cfg.BinArrayCount <= 0 {
		return Config{}, fmt.Errorf("bin-array-count must be positive, got %d", cfg.BinArrayCount)
	}

	return cfg, nil
}

func parseCommitment(s string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(strings.ToLower(strings.TrimSpace(s))); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	default:
		return "", fmt.Errorf("unknown commitment %q", s)
	}
}
