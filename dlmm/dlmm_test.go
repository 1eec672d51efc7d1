package dlmm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDLMMDefaults(t *testing.T) {
	client := rpc.New(rpc.LocalNet_RPC)
	m := NewDLMM(client)
	require.Equal(t, client, m.RPC())
	require.Equal(t, rpc.CommitmentConfirmed, m.commitment)
	require.Equal(t, 3, m.maxRetries)

	m = NewDLMM(client, WithCommitment(rpc.CommitmentFinalized), WithLogger(nil), WithRetry(1, time.Millisecond))
	require.Equal(t, rpc.CommitmentFinalized, m.commitment)
	require.NotNil(t, m.logger)
	require.Equal(t, 1, m.maxRetries)
}

func TestWithRetry(t *testing.T) {
	m := NewDLMM(nil, WithRetry(2, time.Millisecond), WithLogger(zap.NewNop()))
	transient := errors.New("connection reset")

	calls := 0
	err := m.withRetry(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = m.withRetry(context.Background(), "op", func(context.Context) error {
		calls++
		return transient
	})
	require.ErrorIs(t, err, transient)
	require.Equal(t, 3, calls)

	calls = 0
	err = m.withRetry(context.Background(), "op", func(context.Context) error {
		calls++
		return rpc.ErrNotFound
	})
	require.ErrorIs(t, err, rpc.ErrNotFound)
	require.Equal(t, 1, calls)
}

func TestWithRetryCanceled(t *testing.T) {
	m := NewDLMM(nil, WithRetry(5, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := m.withRetry(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("timeout")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
