package dlmm

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when a required account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// DLMM reads DLMM program state over RPC and quotes against it.
type DLMM struct {
	rpcClient    *rpc.Client
	commitment   rpc.CommitmentType
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

func NewDLMM(
	rpcClient *rpc.Client,
	opts ...Option,
) *DLMM {
	o := &DLMM{
		rpcClient:    rpcClient,
		commitment:   rpc.CommitmentConfirmed,
		logger:       zap.NewNop(),
		maxRetries:   3,
		retryBackoff: 200 * time.Millisecond,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

type Option func(*DLMM)

func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(m *DLMM) {
		m.commitment = commitment
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *DLMM) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRetry retries failed RPC reads maxRetries times, doubling backoff
// after each attempt.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(m *DLMM) {
		m.maxRetries = maxRetries
		m.retryBackoff = backoff
	}
}

func (m *DLMM) RPC() *rpc.Client {
	return m.rpcClient
}

// withRetry runs fn until it succeeds, fails with a permanent error or the
// retries run out.
func (m *DLMM) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	maxRetries := max(m.maxRetries, 0)
	delay := m.retryBackoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || isPermanent(err) {
			return err
		}
		m.logger.Debug("rpc retry", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, rpc.ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
