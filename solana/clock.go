package solana

import (
	"context"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Clock is the clock sysvar.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func DecodeClock(data []byte) (*Clock, error) {
	clock := new(Clock)
	if err := binary.NewBinDecoder(data).Decode(clock); err != nil {
		return nil, fmt.Errorf("decode clock: %w", err)
	}
	return clock, nil
}

// GetClock reads the clock sysvar, the slot and timestamp swaps are checked against.
func GetClock(ctx context.Context, rpcClient *rpc.Client, commitment rpc.CommitmentType) (*Clock, error) {
	out, err := GetAccountInfo(ctx, rpcClient, solana.SysVarClockPubkey, commitment)
	if err != nil {
		return nil, fmt.Errorf("get clock: %w", err)
	}
	return DecodeClock(out.GetBinary())
}
