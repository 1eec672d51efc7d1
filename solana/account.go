package solana

import (
	"context"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// TokenAccountSize is the base token account length.
const TokenAccountSize = 165

// Account is a token account, such as a pair reserve.
type Account struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
	State   AccountState
}

func (a *Account) IsFrozen() bool {
	return a.State == AccountStateFrozen
}

// spl-token account layout, COptions as u32 tag + value
type tokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

func DecodeTokenAccount(address solana.PublicKey, data []byte) (*Account, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("token account %s: %d bytes", address, len(data))
	}
	raw := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(data[:TokenAccountSize]).Decode(raw); err != nil {
		return nil, fmt.Errorf("token account %s: %w", address, err)
	}
	return &Account{
		Address: address,
		Mint:    raw.Mint,
		Owner:   raw.Owner,
		Amount:  raw.Amount,
		State:   AccountState(raw.State),
	}, nil
}

// GetTokenAccounts fetches and decodes token accounts, nil where missing.
func GetTokenAccounts(ctx context.Context, rpcClient *rpc.Client, commitment rpc.CommitmentType, accounts ...solana.PublicKey) ([]*Account, error) {
	outs, err := GetMultipleAccountInfo(ctx, rpcClient, accounts, commitment)
	if err != nil {
		return nil, err
	}
	list := make([]*Account, len(outs))
	for i, out := range outs {
		if out == nil {
			continue
		}
		if list[i], err = DecodeTokenAccount(accounts[i], out.Data.GetBinary()); err != nil {
			return nil, err
		}
	}
	return list, nil
}
