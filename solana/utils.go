package solana

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"reflect"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Discriminator is the anchor account tag of name.
func Discriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out[:]
}

// GenProgramAccountFilter selects the program accounts of type key whose
// bytes match every filter.
func GenProgramAccountFilter(key string, commitment rpc.CommitmentType, filters ...Filter) *rpc.GetProgramAccountsOpts {
	opt := &rpc.GetProgramAccountsOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  Discriminator(key),
				},
			},
		},
	}

	for _, f := range filters {
		if f.Owner.Equals(solana.PublicKey{}) {
			continue
		}
		owner := f.Owner
		opt.Filters = append(opt.Filters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{
				Offset: f.Offset,
				Bytes:  owner[:],
			},
		})
	}
	return opt
}

// ComputeStructOffset returns the account offset of field o in the borsh
// layout of *x, discriminator included.
func ComputeStructOffset(x any, o string) uint64 {
	t := reflect.TypeOf(x).Elem()
	fields := make([]reflect.StructField, 0)

	found := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == o {
			found = true
			break
		}
		fields = append(fields, f)
	}
	if !found {
		panic(fmt.Sprintf("ComputeStructOffset: %s has no field %s", t.Name(), o))
	}

	buf := new(bytes.Buffer)
	if err := binary.NewBorshEncoder(buf).Encode(reflect.New(reflect.StructOf(fields)).Elem().Interface()); err != nil {
		panic(fmt.Sprintf("ComputeStructOffset: %v", err))
	}

	// account discriminator
	return uint64(buf.Len()) + 8
}

func GetAccountInfo(ctx context.Context, rpcClient *rpc.Client, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	return rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{Commitment: commitment, Encoding: solana.EncodingBase64})
}

// GetMultipleAccountInfo fetches accounts in request-sized chunks. The result
// is aligned with accounts, missing accounts are nil.
func GetMultipleAccountInfo(ctx context.Context, rpcClient *rpc.Client, accounts []solana.PublicKey, commitment rpc.CommitmentType) ([]*rpc.Account, error) {
	out := make([]*rpc.Account, 0, len(accounts))
	for start := 0; start < len(accounts); start += MaxMultipleAccounts {
		end := min(start+MaxMultipleAccounts, len(accounts))
		res, err := rpcClient.GetMultipleAccountsWithOpts(ctx, accounts[start:end], &rpc.GetMultipleAccountsOpts{Commitment: commitment, Encoding: solana.EncodingBase64})
		if err != nil {
			return nil, err
		}
		if len(res.Value) != end-start {
			return nil, fmt.Errorf("getMultipleAccounts: %d results for %d accounts", len(res.Value), end-start)
		}
		out = append(out, res.Value...)
	}
	return out, nil
}

// GetMultipleToken returns the mints of tokens, nil where the account is missing.
func GetMultipleToken(ctx context.Context, rpcClient *rpc.Client, commitment rpc.CommitmentType, tokens ...solana.PublicKey) ([]*Token, error) {
	outs, err := GetMultipleAccountInfo(ctx, rpcClient, tokens, commitment)
	if err != nil {
		return nil, err
	}
	list := make([]*Token, len(outs))
	for i, out := range outs {
		if out == nil {
			continue
		}

		token, err := DecodeMint(out.Owner, out.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("mint %s: %w", tokens[i], err)
		}
		list[i] = token
	}
	return list, nil
}

// GetMintDecimals returns the decimals of both mints.
func GetMintDecimals(ctx context.Context, rpcClient *rpc.Client, commitment rpc.CommitmentType, mintX, mintY solana.PublicKey) (uint8, uint8, error) {
	tokens, err := GetMultipleToken(ctx, rpcClient, commitment, mintX, mintY)
	if err != nil {
		return 0, 0, err
	}
	if tokens[0] == nil || tokens[1] == nil {
		return 0, 0, fmt.Errorf("mint %s or %s: %w", mintX, mintY, rpc.ErrNotFound)
	}
	return tokens[0].Decimals, tokens[1].Decimals, nil
}
