// Package snapshot stores the accounts a quote reads as JSON so quotes can
// be replayed offline.
package snapshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/sugawarayuuta/sonnet"
	"github.com/tidwall/gjson"

	"github.com/krazyTry/meteora-dlmm-go/dlmm"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/lb_clmm"
	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
	"github.com/krazyTry/meteora-dlmm-go/solana/token2022"
)

type Clock struct {
	Slot          uint64 `json:"slot"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

// Account mirrors the RPC account encoding: data is [base64, "base64"].
type Account struct {
	Pubkey string    `json:"pubkey"`
	Data   [2]string `json:"data"`
}

// TransferFee is the token-2022 fee of a pair mint at the snapshot epoch.
type TransferFee struct {
	MaximumFee  uint64 `json:"maximumFee"`
	BasisPoints uint16 `json:"basisPoints"`
}

type Snapshot struct {
	LbPair       string       `json:"lbPair"`
	Clock        Clock        `json:"clock"`
	Accounts     []Account    `json:"accounts"`
	TransferFeeX *TransferFee `json:"transferFeeX,omitempty"`
	TransferFeeY *TransferFee `json:"transferFeeY,omitempty"`
}

// Loaded is a decoded snapshot.
type Loaded struct {
	State *dlmm.PoolState
	Clock Clock
}

func newTransferFee(f *token2022.TransferFee) *TransferFee {
	if f == nil {
		return nil
	}
	return &TransferFee{MaximumFee: f.MaximumFee, BasisPoints: f.BasisPoints}
}

func parseTransferFee(v gjson.Result) *token2022.TransferFee {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return &token2022.TransferFee{
		MaximumFee:  v.Get("maximumFee").Uint(),
		BasisPoints: uint16(v.Get("basisPoints").Uint()),
	}
}

func newAccount(address solana.PublicKey, data []byte) Account {
	return Account{Pubkey: address.String(), Data: [2]string{base64.StdEncoding.EncodeToString(data), "base64"}}
}

// FromState encodes state and clock.
func FromState(state *dlmm.PoolState, clock Clock) (*Snapshot, error) {
	s := &Snapshot{
		LbPair:       state.Address.String(),
		Clock:        clock,
		TransferFeeX: newTransferFee(state.TransferFeeX),
		TransferFeeY: newTransferFee(state.TransferFeeY),
	}

	data, err := lb_clmm.EncodeLbPair(state.Pair)
	if err != nil {
		return nil, err
	}
	s.Accounts = append(s.Accounts, newAccount(state.Address, data))

	if state.Extension != nil {
		if data, err = lb_clmm.EncodeBinArrayBitmapExtension(state.Extension); err != nil {
			return nil, err
		}
		s.Accounts = append(s.Accounts, newAccount(lb_clmm.DeriveBinArrayBitmapExtension(state.Address), data))
	}

	for _, index := range state.BinArrays.Indexes() {
		array, _ := state.BinArrays.Get(index)
		if data, err = lb_clmm.EncodeBinArray(array); err != nil {
			return nil, err
		}
		s.Accounts = append(s.Accounts, newAccount(lb_clmm.DeriveBinArray(state.Address, index), data))
	}
	return s, nil
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return sonnet.Marshal(s)
}

// WriteFile writes s to path, creating parent directories.
func (s *Snapshot) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func ReadFile(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// accountData accepts data as a bare base64 string or as [base64, "base64"].
func accountData(v gjson.Result) ([]byte, error) {
	encoded := v.String()
	if v.IsArray() {
		parts := v.Array()
		if len(parts) != 2 || parts[1].String() != "base64" {
			return nil, fmt.Errorf("unsupported account encoding %s", v.Raw)
		}
		encoded = parts[0].String()
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Parse decodes a snapshot. It needs the pair account; the extension and
// any bin array are optional.
func Parse(data []byte) (*Loaded, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("snapshot is not valid json")
	}
	root := gjson.ParseBytes(data)

	address, err := solana.PublicKeyFromBase58(root.Get("lbPair").String())
	if err != nil {
		return nil, fmt.Errorf("snapshot lbPair: %w", err)
	}
	state := &dlmm.PoolState{
		Address:      address,
		TransferFeeX: parseTransferFee(root.Get("transferFeeX")),
		TransferFeeY: parseTransferFee(root.Get("transferFeeY")),
	}
	var arrays []*lb_clmm.BinArray

	for i, account := range root.Get("accounts").Array() {
		raw, err := accountData(account.Get("data"))
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		parsed, err := lb_clmm.ParseAnyAccount(raw)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}

		switch v := parsed.(type) {
		case *lb_clmm.LbPair:
			if pubkey := account.Get("pubkey").String(); pubkey != address.String() {
				return nil, fmt.Errorf("account %d: pair %s, snapshot is of %s: %w", i, pubkey, address, shared.ErrSchemaMismatch)
			}
			state.Pair = v
		case *lb_clmm.BinArrayBitmapExtension:
			state.Extension = v
		case *lb_clmm.BinArray:
			if !v.LbPair.Equals(address) {
				return nil, fmt.Errorf("account %d: bin array %d of %s: %w", i, v.Index, v.LbPair, shared.ErrSchemaMismatch)
			}
			arrays = append(arrays, v)
		default:
			return nil, fmt.Errorf("account %d: unexpected %T: %w", i, parsed, shared.ErrSchemaMismatch)
		}
	}
	if state.Pair == nil {
		return nil, fmt.Errorf("snapshot of %s has no pair account: %w", address, dlmm.ErrAccountNotFound)
	}

	state.BinArrays = lb_clmm.NewBinArrayManager(arrays...)
	if err := state.BinArrays.MigrateToV2(); err != nil {
		return nil, err
	}

	return &Loaded{
		State: state,
		Clock: Clock{
			Slot:          root.Get("clock.slot").Uint(),
			UnixTimestamp: root.Get("clock.unixTimestamp").Int(),
		},
	}, nil
}
