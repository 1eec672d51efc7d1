package token2022

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

const (
	MaxFeeBasisPoints = 10_000

	mintSize           = 82
	accountTypeOffset  = 165
	accountTypeMint    = 1
	extTransferFee     = 1
	transferFeeExtSize = 108
)

var ErrMathOverflow = errors.New("transfer fee overflow")

// TransferFee is the fee schedule active from Epoch on.
type TransferFee struct {
	Epoch       uint64
	MaximumFee  uint64
	BasisPoints uint16
}

// TransferFeeConfig is the transfer fee extension of a token-2022 mint.
// Zero authorities mean none.
type TransferFeeConfig struct {
	TransferFeeConfigAuthority solana.PublicKey
	WithdrawWithheldAuthority  solana.PublicKey
	WithheldAmount             uint64
	OlderTransferFee           TransferFee
	NewerTransferFee           TransferFee
}

// DecodeTransferFeeConfig walks the mint extensions. It returns nil when the
// mint has no transfer fee extension.
func DecodeTransferFeeConfig(data []byte) (*TransferFeeConfig, error) {
	if len(data) <= mintSize {
		return nil, nil
	}
	if len(data) <= accountTypeOffset || data[accountTypeOffset] != accountTypeMint {
		return nil, fmt.Errorf("not a token-2022 mint (%d bytes)", len(data))
	}

	tlv := data[accountTypeOffset+1:]
	for len(tlv) >= 4 {
		extType := binary.LittleEndian.Uint16(tlv[0:2])
		length := int(binary.LittleEndian.Uint16(tlv[2:4]))
		if extType == 0 {
			break
		}
		if len(tlv) < 4+length {
			return nil, fmt.Errorf("extension %d: %d bytes, want %d", extType, len(tlv)-4, length)
		}
		if extType == extTransferFee {
			if length != transferFeeExtSize {
				return nil, fmt.Errorf("transfer fee extension is %d bytes", length)
			}
			cfg := new(TransferFeeConfig)
			if err := bin.NewBorshDecoder(tlv[4 : 4+length]).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode transfer fee extension: %w", err)
			}
			return cfg, nil
		}
		tlv = tlv[4+length:]
	}
	return nil, nil
}

// EpochFee returns the fee in force at epoch. A nil config has no fee.
func (c *TransferFeeConfig) EpochFee(epoch uint64) *TransferFee {
	if c == nil {
		return nil
	}
	if epoch >= c.NewerTransferFee.Epoch {
		return &c.NewerTransferFee
	}
	return &c.OlderTransferFee
}

// CalculateFee is ceil(amount * bps / 10000) capped at MaximumFee.
func (f *TransferFee) CalculateFee(amount uint64) uint64 {
	if f == nil || f.BasisPoints == 0 || amount == 0 {
		return 0
	}
	fee := new(big.Int).Mul(new(big.Int).SetUint64(amount), big.NewInt(int64(f.BasisPoints)))
	fee.Add(fee, big.NewInt(MaxFeeBasisPoints-1))
	fee.Quo(fee, big.NewInt(MaxFeeBasisPoints))
	if !fee.IsUint64() || fee.Uint64() > f.MaximumFee {
		return f.MaximumFee
	}
	return fee.Uint64()
}

// preFeeAmount is the smallest amount whose transfer leaves postFeeAmount.
func (f *TransferFee) preFeeAmount(postFeeAmount uint64) (uint64, error) {
	if postFeeAmount == 0 || f.BasisPoints == 0 {
		return postFeeAmount, nil
	}
	if f.BasisPoints == MaxFeeBasisPoints {
		return addU64(postFeeAmount, f.MaximumFee)
	}
	denominator := big.NewInt(int64(MaxFeeBasisPoints - f.BasisPoints))
	raw := new(big.Int).Mul(new(big.Int).SetUint64(postFeeAmount), big.NewInt(MaxFeeBasisPoints))
	raw.Add(raw, denominator)
	raw.Sub(raw, big.NewInt(1))
	raw.Quo(raw, denominator)

	if new(big.Int).Sub(raw, new(big.Int).SetUint64(postFeeAmount)).Cmp(new(big.Int).SetUint64(f.MaximumFee)) >= 0 {
		return addU64(postFeeAmount, f.MaximumFee)
	}
	if !raw.IsUint64() {
		return 0, ErrMathOverflow
	}
	return raw.Uint64(), nil
}

// ExcludedAmount splits an amount sent into what arrives and the fee.
func (f *TransferFee) ExcludedAmount(included uint64) (amount, fee uint64) {
	fee = f.CalculateFee(included)
	return included - fee, fee
}

// IncludedAmount is what must be sent so that excluded arrives.
func (f *TransferFee) IncludedAmount(excluded uint64) (amount, fee uint64, err error) {
	if f == nil || excluded == 0 {
		return excluded, 0, nil
	}
	if f.BasisPoints == MaxFeeBasisPoints {
		fee = f.MaximumFee
	} else {
		pre, err := f.preFeeAmount(excluded)
		if err != nil {
			return 0, 0, err
		}
		fee = f.CalculateFee(pre)
	}
	amount, err = addU64(excluded, fee)
	return amount, fee, err
}

func addU64(a, b uint64) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, ErrMathOverflow
	}
	return a + b, nil
}
