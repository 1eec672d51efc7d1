package token2022

import (
	"bytes"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func mintWithExtensions(t *testing.T, exts ...[]byte) []byte {
	t.Helper()
	data := make([]byte, accountTypeOffset+1)
	data[accountTypeOffset] = accountTypeMint
	for _, ext := range exts {
		data = append(data, ext...)
	}
	return data
}

func tlv(extType uint16, value []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, extType)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(value)))
	return append(out, value...)
}

func TestDecodeTransferFeeConfig(t *testing.T) {
	want := TransferFeeConfig{
		TransferFeeConfigAuthority: solana.PublicKeyFromBytes(bytes.Repeat([]byte{1}, 32)),
		WithheldAmount:             77,
		OlderTransferFee:           TransferFee{Epoch: 10, MaximumFee: 100, BasisPoints: 50},
		NewerTransferFee:           TransferFee{Epoch: 20, MaximumFee: 200, BasisPoints: 75},
	}
	value, err := bin.MarshalBorsh(&want)
	require.NoError(t, err)
	require.Len(t, value, transferFeeExtSize)

	// a mint close authority extension comes first
	data := mintWithExtensions(t, tlv(3, make([]byte, 32)), tlv(extTransferFee, value))
	cfg, err := DecodeTransferFeeConfig(data)
	require.NoError(t, err)
	require.Equal(t, &want, cfg)

	require.Equal(t, uint16(50), cfg.EpochFee(19).BasisPoints)
	require.Equal(t, uint16(75), cfg.EpochFee(20).BasisPoints)
	require.Nil(t, (*TransferFeeConfig)(nil).EpochFee(20))

	// plain mint and mint without the extension
	cfg, err = DecodeTransferFeeConfig(make([]byte, mintSize))
	require.NoError(t, err)
	require.Nil(t, cfg)
	cfg, err = DecodeTransferFeeConfig(mintWithExtensions(t, tlv(3, make([]byte, 32))))
	require.NoError(t, err)
	require.Nil(t, cfg)

	_, err = DecodeTransferFeeConfig(mintWithExtensions(t, tlv(extTransferFee, value[:50])))
	require.Error(t, err)
	truncated := mintWithExtensions(t, tlv(extTransferFee, value))
	_, err = DecodeTransferFeeConfig(truncated[:len(truncated)-10])
	require.Error(t, err)
}

func TestCalculateFee(t *testing.T) {
	f := &TransferFee{MaximumFee: 1_000_000, BasisPoints: 100}
	require.Equal(t, uint64(10), f.CalculateFee(1000))
	require.Equal(t, uint64(1), f.CalculateFee(1))
	require.Zero(t, f.CalculateFee(0))
	require.Equal(t, uint64(1_000_000), f.CalculateFee(^uint64(0)))

	var none *TransferFee
	require.Zero(t, none.CalculateFee(1000))
	amount, fee := none.ExcludedAmount(1000)
	require.Equal(t, uint64(1000), amount)
	require.Zero(t, fee)
}

func TestIncludedAmount(t *testing.T) {
	f := &TransferFee{MaximumFee: 1_000_000, BasisPoints: 100}
	amount, fee := f.ExcludedAmount(1000)
	require.Equal(t, uint64(990), amount)
	require.Equal(t, uint64(10), fee)

	amount, fee, err := f.IncludedAmount(990)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), amount)
	require.Equal(t, uint64(10), fee)

	amount, fee, err = f.IncludedAmount(1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), amount)
	require.Equal(t, uint64(1), fee)

	capped := &TransferFee{MaximumFee: 5, BasisPoints: 100}
	amount, fee, err = capped.IncludedAmount(990)
	require.NoError(t, err)
	require.Equal(t, uint64(995), amount)
	require.Equal(t, uint64(5), fee)

	full := &TransferFee{MaximumFee: 7, BasisPoints: MaxFeeBasisPoints}
	amount, fee, err = full.IncludedAmount(100)
	require.NoError(t, err)
	require.Equal(t, uint64(107), amount)
	require.Equal(t, uint64(7), fee)

	_, _, err = full.IncludedAmount(^uint64(0))
	require.ErrorIs(t, err, ErrMathOverflow)

	amount, fee, err = (*TransferFee)(nil).IncludedAmount(42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), amount)
	require.Zero(t, fee)
}
