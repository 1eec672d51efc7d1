package lb_clmm

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/meteora-dlmm-go/dlmm/shared"
)

// Discriminator returns the 8-byte account tag for name.
func Discriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

var (
	LbPairDiscriminator                  = Discriminator(AccountKeyLbPair)
	BinArrayDiscriminator                = Discriminator(AccountKeyBinArray)
	BinArrayBitmapExtensionDiscriminator = Discriminator(AccountKeyBinArrayBitmapExtension)
	PositionDiscriminator                = Discriminator(AccountKeyPosition)
	PositionV3Discriminator              = Discriminator(AccountKeyPositionV3)
	OracleDiscriminator                  = Discriminator(AccountKeyOracle)
	PresetParameter2Discriminator        = Discriminator(AccountKeyPresetParameter2)
)

func checkPrefix(data []byte, disc [8]byte, name string, size int) error {
	if len(data) < DiscriminatorSize {
		return fmt.Errorf("%w: %s: %d bytes", shared.ErrSchemaMismatch, name, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return fmt.Errorf("%w: %s: discriminator %x", shared.ErrSchemaMismatch, name, data[:DiscriminatorSize])
	}
	if len(data) < DiscriminatorSize+size {
		return fmt.Errorf("%w: %s: %d bytes, want %d", shared.ErrSchemaMismatch, name, len(data), DiscriminatorSize+size)
	}
	return nil
}

func decodeAccount(data []byte, disc [8]byte, name string, size int, v any) error {
	if err := checkPrefix(data, disc, name, size); err != nil {
		return err
	}
	body := data[DiscriminatorSize : DiscriminatorSize+size]
	if err := binary.NewBorshDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrSchemaMismatch, name, err)
	}
	return nil
}

func encodeAccount(disc [8]byte, v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := binary.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeLbPair(data []byte) (*LbPair, error) {
	out := new(LbPair)
	if err := decodeAccount(data, LbPairDiscriminator, AccountKeyLbPair, LbPairSize, out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodeBinArray(data []byte) (*BinArray, error) {
	out := new(BinArray)
	if err := decodeAccount(data, BinArrayDiscriminator, AccountKeyBinArray, BinArraySize, out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodeBinArrayBitmapExtension(data []byte) (*BinArrayBitmapExtension, error) {
	out := new(BinArrayBitmapExtension)
	if err := decodeAccount(data, BinArrayBitmapExtensionDiscriminator, AccountKeyBinArrayBitmapExtension, BinArrayBitmapExtensionSize, out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodeOracle(data []byte) (*Oracle, error) {
	out := new(Oracle)
	if err := decodeAccount(data, OracleDiscriminator, AccountKeyOracle, OracleSize, out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodePresetParameter2(data []byte) (*PresetParameter2, error) {
	out := new(PresetParameter2)
	if err := decodeAccount(data, PresetParameter2Discriminator, AccountKeyPresetParameter2, PresetParameter2Size, out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodePosition(data []byte) (*Position, error) {
	out := new(Position)
	if err := decodeAccount(data, PositionDiscriminator, AccountKeyPosition, PositionSize, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeDynamicPosition splits a PositionV3 account into its header and the
// per-bin tail. The tail must hold exactly upper - lower + 1 records.
func DecodeDynamicPosition(data []byte) (*DynamicPosition, error) {
	global := new(PositionV3)
	if err := decodeAccount(data, PositionV3Discriminator, AccountKeyPositionV3, PositionV3Size, global); err != nil {
		return nil, err
	}

	width := int64(global.UpperBinID) - int64(global.LowerBinID) + 1
	if width <= 0 || uint64(width) != global.Length {
		return nil, fmt.Errorf("%w: %s: length %d for bins [%d, %d]",
			shared.ErrSchemaMismatch, AccountKeyPositionV3, global.Length, global.LowerBinID, global.UpperBinID)
	}

	tail := data[DiscriminatorSize+PositionV3Size:]
	if len(tail) < int(width)*PositionBinDataSize {
		return nil, fmt.Errorf("%w: %s: tail %d bytes, want %d",
			shared.ErrSchemaMismatch, AccountKeyPositionV3, len(tail), int(width)*PositionBinDataSize)
	}

	bins := make([]PositionBinData, width)
	dec := binary.NewBorshDecoder(tail)
	for i := range bins {
		if err := dec.Decode(&bins[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: bin %d: %v", shared.ErrSchemaMismatch, AccountKeyPositionV3, i, err)
		}
	}
	return &DynamicPosition{Global: *global, Bins: bins}, nil
}

func EncodeLbPair(v *LbPair) ([]byte, error) {
	return encodeAccount(LbPairDiscriminator, v)
}

func EncodeBinArray(v *BinArray) ([]byte, error) {
	return encodeAccount(BinArrayDiscriminator, v)
}

func EncodeBinArrayBitmapExtension(v *BinArrayBitmapExtension) ([]byte, error) {
	return encodeAccount(BinArrayBitmapExtensionDiscriminator, v)
}

// EncodeDynamicPosition writes the header followed by the tail, in ascending bin order.
func EncodeDynamicPosition(p *DynamicPosition) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(PositionV3Discriminator[:])
	enc := binary.NewBorshEncoder(buf)
	if err := enc.Encode(&p.Global); err != nil {
		return nil, err
	}
	for i := range p.Bins {
		if err := enc.Encode(&p.Bins[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// PositionSpace is the account size of a position spanning n bins.
func PositionSpace(n int) int {
	return DiscriminatorSize + PositionV3Size + n*PositionBinDataSize
}

// ParseAnyAccount decodes data by its discriminator.
func ParseAnyAccount(data []byte) (any, error) {
	if len(data) < DiscriminatorSize {
		return nil, fmt.Errorf("%w: %d bytes", shared.ErrSchemaMismatch, len(data))
	}
	var disc [8]byte
	copy(disc[:], data[:DiscriminatorSize])

	switch disc {
	case LbPairDiscriminator:
		return DecodeLbPair(data)
	case BinArrayDiscriminator:
		return DecodeBinArray(data)
	case BinArrayBitmapExtensionDiscriminator:
		return DecodeBinArrayBitmapExtension(data)
	case PositionDiscriminator:
		return DecodePosition(data)
	case PositionV3Discriminator:
		return DecodeDynamicPosition(data)
	case OracleDiscriminator:
		return DecodeOracle(data)
	case PresetParameter2Discriminator:
		return DecodePresetParameter2(data)
	default:
		return nil, fmt.Errorf("%w: unknown discriminator %x", shared.ErrSchemaMismatch, disc)
	}
}
