package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/krazyTry/meteora-dlmm-go/solana/token2022"
)

// Token is a mint with the token program that owns it.
type Token struct {
	token.Mint
	Program solana.PublicKey
	// TransferFee is set for token-2022 mints carrying the extension.
	TransferFee *token2022.TransferFeeConfig
}

func (t *Token) IsToken2022() bool {
	return t.Program.Equals(token2022.ProgramID)
}

// DecodeMint reads the base mint layout and, for token-2022 mints, the
// transfer fee extension.
func DecodeMint(program solana.PublicKey, data []byte) (*Token, error) {
	t := &Token{Program: program}
	if err := t.Mint.Decode(data); err != nil {
		return nil, err
	}
	if !t.IsToken2022() {
		return t, nil
	}
	cfg, err := token2022.DecodeTransferFeeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("token-2022 mint: %w", err)
	}
	t.TransferFee = cfg
	return t, nil
}
