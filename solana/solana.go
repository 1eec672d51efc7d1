package solana

import "github.com/gagliardetto/solana-go"

// MaxMultipleAccounts is the getMultipleAccounts request limit.
const MaxMultipleAccounts = 100

// Filter matches a public key stored at Offset of a program account.
type Filter struct {
	Owner  solana.PublicKey // Key to match
	Offset uint64           // Byte offset, discriminator included
}
