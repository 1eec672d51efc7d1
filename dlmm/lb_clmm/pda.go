package lb_clmm

import (
	"bytes"
	"encoding/binary"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/krazyTry/meteora-dlmm-go/gen/dlmm"
)

// sortMints returns the lexicographically smaller key bytes first.
func sortMints(mintX, mintY solanago.PublicKey) ([]byte, []byte) {
	x, y := mintX.Bytes(), mintY.Bytes()
	if bytes.Compare(x, y) == 1 {
		return y, x
	}
	return x, y
}

func u16LE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u64LE(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func findAddress(seeds ...[]byte) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress(seeds, dlmm.ProgramID)
	return pub
}

func DeriveLbPair2(mintX, mintY solanago.PublicKey, binStep, baseFactor uint16) solanago.PublicKey {
	lo, hi := sortMints(mintX, mintY)
	return findAddress(lo, hi, u16LE(binStep), u16LE(baseFactor))
}

func DeriveLbPairWithPresetParameter(presetParameter, mintX, mintY solanago.PublicKey) solanago.PublicKey {
	lo, hi := sortMints(mintX, mintY)
	return findAddress(presetParameter.Bytes(), lo, hi)
}

func DeriveCustomizablePermissionlessLbPair(mintX, mintY solanago.PublicKey) solanago.PublicKey {
	lo, hi := sortMints(mintX, mintY)
	return findAddress(ILMBaseKey.Bytes(), lo, hi)
}

func DerivePermissionLbPair(base, mintX, mintY solanago.PublicKey, binStep uint16) solanago.PublicKey {
	lo, hi := sortMints(mintX, mintY)
	return findAddress(base.Bytes(), lo, hi, u16LE(binStep))
}

func DerivePosition(lbPair, base solanago.PublicKey, lowerBinID, width int32) solanago.PublicKey {
	return findAddress(
		SeedPosition,
		lbPair.Bytes(),
		base.Bytes(),
		binary.LittleEndian.AppendUint32(nil, uint32(lowerBinID)),
		binary.LittleEndian.AppendUint32(nil, uint32(width)),
	)
}

func DeriveBinArray(lbPair solanago.PublicKey, index int64) solanago.PublicKey {
	return findAddress(SeedBinArray, lbPair.Bytes(), u64LE(uint64(index)))
}

func DeriveBinArrayBitmapExtension(lbPair solanago.PublicKey) solanago.PublicKey {
	return findAddress(SeedBitmap, lbPair.Bytes())
}

func DeriveOracle(lbPair solanago.PublicKey) solanago.PublicKey {
	return findAddress(SeedOracle, lbPair.Bytes())
}

func DeriveReserve(lbPair, mint solanago.PublicKey) solanago.PublicKey {
	return findAddress(lbPair.Bytes(), mint.Bytes())
}

func DeriveRewardVault(lbPair solanago.PublicKey, rewardIndex uint64) solanago.PublicKey {
	return findAddress(lbPair.Bytes(), u64LE(rewardIndex))
}

func DeriveEventAuthority() solanago.PublicKey {
	return findAddress(SeedEventAuthority)
}

func DerivePresetParameter(binStep, baseFactor uint16) solanago.PublicKey {
	return findAddress(SeedPresetParameter, u16LE(binStep), u16LE(baseFactor))
}

func DerivePresetParameter2(index uint16) solanago.PublicKey {
	return findAddress(SeedPresetParameter2, u16LE(index))
}

func DeriveTokenBadge(mint solanago.PublicKey) solanago.PublicKey {
	return findAddress(SeedTokenBadge, mint.Bytes())
}

func DeriveClaimProtocolFeeOperator(operator solanago.PublicKey) solanago.PublicKey {
	return findAddress(SeedClaimProtocolFeeOperator, operator.Bytes())
}
