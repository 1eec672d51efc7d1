package math

import "math/bits"

// Wide unsigned integers stored as little-endian u64 limbs, the layout of
// the on-chain bin array bitmaps (U1024 inline, U512 per extension word).

func IsZeroWords(words []uint64) bool {
	for _, w := range words {
		if w != 0 {
			return false
		}
	}
	return true
}

func BitWords(words []uint64, i int) bool {
	if i < 0 || i >= len(words)*64 {
		return false
	}
	return words[i/64]&(1<<(uint(i)%64)) != 0
}

func FlipBitWords(words []uint64, i int) {
	words[i/64] ^= 1 << (uint(i) % 64)
}

// ShlWords returns words << n truncated to the same width.
func ShlWords(words []uint64, n uint) []uint64 {
	out := make([]uint64, len(words))
	limb, shift := int(n/64), n%64
	for i := len(words) - 1; i >= limb; i-- {
		v := words[i-limb] << shift
		if shift > 0 && i-limb-1 >= 0 {
			v |= words[i-limb-1] >> (64 - shift)
		}
		out[i] = v
	}
	return out
}

// ShrWords returns words >> n.
func ShrWords(words []uint64, n uint) []uint64 {
	out := make([]uint64, len(words))
	limb, shift := int(n/64), n%64
	for i := 0; i+limb < len(words); i++ {
		v := words[i+limb] >> shift
		if shift > 0 && i+limb+1 < len(words) {
			v |= words[i+limb+1] << (64 - shift)
		}
		out[i] = v
	}
	return out
}

func LeadingZerosWords(words []uint64) int {
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] != 0 {
			return (len(words)-1-i)*64 + bits.LeadingZeros64(words[i])
		}
	}
	return len(words) * 64
}

func TrailingZerosWords(words []uint64) int {
	for i, w := range words {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return len(words) * 64
}
