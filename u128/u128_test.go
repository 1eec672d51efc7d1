package u128

import (
	"math/big"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "18446744073709551616", "340282366920938463463374607431768211455"} {
		v, err := FromString(s)
		if err != nil {
			t.Fatal("FromString() fail", err)
		}
		if ToBig(v).String() != s {
			t.Fatalf("ToBig(%s) = %s", s, ToBig(v))
		}
		want, _ := new(big.Int).SetString(s, 10)
		if got := FromBig(want); got.Lo != v.Lo || got.Hi != v.Hi {
			t.Fatalf("FromBig(%s) mismatch", s)
		}
	}
}

func TestFromStringOverflow(t *testing.T) {
	if _, err := FromString("340282366920938463463374607431768211456"); err == nil {
		t.Fatal("expected overflow")
	}
	if _, err := FromString("-1"); err == nil {
		t.Fatal("expected negative error")
	}
}
