package exchange

import "testing"

func TestSwapDiscount(t *testing.T) {
	cases := []struct {
		balance uint64
		want    uint8
	}{
		{0, 0},
		{99 * discountUnit, 0},
		{100 * discountUnit, 1},
		{100*discountUnit - 1, 0},
		{199 * discountUnit, 1},
		{200 * discountUnit, 2},
		{1_000 * discountUnit, 4},
		{25_000 * discountUnit, 8},
		{999_999 * discountUnit, 12},
		{2_000_000 * discountUnit, 14},
		{10_000_000 * discountUnit, 15},
		{^uint64(0), 15},
	}
	for _, tc := range cases {
		if got := swapDiscount(tc.balance); got != tc.want {
			t.Fatalf("swapDiscount(%d) = %d, want %d", tc.balance, got, tc.want)
		}
	}
}
