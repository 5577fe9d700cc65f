package exchange

// discountUnit is one whole primary-collateral token in base units.
const discountUnit = 1_000_000

// discountTiers maps held whole tokens of the primary collateral to a fee
// discount percentage. Thresholds ascend; the highest one reached wins.
var discountTiers = []struct {
	threshold uint64
	percent   uint8
}{
	{100, 1},
	{200, 2},
	{500, 3},
	{1_000, 4},
	{2_000, 5},
	{5_000, 6},
	{10_000, 7},
	{25_000, 8},
	{50_000, 9},
	{100_000, 10},
	{250_000, 11},
	{500_000, 12},
	{1_000_000, 13},
	{2_000_000, 14},
	{10_000_000, 15},
}

// swapDiscount returns the fee discount percentage earned by a
// primary-collateral balance given in base units.
func swapDiscount(balance uint64) uint8 {
	tokens := balance / discountUnit
	var discount uint8
	for _, tier := range discountTiers {
		if tokens < tier.threshold {
			break
		}
		discount = tier.percent
	}
	return discount
}
