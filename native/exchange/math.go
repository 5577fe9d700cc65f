package exchange

import (
	"math"

	"github.com/holiman/uint256"
)

// PriceOffset is the decimal scale shared by every normalized price: a
// price of 10^PriceOffset means one USD per whole token unit.
const PriceOffset = 8

// accuracyOffset is the decimal scale USD values are carried in. It equals
// the stable synthetic's decimals, so one stable base unit is one unit of
// debt value.
const accuracyOffset = 6

// confidenceOffset scales the relative confidence measure derived from raw
// oracle confidence intervals.
const confidenceOffset = 6

// feeDenominator makes a stored fee of 300 equal 0.3%.
const feeDenominator = 100_000

var pow10u64 = [20]uint64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000,
	100_000_000, 1_000_000_000, 10_000_000_000, 100_000_000_000,
	1_000_000_000_000, 10_000_000_000_000, 100_000_000_000_000,
	1_000_000_000_000_000, 10_000_000_000_000_000, 100_000_000_000_000_000,
	1_000_000_000_000_000_000, 10_000_000_000_000_000_000,
}

func pow10(n int) (*uint256.Int, error) {
	if n < 0 || n >= len(pow10u64) {
		return nil, ErrMathOverflow
	}
	return uint256.NewInt(pow10u64[n]), nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

func narrowU64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrMathOverflow
	}
	return v.Uint64(), nil
}

// mulDiv computes a*b/den over a 256-bit intermediate, rounding down.
func mulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrMathOverflow
	}
	out := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	out.Div(out, uint256.NewInt(den))
	return narrowU64(out)
}

// mulDivCeil computes a*b/den, rounding up.
func mulDivCeil(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrMathOverflow
	}
	out := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	out.Add(out, uint256.NewInt(den-1))
	out.Div(out, uint256.NewInt(den))
	return narrowU64(out)
}

// priceStale reports whether a last-update slot is too far behind now.
// Entries updated at or after the current slot are never stale, which also
// covers the NeverStale sentinel on the stable synthetic.
func priceStale(lastUpdate, now uint64, maxDelay uint32) bool {
	if lastUpdate >= now {
		return false
	}
	return now-lastUpdate > uint64(maxDelay)
}

// valueScale is the divisor exponent mapping a token amount times its
// price down to the common USD scale.
func valueScale(decimals uint8) (*uint256.Int, error) {
	return pow10(int(decimals) + PriceOffset - accuracyOffset)
}

// assetValue converts a token amount into the common USD scale:
// amount * price / 10^(decimals + PriceOffset - accuracyOffset).
func assetValue(asset *Asset, amount uint64, decimals uint8) (uint64, error) {
	scale, err := valueScale(decimals)
	if err != nil {
		return 0, err
	}
	out := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(asset.Price))
	out.Div(out, scale)
	return narrowU64(out)
}

// tokenAmount converts a USD value back into token units. Rounds down, in
// the system's favor.
func tokenAmount(asset *Asset, value uint64, decimals uint8) (uint64, error) {
	if asset.Price == 0 {
		return 0, ErrMathOverflow
	}
	scale, err := valueScale(decimals)
	if err != nil {
		return 0, err
	}
	out := new(uint256.Int).Mul(uint256.NewInt(value), scale)
	out.Div(out, uint256.NewInt(asset.Price))
	return narrowU64(out)
}

// calculateTotalDebt sums supply*price over every synthetic in the registry,
// in the common USD scale. Any stale oracle aborts the whole computation.
func calculateTotalDebt(list *AssetsList, now uint64, maxDelay uint32) (uint64, error) {
	debt := new(uint256.Int)
	for i := range list.Assets {
		asset := &list.Assets[i]
		if priceStale(asset.LastUpdate, now, maxDelay) {
			return 0, ErrOutdatedOracle
		}
		if asset.Synthetic.Supply == 0 {
			continue
		}
		scale, err := valueScale(asset.Synthetic.Decimals)
		if err != nil {
			return 0, err
		}
		term := new(uint256.Int).Mul(uint256.NewInt(asset.Synthetic.Supply), uint256.NewInt(asset.Price))
		term.Div(term, scale)
		debt.Add(debt, term)
	}
	return narrowU64(debt)
}

// userDebtValue is the account's proportional slice of the total debt,
// rounded down. Zero when no shares exist at all.
func userDebtValue(shares, totalDebt, allShares uint64) (uint64, error) {
	if allShares == 0 {
		return 0, nil
	}
	return mulDiv(shares, totalDebt, allShares)
}

// sharesForMint converts a minted amount into new debt shares. The first
// mint bootstraps 1:1; afterwards the result rounds up so debt is always
// created in the system's favor.
func sharesForMint(allShares, totalDebt, amount uint64) (uint64, error) {
	if allShares == 0 {
		return amount, nil
	}
	return mulDivCeil(amount, allShares, totalDebt)
}

// sharesForBurn converts a burned stable amount into retired debt shares,
// rounded down so debt is burned in the system's favor.
func sharesForBurn(stable *Asset, userDebt, userShares, amount uint64) (uint64, error) {
	if userDebt == 0 {
		return 0, nil
	}
	burnedValue, err := assetValue(stable, amount, stable.Synthetic.Decimals)
	if err != nil {
		return 0, err
	}
	return mulDiv(burnedValue, userShares, userDebt)
}

// maxBurnedAmount is the stable-token amount settling the account's entire
// outstanding debt value, used by the full-settlement burn path.
func maxBurnedAmount(stable *Asset, userDebt uint64) (uint64, error) {
	return tokenAmount(stable, userDebt, stable.Synthetic.Decimals)
}

// maxDebtValue sums the minting capacity granted by every collateral entry,
// in the common USD scale: value(amount) * ratio% / 100. The result stays
// 256-bit wide so a very large position caps comparisons instead of
// overflowing them.
func maxDebtValue(account *ExchangeAccount, list *AssetsList) (*uint256.Int, error) {
	total := new(uint256.Int)
	for i := range account.Collaterals {
		entry := &account.Collaterals[i]
		asset := findCollateralAsset(list, entry)
		if asset == nil {
			return nil, ErrNoAssetFound
		}
		scale, err := valueScale(asset.Collateral.Decimals)
		if err != nil {
			return nil, err
		}
		term := new(uint256.Int).Mul(uint256.NewInt(entry.Amount), uint256.NewInt(asset.Price))
		term.Mul(term, uint256.NewInt(uint64(asset.Collateral.Ratio)))
		term.Div(term, new(uint256.Int).Mul(scale, uint256.NewInt(100)))
		total.Add(total, term)
	}
	return total, nil
}

func findCollateralAsset(list *AssetsList, entry *CollateralEntry) *Asset {
	idx := int(entry.Index)
	if idx < len(list.Assets) && list.Assets[idx].Collateral.CollateralAddress.Equal(entry.CollateralAddress) {
		return &list.Assets[idx]
	}
	for i := range list.Assets {
		if list.Assets[i].Collateral.CollateralAddress.Equal(entry.CollateralAddress) {
			return &list.Assets[i]
		}
	}
	return nil
}

// maxWithdrawValue converts unused minting headroom back into collateral
// value terms by inverting the ratio discount. The result stays 256-bit
// wide so an oversized position bounds the later held-amount clamp instead
// of overflowing it.
func maxWithdrawValue(maxDebt *uint256.Int, userDebt uint64, ratio uint8) (*uint256.Int, error) {
	if ratio == 0 {
		return nil, ErrMathOverflow
	}
	debt := uint256.NewInt(userDebt)
	if maxDebt.Cmp(debt) <= 0 {
		return new(uint256.Int), nil
	}
	headroom := new(uint256.Int).Sub(maxDebt, debt)
	headroom.Mul(headroom, uint256.NewInt(100))
	headroom.Div(headroom, uint256.NewInt(uint64(ratio)))
	return headroom, nil
}

// maxWithdrawableAmount converts a withdrawable value cap into token units
// at the asset's current price, bounded by the actually held amount.
func maxWithdrawableAmount(asset *Asset, withdrawValue *uint256.Int, held uint64) (uint64, error) {
	if asset.Price == 0 {
		return 0, ErrMathOverflow
	}
	scale, err := valueScale(asset.Collateral.Decimals)
	if err != nil {
		return 0, err
	}
	amount := new(uint256.Int).Mul(withdrawValue, scale)
	amount.Div(amount, uint256.NewInt(asset.Price))
	if amount.Cmp(uint256.NewInt(held)) > 0 {
		return held, nil
	}
	return amount.Uint64(), nil
}

// effectiveFee applies a discount percentage to the base fee.
func effectiveFee(fee uint32, discount uint8) uint32 {
	return fee - uint32(uint64(fee)*uint64(discount)/100)
}

// swapOutAmount prices amount of the input asset in the output asset's
// units, net of the effective fee. Every division rounds down, in the
// protocol's favor.
func swapOutAmount(in, out *Asset, amount uint64, fee uint32) (uint64, error) {
	if out.Price == 0 {
		return 0, ErrMathOverflow
	}
	value := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(in.Price))
	value.Div(value, uint256.NewInt(out.Price))

	feeAmount := new(uint256.Int).Mul(value, uint256.NewInt(uint64(fee)))
	feeAmount.Div(feeAmount, uint256.NewInt(feeDenominator))
	value.Sub(value, feeAmount)

	diff := int(out.Synthetic.Decimals) - int(in.Synthetic.Decimals)
	if diff >= 0 {
		scale, err := pow10(diff)
		if err != nil {
			return 0, err
		}
		value.Mul(value, scale)
	} else {
		scale, err := pow10(-diff)
		if err != nil {
			return 0, err
		}
		value.Div(value, scale)
	}
	return narrowU64(value)
}

// scalePrice normalizes a raw oracle mantissa/exponent pair onto the
// common 10^PriceOffset scale.
func scalePrice(mantissa int64, exponent int32) (uint64, error) {
	if mantissa < 0 {
		return 0, ErrMathOverflow
	}
	offset := int(PriceOffset) + int(exponent)
	if offset >= 0 {
		scale, err := pow10(offset)
		if err != nil {
			return 0, err
		}
		out := new(uint256.Int).Mul(uint256.NewInt(uint64(mantissa)), scale)
		return narrowU64(out)
	}
	if -offset >= len(pow10u64) {
		return 0, ErrMathOverflow
	}
	return uint64(mantissa) / pow10u64[-offset], nil
}

// normalizeConfidence derives a relative confidence measure from the raw
// confidence interval and mantissa.
func normalizeConfidence(confidence uint64, mantissa int64) (uint32, error) {
	if mantissa == 0 {
		return 0, ErrMathOverflow
	}
	abs := mantissa
	if abs < 0 {
		abs = -abs
	}
	ratio, err := mulDiv(confidence, pow10u64[confidenceOffset], uint64(abs))
	if err != nil {
		return 0, err
	}
	if ratio > math.MaxUint32 {
		return 0, ErrMathOverflow
	}
	return uint32(ratio), nil
}
