package exchange

import "synthex/crypto"

// PriceQuote is one raw oracle observation: a fixed-point mantissa with a
// decimal exponent, plus the feed's absolute confidence interval.
type PriceQuote struct {
	Feed       crypto.Address
	Mantissa   int64
	Exponent   int32
	Confidence uint64
}

// applyQuote normalizes a quote onto the registry entry it feeds. The stable
// synthetic never takes oracle updates; its price is fixed at one.
func applyQuote(asset *Asset, quote PriceQuote, now uint64) error {
	price, err := scalePrice(quote.Mantissa, quote.Exponent)
	if err != nil {
		return err
	}
	confidence, err := normalizeConfidence(quote.Confidence, quote.Mantissa)
	if err != nil {
		return err
	}
	asset.Price = price
	asset.Confidence = confidence
	asset.LastUpdate = now
	return nil
}
