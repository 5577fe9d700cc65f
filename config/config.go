package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Genesis carries the protocol parameters applied when the exchange state is
// first initialised. Zero values are replaced by the protocol defaults in
// Normalise, so a partially filled file remains valid.
type Genesis struct {
	CollateralizationLevel uint32 `toml:"CollateralizationLevel"`
	MaxDelay               uint32 `toml:"MaxDelay"`
	Fee                    uint32 `toml:"Fee"`
	LiquidationPenalty     uint8  `toml:"LiquidationPenalty"`
	LiquidationThreshold   uint8  `toml:"LiquidationThreshold"`
	LiquidationBuffer      uint32 `toml:"LiquidationBuffer"`
	AccountVersion         uint8  `toml:"AccountVersion"`
	StakingRoundLength     uint32 `toml:"StakingRoundLength"`
	AmountPerRound         uint64 `toml:"AmountPerRound"`
}

// Protocol defaults. Collateralization is expressed in percent (1000 =
// 1000%), the fee in hundredths of a basis point (300 = 0.3%) and the
// liquidation buffer in slots.
const (
	DefaultCollateralizationLevel = 1000
	DefaultFee                    = 300
	DefaultLiquidationPenalty     = 15
	DefaultLiquidationThreshold   = 200
	DefaultLiquidationBuffer      = 172800
	DefaultStakingRoundLength     = 14400
)

// Load reads a genesis parameter file from disk and applies defaults.
func Load(path string) (Genesis, error) {
	var gen Genesis
	meta, err := toml.DecodeFile(path, &gen)
	if err != nil {
		return Genesis{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Genesis{}, fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
	}
	return gen.Normalise(), nil
}

// Normalise fills zero-valued parameters with the protocol defaults.
func (g Genesis) Normalise() Genesis {
	out := g
	if out.CollateralizationLevel == 0 {
		out.CollateralizationLevel = DefaultCollateralizationLevel
	}
	if out.Fee == 0 {
		out.Fee = DefaultFee
	}
	if out.LiquidationPenalty == 0 {
		out.LiquidationPenalty = DefaultLiquidationPenalty
	}
	if out.LiquidationThreshold == 0 {
		out.LiquidationThreshold = DefaultLiquidationThreshold
	}
	if out.LiquidationBuffer == 0 {
		out.LiquidationBuffer = DefaultLiquidationBuffer
	}
	if out.StakingRoundLength == 0 {
		out.StakingRoundLength = DefaultStakingRoundLength
	}
	// MaxDelay, AccountVersion and AmountPerRound default to zero on purpose.
	return out
}
