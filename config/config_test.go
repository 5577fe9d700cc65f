package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	gen, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gen.CollateralizationLevel != DefaultCollateralizationLevel {
		t.Fatalf("collateralization = %d", gen.CollateralizationLevel)
	}
	if gen.Fee != DefaultFee || gen.LiquidationPenalty != DefaultLiquidationPenalty {
		t.Fatalf("fee/penalty = %d/%d", gen.Fee, gen.LiquidationPenalty)
	}
	if gen.LiquidationThreshold != DefaultLiquidationThreshold || gen.LiquidationBuffer != DefaultLiquidationBuffer {
		t.Fatalf("threshold/buffer = %d/%d", gen.LiquidationThreshold, gen.LiquidationBuffer)
	}
	if gen.StakingRoundLength != DefaultStakingRoundLength {
		t.Fatalf("round length = %d", gen.StakingRoundLength)
	}
	if gen.MaxDelay != 0 || gen.AccountVersion != 0 || gen.AmountPerRound != 0 {
		t.Fatalf("zero-default params changed: %+v", gen)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
CollateralizationLevel = 500
Fee = 100
MaxDelay = 10
StakingRoundLength = 20
AmountPerRound = 5000
`)
	gen, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gen.CollateralizationLevel != 500 || gen.Fee != 100 {
		t.Fatalf("explicit values overridden: %+v", gen)
	}
	if gen.MaxDelay != 10 || gen.StakingRoundLength != 20 || gen.AmountPerRound != 5000 {
		t.Fatalf("staking params = %+v", gen)
	}
	if gen.LiquidationPenalty != DefaultLiquidationPenalty {
		t.Fatalf("missing value not defaulted: %d", gen.LiquidationPenalty)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "NotAParameter = 1\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormaliseIsIdempotent(t *testing.T) {
	gen := Genesis{}.Normalise()
	if gen.Normalise() != gen {
		t.Fatalf("second normalise changed values: %+v", gen)
	}
}
