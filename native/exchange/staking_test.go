package exchange

import "testing"

func TestAdjustStakingRoundsCatchesUp(t *testing.T) {
	s := Staking{
		RoundLength:    10,
		AmountPerRound: 50,
		FinishedRound:  StakingRound{Start: 90},
		CurrentRound:   StakingRound{Start: 100, Amount: 50, AllPoints: 7},
		NextRound:      StakingRound{Start: 110, Amount: 50, AllPoints: 7},
	}
	if err := adjustStakingRounds(&s, 135, 99); err != nil {
		t.Fatalf("adjust rounds: %v", err)
	}
	if s.CurrentRound.Start != 130 {
		t.Fatalf("current round start = %d, want 130", s.CurrentRound.Start)
	}
	if s.FinishedRound.Start != 120 {
		t.Fatalf("finished round start = %d, want 120", s.FinishedRound.Start)
	}
	if s.NextRound.Start != 140 {
		t.Fatalf("next round start = %d, want 140", s.NextRound.Start)
	}
	if s.NextRound.AllPoints != 99 || s.NextRound.Amount != 50 {
		t.Fatalf("next round = %+v, want points 99 amount 50", s.NextRound)
	}
	// Rounds opened during catch-up snapshot the shares handed in.
	if s.CurrentRound.AllPoints != 99 {
		t.Fatalf("current round points = %d, want 99", s.CurrentRound.AllPoints)
	}
}

func TestAdjustStakingRoundsIdempotent(t *testing.T) {
	s := Staking{
		RoundLength:    10,
		AmountPerRound: 50,
		CurrentRound:   StakingRound{Start: 100},
		NextRound:      StakingRound{Start: 110, Amount: 50},
	}
	if err := adjustStakingRounds(&s, 115, 42); err != nil {
		t.Fatalf("first adjust: %v", err)
	}
	snapshot := [3]StakingRound{s.FinishedRound, s.CurrentRound, s.NextRound}
	if err := adjustStakingRounds(&s, 115, 42); err != nil {
		t.Fatalf("second adjust: %v", err)
	}
	rounds := [3]StakingRound{s.FinishedRound, s.CurrentRound, s.NextRound}
	if rounds != snapshot {
		t.Fatalf("second adjust changed rounds: %+v != %+v", rounds, snapshot)
	}
}

func TestAdjustStakingRoundsZeroLength(t *testing.T) {
	s := Staking{NextRound: StakingRound{Start: 10}}
	if err := adjustStakingRounds(&s, 1_000_000, 5); err != nil {
		t.Fatalf("adjust rounds: %v", err)
	}
	if s.NextRound.Start != 10 {
		t.Fatalf("zero round length must not rotate, got %+v", s)
	}
}

func TestAdjustStakingAccountShift(t *testing.T) {
	s := Staking{
		FinishedRound: StakingRound{Start: 120},
		CurrentRound:  StakingRound{Start: 130},
	}
	account := &ExchangeAccount{
		DebtShares: 42,
		Staking: UserStaking{
			FinishedRoundPoints: 1,
			CurrentRoundPoints:  2,
			NextRoundPoints:     3,
			LastUpdate:          125,
		},
	}
	adjustStakingAccount(account, &s)
	got := account.Staking
	if got.FinishedRoundPoints != 2 || got.CurrentRoundPoints != 3 || got.NextRoundPoints != 42 {
		t.Fatalf("points = %d/%d/%d, want 2/3/42",
			got.FinishedRoundPoints, got.CurrentRoundPoints, got.NextRoundPoints)
	}
	if got.LastUpdate != 130 {
		t.Fatalf("last update = %d, want 130", got.LastUpdate)
	}
}

func TestAdjustStakingAccountCollapsesAfterLongIdle(t *testing.T) {
	s := Staking{
		FinishedRound: StakingRound{Start: 120},
		CurrentRound:  StakingRound{Start: 130},
	}
	account := &ExchangeAccount{
		DebtShares: 42,
		Staking: UserStaking{
			FinishedRoundPoints: 1,
			CurrentRoundPoints:  2,
			NextRoundPoints:     3,
			LastUpdate:          100,
		},
	}
	adjustStakingAccount(account, &s)
	got := account.Staking
	if got.FinishedRoundPoints != 42 || got.CurrentRoundPoints != 42 || got.NextRoundPoints != 42 {
		t.Fatalf("points = %d/%d/%d, want 42/42/42",
			got.FinishedRoundPoints, got.CurrentRoundPoints, got.NextRoundPoints)
	}
}

func TestAdjustStakingAccountNoopWithinRound(t *testing.T) {
	s := Staking{
		FinishedRound: StakingRound{Start: 120},
		CurrentRound:  StakingRound{Start: 130},
	}
	account := &ExchangeAccount{
		DebtShares: 42,
		Staking: UserStaking{
			FinishedRoundPoints: 1,
			CurrentRoundPoints:  2,
			NextRoundPoints:     3,
			LastUpdate:          130,
		},
	}
	before := account.Staking
	adjustStakingAccount(account, &s)
	if account.Staking != before {
		t.Fatalf("reconcile within round changed points: %+v", account.Staking)
	}
}
