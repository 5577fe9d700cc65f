package exchange

// adjustStakingRounds rotates the three-round window until the schedule has
// caught up with the current slot. Each rotation snapshots the present global
// debt shares into the freshly opened next round, matching what a live
// rotation at that boundary would have recorded.
func adjustStakingRounds(s *Staking, now, debtShares uint64) error {
	if s.RoundLength == 0 {
		return nil
	}
	for now >= s.NextRound.Start {
		start, err := checkedAdd(s.NextRound.Start, uint64(s.RoundLength))
		if err != nil {
			return err
		}
		s.FinishedRound = s.CurrentRound
		s.CurrentRound = s.NextRound
		s.NextRound = StakingRound{
			Start:     start,
			Amount:    s.AmountPerRound,
			AllPoints: debtShares,
		}
	}
	return nil
}

// adjustStakingAccount brings one account's point windows in line with the
// already-adjusted schedule. Idempotent within a round: a second call in the
// same round is a no-op.
func adjustStakingAccount(account *ExchangeAccount, s *Staking) {
	if account.Staking.LastUpdate >= s.CurrentRound.Start {
		return
	}
	if account.Staking.LastUpdate < s.FinishedRound.Start {
		// More than one rotation passed untouched; the account held the
		// same shares through every skipped round.
		account.Staking.FinishedRoundPoints = account.DebtShares
		account.Staking.CurrentRoundPoints = account.DebtShares
		account.Staking.NextRoundPoints = account.DebtShares
	} else {
		account.Staking.FinishedRoundPoints = account.Staking.CurrentRoundPoints
		account.Staking.CurrentRoundPoints = account.Staking.NextRoundPoints
		account.Staking.NextRoundPoints = account.DebtShares
	}
	account.Staking.LastUpdate = s.CurrentRound.Start
}
