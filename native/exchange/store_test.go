package exchange

import (
	"testing"

	"synthex/storage"
)

func TestStoreMissingRecords(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	st, err := store.GetState()
	if err != nil || st != nil {
		t.Fatalf("missing state = %v, %v; want nil, nil", st, err)
	}
	list, err := store.GetAssetsList()
	if err != nil || list != nil {
		t.Fatalf("missing list = %v, %v; want nil, nil", list, err)
	}
	account, err := store.GetAccount(testAddr(1))
	if err != nil || account != nil {
		t.Fatalf("missing account = %v, %v; want nil, nil", account, err)
	}
}

func TestStoreStateRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	st := &State{
		Admin:                  testAddr(1),
		Halted:                 true,
		DebtShares:             123,
		CollateralToken:        testAddr(2),
		CollateralAccount:      testAddr(3),
		AssetsList:             testAddr(4),
		CollateralizationLevel: 1000,
		MaxDelay:               5,
		Fee:                    300,
		LiquidationAccount:     testAddr(5),
		LiquidationPenalty:     15,
		LiquidationThreshold:   200,
		LiquidationBuffer:      172800,
		AccountVersion:         1,
		Staking: Staking{
			FundAccount:    testAddr(6),
			RoundLength:    10,
			AmountPerRound: 1000,
			FinishedRound:  StakingRound{Start: 90, Amount: 1, AllPoints: 2},
			CurrentRound:   StakingRound{Start: 100, Amount: 3, AllPoints: 4},
			NextRound:      StakingRound{Start: 110, Amount: 5, AllPoints: 6},
		},
	}
	if err := store.PutState(st); err != nil {
		t.Fatalf("put state: %v", err)
	}
	got, err := store.GetState()
	if err != nil || got == nil {
		t.Fatalf("get state: %v", err)
	}
	if !got.Admin.Equal(st.Admin) || got.DebtShares != 123 || !got.Halted {
		t.Fatalf("state = %+v", got)
	}
	if !got.Staking.FundAccount.Equal(st.Staking.FundAccount) || got.Staking.NextRound != st.Staking.NextRound {
		t.Fatalf("staking = %+v", got.Staking)
	}
	if got.LiquidationBuffer != 172800 || got.AccountVersion != 1 {
		t.Fatalf("params = %+v", got)
	}

	// Mutating the returned copy must not leak into the stored record.
	got.DebtShares = 999
	again, err := store.GetState()
	if err != nil || again.DebtShares != 123 {
		t.Fatalf("stored state changed through a copy: %d, %v", again.DebtShares, err)
	}
}

func TestStoreAssetsListRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	list := &AssetsList{
		Initialized: true,
		Assets: []Asset{
			{
				Price:      100_000_000,
				LastUpdate: NeverStale,
				Synthetic:  Synthetic{AssetAddress: testAddr(1), Supply: 7, Decimals: 6, MaxSupply: ^uint64(0)},
			},
			{
				FeedAddress: testAddr(2),
				Price:       200_000_000,
				LastUpdate:  55,
				Confidence:  9,
				Collateral: Collateral{
					IsCollateral:      true,
					CollateralAddress: testAddr(3),
					ReserveAddress:    testAddr(4),
					ReserveBalance:    11,
					Decimals:          6,
					Ratio:             10,
				},
			},
		},
	}
	if err := store.PutAssetsList(list); err != nil {
		t.Fatalf("put list: %v", err)
	}
	got, err := store.GetAssetsList()
	if err != nil || got == nil {
		t.Fatalf("get list: %v", err)
	}
	if !got.Initialized || len(got.Assets) != 2 {
		t.Fatalf("list = %+v", got)
	}
	if got.Assets[0].LastUpdate != NeverStale || got.Assets[0].Synthetic.MaxSupply != ^uint64(0) {
		t.Fatalf("sentinels lost: %+v", got.Assets[0])
	}
	coll := got.Assets[1].Collateral
	if !coll.IsCollateral || !coll.CollateralAddress.Equal(testAddr(3)) || coll.ReserveBalance != 11 || coll.Ratio != 10 {
		t.Fatalf("collateral = %+v", coll)
	}
}

func TestStoreAccountRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	account := &ExchangeAccount{
		Owner:               testAddr(1),
		Version:             2,
		DebtShares:          50,
		LiquidationDeadline: UnsetDeadline,
		Staking: UserStaking{
			AmountToClaim:       1,
			FinishedRoundPoints: 2,
			CurrentRoundPoints:  3,
			NextRoundPoints:     4,
			LastUpdate:          5,
		},
		Collaterals: []CollateralEntry{
			{Amount: 6, CollateralAddress: testAddr(2), Index: 1},
		},
	}
	if err := store.PutAccount(account); err != nil {
		t.Fatalf("put account: %v", err)
	}
	got, err := store.GetAccount(testAddr(1))
	if err != nil || got == nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Version != 2 || got.DebtShares != 50 || got.LiquidationDeadline != UnsetDeadline {
		t.Fatalf("account = %+v", got)
	}
	if got.Staking != account.Staking {
		t.Fatalf("staking = %+v", got.Staking)
	}
	if len(got.Collaterals) != 1 || !got.Collaterals[0].CollateralAddress.Equal(testAddr(2)) || got.Collaterals[0].Index != 1 {
		t.Fatalf("collaterals = %+v", got.Collaterals)
	}

	// Accounts are keyed by owner; another address stays empty.
	other, err := store.GetAccount(testAddr(9))
	if err != nil || other != nil {
		t.Fatalf("unexpected account for other owner: %v, %v", other, err)
	}
}
