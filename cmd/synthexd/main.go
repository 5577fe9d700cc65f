package main

import (
	"flag"
	"fmt"
	"os"

	"synthex/config"
	"synthex/crypto"
	"synthex/native/exchange"
	"synthex/storage"
)

func main() {
	configFile := flag.String("config", "./genesis.toml", "Path to the genesis parameter file")
	dataDir := flag.String("data", "./synthex-data", "Path to the state database directory")
	adminFlag := flag.String("admin", "", "Bech32 admin address used when seeding a fresh state")
	slotFlag := flag.Uint64("slot", 0, "Current slot handed to the engine")
	flag.Parse()

	gen, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(*dataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	store := exchange.NewStore(db)
	engine := exchange.NewEngine()
	engine.SetState(store)
	engine.SetSlot(*slotFlag)

	st, err := store.GetState()
	if err != nil {
		panic(fmt.Sprintf("Failed to read state: %v", err))
	}
	if st == nil {
		if *adminFlag == "" {
			fmt.Fprintln(os.Stderr, "no state found; pass -admin to seed one")
			os.Exit(1)
		}
		admin, err := crypto.DecodeAddress(*adminFlag)
		if err != nil {
			panic(fmt.Sprintf("Invalid admin address: %v", err))
		}
		err = engine.Initialize(exchange.InitParams{Admin: admin, Genesis: gen})
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize state: %v", err))
		}
		if st, err = store.GetState(); err != nil {
			panic(fmt.Sprintf("Failed to re-read state: %v", err))
		}
		fmt.Printf("seeded fresh exchange state in %s\n", *dataDir)
	}

	fmt.Printf("admin:            %s\n", st.Admin)
	fmt.Printf("halted:           %t\n", st.Halted)
	fmt.Printf("debt shares:      %d\n", st.DebtShares)
	fmt.Printf("fee:              %d\n", st.Fee)
	fmt.Printf("max delay:        %d\n", st.MaxDelay)
	fmt.Printf("collateral level: %d%%\n", st.CollateralizationLevel)
	fmt.Printf("staking round:    %d slots, %d per round\n", st.Staking.RoundLength, st.Staking.AmountPerRound)
	fmt.Printf("current round:    start %d, points %d\n", st.Staking.CurrentRound.Start, st.Staking.CurrentRound.AllPoints)

	list, err := store.GetAssetsList()
	if err != nil {
		panic(fmt.Sprintf("Failed to read assets list: %v", err))
	}
	if list == nil {
		fmt.Println("assets:           none registered")
		return
	}
	for i, asset := range list.Assets {
		kind := "synthetic"
		if asset.Collateral.IsCollateral {
			kind = "collateral"
		}
		fmt.Printf("asset %2d (%s): price %d, supply %d\n", i, kind, asset.Price, asset.Synthetic.Supply)
	}
}
