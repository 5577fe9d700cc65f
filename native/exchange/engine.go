package exchange

import (
	"github.com/holiman/uint256"

	"synthex/config"
	"synthex/crypto"
)

// engineState is the narrow persistence surface the engine works against.
// Lookups return (nil, nil) when the record does not exist; implementations
// must hand back fresh copies so a failed operation never leaks partial
// mutations into persisted state.
type engineState interface {
	GetState() (*State, error)
	PutState(*State) error
	GetAssetsList() (*AssetsList, error)
	PutAssetsList(*AssetsList) error
	GetAccount(addr crypto.Address) (*ExchangeAccount, error)
	PutAccount(account *ExchangeAccount) error
}

// Engine executes the exchange's accounting operations against a backing
// state. The host drives the clock through SetSlot before each call.
type Engine struct {
	state engineState
	mover TokenMover
	slot  uint64
}

// NewEngine returns an engine with no backing state configured.
func NewEngine() *Engine {
	return &Engine{}
}

// SetState attaches the persistence backend used by subsequent operations.
func (e *Engine) SetState(state engineState) {
	if e == nil {
		return
	}
	e.state = state
}

// SetTokenMover attaches the external token executor. A nil mover leaves the
// bookkeeping fully functional with the external signals skipped.
func (e *Engine) SetTokenMover(mover TokenMover) {
	if e == nil {
		return
	}
	e.mover = mover
}

// SetSlot records the current slot used for staleness checks and staking
// round rotation.
func (e *Engine) SetSlot(slot uint64) {
	if e == nil {
		return
	}
	e.slot = slot
}

// InitParams collects everything Initialize needs to seed the global state.
type InitParams struct {
	Admin              crypto.Address
	AssetsList         crypto.Address
	LiquidationAccount crypto.Address
	StakingFundAccount crypto.Address
	Genesis            config.Genesis
}

// Initialize seeds the singleton global state. The staking schedule starts
// with an empty finished round, a current round opening now and a funded
// next round one round length ahead.
func (e *Engine) Initialize(params InitParams) error {
	if e.state == nil {
		return ErrNilState
	}
	existing, err := e.state.GetState()
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrInitialized
	}
	gen := params.Genesis.Normalise()
	nextStart, err := checkedAdd(e.slot, uint64(gen.StakingRoundLength))
	if err != nil {
		return err
	}
	st := &State{
		Admin:                  params.Admin,
		AssetsList:             params.AssetsList,
		CollateralizationLevel: gen.CollateralizationLevel,
		MaxDelay:               gen.MaxDelay,
		Fee:                    gen.Fee,
		LiquidationAccount:     params.LiquidationAccount,
		LiquidationPenalty:     gen.LiquidationPenalty,
		LiquidationThreshold:   gen.LiquidationThreshold,
		LiquidationBuffer:      gen.LiquidationBuffer,
		AccountVersion:         gen.AccountVersion,
		Staking: Staking{
			FundAccount:    params.StakingFundAccount,
			RoundLength:    gen.StakingRoundLength,
			AmountPerRound: gen.AmountPerRound,
			CurrentRound:   StakingRound{Start: e.slot},
			NextRound:      StakingRound{Start: nextStart, Amount: gen.AmountPerRound},
		},
	}
	return e.state.PutState(st)
}

// CreateExchangeAccount opens a fresh ledger record for owner.
func (e *Engine) CreateExchangeAccount(owner crypto.Address) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	existing, err := e.state.GetAccount(owner)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrInitialized
	}
	account := &ExchangeAccount{
		Owner:               owner,
		Version:             st.AccountVersion,
		LiquidationDeadline: UnsetDeadline,
	}
	return e.state.PutAccount(account)
}

// CreateAssetsList allocates the empty registry. CreateList seeds it.
func (e *Engine) CreateAssetsList() error {
	if e.state == nil {
		return ErrNilState
	}
	existing, err := e.state.GetAssetsList()
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrInitialized
	}
	return e.state.PutAssetsList(&AssetsList{})
}

// CreateList seeds the registry with its two fixed slots: index 0 is the
// stable synthetic at a constant price of one, index 1 the primary
// collateral. The capacity ratio of the collateral slot is derived from the
// configured collateralization level.
func (e *Engine) CreateList(collateralToken, collateralFeed, stableToken, reserve crypto.Address) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	list, err := e.state.GetAssetsList()
	if err != nil {
		return err
	}
	if list == nil {
		list = &AssetsList{}
	}
	if list.Initialized {
		return ErrInitialized
	}
	list.Assets = []Asset{
		{
			Price:      pow10u64[PriceOffset],
			LastUpdate: NeverStale,
			Synthetic: Synthetic{
				AssetAddress: stableToken,
				Decimals:     6,
				MaxSupply:    ^uint64(0),
			},
		},
		{
			FeedAddress: collateralFeed,
			// The collateral token is addressable as a synthetic so swap
			// attempts into it resolve and get rejected, but it is never
			// mintable.
			Synthetic: Synthetic{
				AssetAddress: collateralToken,
				Decimals:     6,
			},
			Collateral: Collateral{
				IsCollateral:      true,
				CollateralAddress: collateralToken,
				ReserveAddress:    reserve,
				Decimals:          6,
				Ratio:             collateralRatio(st.CollateralizationLevel),
			},
		},
	}
	list.Initialized = true
	st.CollateralToken = collateralToken
	st.CollateralAccount = reserve
	if err := e.state.PutAssetsList(list); err != nil {
		return err
	}
	return e.state.PutState(st)
}

// collateralRatio converts a collateralization level in percent into the
// per-asset capacity ratio: 1000% collateralization grants 10% of value.
func collateralRatio(level uint32) uint8 {
	if level == 0 {
		return 0
	}
	ratio := 10_000 / level
	if ratio > 100 {
		ratio = 100
	}
	return uint8(ratio)
}

// AddNewAsset appends a synthetic to the registry. Its price stays zero
// until the first oracle refresh, so it cannot be traded before one lands.
func (e *Engine) AddNewAsset(signer, feed, token crypto.Address, decimals uint8, maxSupply uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	if !signer.Equal(st.Admin) {
		return ErrUnauthorized
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	err = list.Append(Asset{
		FeedAddress: feed,
		Synthetic: Synthetic{
			AssetAddress: token,
			Decimals:     decimals,
			MaxSupply:    maxSupply,
		},
	})
	if err != nil {
		return err
	}
	return e.state.PutAssetsList(list)
}

// SetMaxSupply changes the supply ceiling of one synthetic.
func (e *Engine) SetMaxSupply(signer, token crypto.Address, maxSupply uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	if !signer.Equal(st.Admin) {
		return ErrUnauthorized
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	asset, _ := list.FindBySynthetic(token)
	if asset == nil {
		return ErrNoAssetFound
	}
	asset.Synthetic.MaxSupply = maxSupply
	return e.state.PutAssetsList(list)
}

// SetPriceFeed repoints one synthetic at a different oracle feed.
func (e *Engine) SetPriceFeed(signer, token, feed crypto.Address) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	if !signer.Equal(st.Admin) {
		return ErrUnauthorized
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	asset, idx := list.FindBySynthetic(token)
	if asset == nil || idx == int(RoleStableSynthetic) {
		return ErrNoAssetFound
	}
	asset.FeedAddress = feed
	return e.state.PutAssetsList(list)
}

// SetAssetsPrices normalizes a batch of raw oracle quotes onto the registry.
// The batch is all-or-nothing: any unknown feed or overflowing quote leaves
// the registry untouched.
func (e *Engine) SetAssetsPrices(signer crypto.Address, quotes []PriceQuote) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	if !signer.Equal(st.Admin) {
		return ErrUnauthorized
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	for _, quote := range quotes {
		asset, idx := list.FindByFeed(quote.Feed)
		if asset == nil || idx == int(RoleStableSynthetic) {
			return ErrNoAssetFound
		}
		if err := applyQuote(asset, quote, e.slot); err != nil {
			return err
		}
	}
	return e.state.PutAssetsList(list)
}

// Deposit moves collateral from a signer-owned token account into the
// reserve and records it on the target exchange account.
func (e *Engine) Deposit(signer, accountAddr crypto.Address, source TokenAccount, reserve crypto.Address, amount uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, accountAddr)
	if err != nil {
		return err
	}
	if !signer.Equal(source.Owner) {
		return ErrInvalidSigner
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	asset, idx := list.FindByReserve(reserve)
	if asset == nil {
		return ErrNoAssetFound
	}
	if !asset.Collateral.IsCollateral {
		return ErrNotCollateral
	}
	if !source.Mint.Equal(asset.Collateral.CollateralAddress) {
		return ErrNoAssetFound
	}
	asset.Collateral.ReserveBalance, err = checkedAdd(asset.Collateral.ReserveBalance, amount)
	if err != nil {
		return err
	}
	if entry := account.FindCollateral(asset.Collateral.CollateralAddress); entry != nil {
		entry.Amount, err = checkedAdd(entry.Amount, amount)
		if err != nil {
			return err
		}
	} else {
		err = account.AppendCollateral(CollateralEntry{
			Amount:            amount,
			CollateralAddress: asset.Collateral.CollateralAddress,
			Index:             uint8(idx),
		})
		if err != nil {
			return err
		}
	}
	if err := e.persist(st, list, account); err != nil {
		return err
	}
	if e.mover != nil {
		return e.mover.Transfer(source.Address, reserve, amount)
	}
	return nil
}

// Mint issues new stable synthetic against the signer's collateral headroom
// and charges the account the matching debt shares.
func (e *Engine) Mint(signer crypto.Address, recipient TokenAccount, amount uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, signer)
	if err != nil {
		return err
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	stable, err := list.ByRole(RoleStableSynthetic)
	if err != nil {
		return err
	}
	if !recipient.Mint.Equal(stable.Synthetic.AssetAddress) {
		return ErrNoAssetFound
	}
	totalDebt, err := calculateTotalDebt(list, e.slot, st.MaxDelay)
	if err != nil {
		return err
	}
	userDebt, err := userDebtValue(account.DebtShares, totalDebt, st.DebtShares)
	if err != nil {
		return err
	}
	maxDebt, err := maxDebtValue(account, list)
	if err != nil {
		return err
	}
	newDebt, err := checkedAdd(userDebt, amount)
	if err != nil {
		return err
	}
	// Minting exactly to the limit is allowed; only crossing it fails.
	if maxDebt.Cmp(uint256.NewInt(newDebt)) < 0 {
		return ErrMintLimit
	}
	shares, err := sharesForMint(st.DebtShares, totalDebt, amount)
	if err != nil {
		return err
	}
	account.DebtShares, err = checkedAdd(account.DebtShares, shares)
	if err != nil {
		return err
	}
	st.DebtShares, err = checkedAdd(st.DebtShares, shares)
	if err != nil {
		return err
	}
	account.Staking.NextRoundPoints = account.DebtShares
	st.Staking.NextRound.AllPoints = st.DebtShares
	newSupply, err := checkedAdd(stable.Synthetic.Supply, amount)
	if err != nil {
		return err
	}
	if err := setAssetSupply(stable, newSupply); err != nil {
		return err
	}
	if err := e.persist(st, list, account); err != nil {
		return err
	}
	if e.mover != nil {
		return e.mover.Mint(stable.Synthetic.AssetAddress, recipient.Address, amount)
	}
	return nil
}

// Withdraw releases collateral back to the signer, capped by the headroom
// the account's remaining debt leaves free.
func (e *Engine) Withdraw(signer crypto.Address, destination TokenAccount, amount uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, signer)
	if err != nil {
		return err
	}
	if !signer.Equal(destination.Owner) {
		return ErrInvalidSigner
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	asset, _ := list.FindByCollateral(destination.Mint)
	if asset == nil {
		return ErrNoAssetFound
	}
	entry := account.FindCollateral(destination.Mint)
	if entry == nil {
		return ErrNoAssetFound
	}
	totalDebt, err := calculateTotalDebt(list, e.slot, st.MaxDelay)
	if err != nil {
		return err
	}
	userDebt, err := userDebtValue(account.DebtShares, totalDebt, st.DebtShares)
	if err != nil {
		return err
	}
	maxDebt, err := maxDebtValue(account, list)
	if err != nil {
		return err
	}
	withdrawValue, err := maxWithdrawValue(maxDebt, userDebt, asset.Collateral.Ratio)
	if err != nil {
		return err
	}
	withdrawable, err := maxWithdrawableAmount(asset, withdrawValue, entry.Amount)
	if err != nil {
		return err
	}
	if amount > withdrawable {
		return ErrWithdrawLimit
	}
	entry.Amount, err = checkedSub(entry.Amount, amount)
	if err != nil {
		return err
	}
	asset.Collateral.ReserveBalance, err = checkedSub(asset.Collateral.ReserveBalance, amount)
	if err != nil {
		return err
	}
	if err := e.persist(st, list, account); err != nil {
		return err
	}
	if e.mover != nil {
		return e.mover.Transfer(asset.Collateral.ReserveAddress, destination.Address, amount)
	}
	return nil
}

// Burn retires stable synthetic against the signer's debt. When the implied
// shares cover the whole position the burn settles it exactly, clearing all
// shares and only charging the tokens the outstanding debt is worth.
func (e *Engine) Burn(signer crypto.Address, source TokenAccount, amount uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, signer)
	if err != nil {
		return err
	}
	if !signer.Equal(source.Owner) {
		return ErrInvalidSigner
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	stable, err := list.ByRole(RoleStableSynthetic)
	if err != nil {
		return err
	}
	if !source.Mint.Equal(stable.Synthetic.AssetAddress) {
		return ErrNoAssetFound
	}
	totalDebt, err := calculateTotalDebt(list, e.slot, st.MaxDelay)
	if err != nil {
		return err
	}
	userDebt, err := userDebtValue(account.DebtShares, totalDebt, st.DebtShares)
	if err != nil {
		return err
	}
	burnedShares, err := sharesForBurn(stable, userDebt, account.DebtShares, amount)
	if err != nil {
		return err
	}

	var burnedAmount uint64
	if burnedShares >= account.DebtShares {
		burnedAmount, err = maxBurnedAmount(stable, userDebt)
		if err != nil {
			return err
		}
		st.DebtShares, err = checkedSub(st.DebtShares, account.DebtShares)
		if err != nil {
			return err
		}
		st.Staking.NextRound.AllPoints = st.DebtShares
		st.Staking.CurrentRound.AllPoints, err = checkedSub(st.Staking.CurrentRound.AllPoints, account.Staking.CurrentRoundPoints)
		if err != nil {
			return err
		}
		account.Staking.NextRoundPoints = 0
		account.Staking.CurrentRoundPoints = 0
		account.DebtShares = 0
	} else {
		burnedAmount = amount
		st.DebtShares, err = checkedSub(st.DebtShares, burnedShares)
		if err != nil {
			return err
		}
		account.DebtShares, err = checkedSub(account.DebtShares, burnedShares)
		if err != nil {
			return err
		}
		account.Staking.NextRoundPoints = account.DebtShares
		st.Staking.NextRound.AllPoints = st.DebtShares
		if account.Staking.CurrentRoundPoints >= burnedShares {
			account.Staking.CurrentRoundPoints -= burnedShares
			st.Staking.CurrentRound.AllPoints, err = checkedSub(st.Staking.CurrentRound.AllPoints, burnedShares)
			if err != nil {
				return err
			}
		} else {
			st.Staking.CurrentRound.AllPoints, err = checkedSub(st.Staking.CurrentRound.AllPoints, account.Staking.CurrentRoundPoints)
			if err != nil {
				return err
			}
			account.Staking.CurrentRoundPoints = 0
		}
	}

	newSupply, err := checkedSub(stable.Synthetic.Supply, burnedAmount)
	if err != nil {
		return err
	}
	if err := setAssetSupply(stable, newSupply); err != nil {
		return err
	}
	if err := e.persist(st, list, account); err != nil {
		return err
	}
	if e.mover != nil && burnedAmount > 0 {
		return e.mover.Burn(stable.Synthetic.AssetAddress, source.Address, burnedAmount)
	}
	return nil
}

// Swap exchanges one synthetic for another at oracle prices, net of the
// discounted fee. Debt shares are untouched: total debt value is conserved
// up to rounding, which always favors the protocol. Collateral-backed
// registry entries are rejected on both sides of the trade, not just the
// output side.
func (e *Engine) Swap(signer crypto.Address, tokenIn, tokenFor crypto.Address, source TokenAccount, amount uint64) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, signer)
	if err != nil {
		return err
	}
	if tokenIn.Equal(tokenFor) {
		return ErrWashTrade
	}
	list, err := e.loadAssetsList()
	if err != nil {
		return err
	}
	collateral, err := list.ByRole(RolePrimaryCollateral)
	if err != nil {
		return err
	}
	inAsset, _ := list.FindBySynthetic(tokenIn)
	forAsset, _ := list.FindBySynthetic(tokenFor)
	if inAsset == nil || forAsset == nil {
		return ErrNoAssetFound
	}
	if forAsset.Collateral.IsCollateral || inAsset.Collateral.IsCollateral {
		return ErrSyntheticCollateral
	}
	if priceStale(inAsset.LastUpdate, e.slot, st.MaxDelay) || priceStale(forAsset.LastUpdate, e.slot, st.MaxDelay) {
		return ErrOutdatedOracle
	}
	if !signer.Equal(source.Owner) {
		return ErrInvalidSigner
	}
	if !source.Mint.Equal(tokenIn) {
		return ErrNoAssetFound
	}
	discount := swapDiscount(account.CollateralBalance(collateral.Collateral.CollateralAddress))
	fee := effectiveFee(st.Fee, discount)
	amountOut, err := swapOutAmount(inAsset, forAsset, amount, fee)
	if err != nil {
		return err
	}
	outSupply, err := checkedAdd(forAsset.Synthetic.Supply, amountOut)
	if err != nil {
		return err
	}
	if err := setAssetSupply(forAsset, outSupply); err != nil {
		return err
	}
	inSupply, err := checkedSub(inAsset.Synthetic.Supply, amount)
	if err != nil {
		return err
	}
	if err := setAssetSupply(inAsset, inSupply); err != nil {
		return err
	}
	if err := e.persist(st, list, account); err != nil {
		return err
	}
	if e.mover != nil {
		if err := e.mover.Burn(tokenIn, source.Address, amount); err != nil {
			return err
		}
		return e.mover.Mint(tokenFor, source.Owner, amountOut)
	}
	return nil
}

// ClaimRewards moves the account's finished-round reward slice into its
// claimable balance. Safe to call at any time; claiming twice in one round
// is a no-op.
func (e *Engine) ClaimRewards(accountAddr crypto.Address) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, accountAddr)
	if err != nil {
		return err
	}
	finished := st.Staking.FinishedRound
	if finished.Amount > 0 && finished.AllPoints > 0 && account.Staking.FinishedRoundPoints > 0 {
		reward, err := mulDiv(finished.Amount, account.Staking.FinishedRoundPoints, finished.AllPoints)
		if err != nil {
			return err
		}
		account.Staking.AmountToClaim, err = checkedAdd(account.Staking.AmountToClaim, reward)
		if err != nil {
			return err
		}
		account.Staking.FinishedRoundPoints = 0
	}
	return e.persist(st, nil, account)
}

// WithdrawRewards pays the claimable balance out of the staking fund.
func (e *Engine) WithdrawRewards(signer crypto.Address, destination TokenAccount) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	account, err := e.beginUserOp(st, signer)
	if err != nil {
		return err
	}
	if !signer.Equal(destination.Owner) {
		return ErrInvalidSigner
	}
	if account.Staking.AmountToClaim == 0 {
		return ErrNoRewards
	}
	amount := account.Staking.AmountToClaim
	account.Staking.AmountToClaim = 0
	if err := e.persist(st, nil, account); err != nil {
		return err
	}
	if e.mover != nil {
		return e.mover.Transfer(st.Staking.FundAccount, destination.Address, amount)
	}
	return nil
}

// SetHalted flips the emergency stop. It stays available while halted.
func (e *Engine) SetHalted(signer crypto.Address, halted bool) error {
	return e.adminSet(signer, func(st *State) { st.Halted = halted })
}

// SetFee changes the base swap fee, in hundredths of a basis point.
func (e *Engine) SetFee(signer crypto.Address, fee uint32) error {
	return e.adminSet(signer, func(st *State) { st.Fee = fee })
}

// SetMaxDelay changes the oracle staleness tolerance in slots.
func (e *Engine) SetMaxDelay(signer crypto.Address, maxDelay uint32) error {
	return e.adminSet(signer, func(st *State) { st.MaxDelay = maxDelay })
}

// SetCollateralizationLevel changes the level applied to collateral listed
// after the change. Existing registry entries keep their recorded ratio.
func (e *Engine) SetCollateralizationLevel(signer crypto.Address, level uint32) error {
	return e.adminSet(signer, func(st *State) { st.CollateralizationLevel = level })
}

// SetLiquidationPenalty updates the retained liquidation parameter.
func (e *Engine) SetLiquidationPenalty(signer crypto.Address, penalty uint8) error {
	return e.adminSet(signer, func(st *State) { st.LiquidationPenalty = penalty })
}

// SetLiquidationThreshold updates the retained liquidation parameter.
func (e *Engine) SetLiquidationThreshold(signer crypto.Address, threshold uint8) error {
	return e.adminSet(signer, func(st *State) { st.LiquidationThreshold = threshold })
}

// SetLiquidationBuffer updates the retained liquidation parameter.
func (e *Engine) SetLiquidationBuffer(signer crypto.Address, buffer uint32) error {
	return e.adminSet(signer, func(st *State) { st.LiquidationBuffer = buffer })
}

// SetStakingAmountPerRound changes the reward budget of rounds opening from
// the next rotation on, including the already-scheduled next round.
func (e *Engine) SetStakingAmountPerRound(signer crypto.Address, amount uint64) error {
	return e.adminSet(signer, func(st *State) {
		st.Staking.AmountPerRound = amount
		st.Staking.NextRound.Amount = amount
	})
}

// SetStakingRoundLength changes the rotation cadence from the next rotation.
func (e *Engine) SetStakingRoundLength(signer crypto.Address, length uint32) error {
	return e.adminSet(signer, func(st *State) { st.Staking.RoundLength = length })
}

func (e *Engine) adminSet(signer crypto.Address, apply func(*State)) error {
	st, err := e.loadState()
	if err != nil {
		return err
	}
	if !signer.Equal(st.Admin) {
		return ErrUnauthorized
	}
	apply(st)
	return e.state.PutState(st)
}

func (e *Engine) loadState() (*State, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	st, err := e.state.GetState()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrUninitialized
	}
	return st, nil
}

func (e *Engine) loadAssetsList() (*AssetsList, error) {
	list, err := e.state.GetAssetsList()
	if err != nil {
		return nil, err
	}
	if list == nil || !list.Initialized {
		return nil, ErrUninitialized
	}
	return list, nil
}

// beginUserOp runs the shared prologue of every user-facing operation:
// halt and version guards, then staking round rotation and lazy account
// reconciliation against the current slot.
func (e *Engine) beginUserOp(st *State, accountAddr crypto.Address) (*ExchangeAccount, error) {
	if st.Halted {
		return nil, ErrHalted
	}
	account, err := e.state.GetAccount(accountAddr)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Version != st.AccountVersion {
		return nil, ErrAccountVersion
	}
	if err := adjustStakingRounds(&st.Staking, e.slot, st.DebtShares); err != nil {
		return nil, err
	}
	adjustStakingAccount(account, &st.Staking)
	return account, nil
}

func setAssetSupply(asset *Asset, newSupply uint64) error {
	if newSupply > asset.Synthetic.MaxSupply {
		return ErrMaxSupply
	}
	asset.Synthetic.Supply = newSupply
	return nil
}

func (e *Engine) persist(st *State, list *AssetsList, account *ExchangeAccount) error {
	if list != nil {
		if err := e.state.PutAssetsList(list); err != nil {
			return err
		}
	}
	if account != nil {
		if err := e.state.PutAccount(account); err != nil {
			return err
		}
	}
	if st != nil {
		return e.state.PutState(st)
	}
	return nil
}
