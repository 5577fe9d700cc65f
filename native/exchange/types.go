package exchange

import (
	"synthex/crypto"
)

// Registry capacities are protocol invariants: other logic depends on slots
// never being reused and the role indexes staying stable.
const (
	MaxAssets            = 30
	MaxCollateralEntries = 10
)

// UnsetDeadline marks an account that is not flagged for liquidation.
const UnsetDeadline = ^uint64(0)

// NeverStale marks a price that is exempt from oracle staleness checks. The
// stable synthetic carries it because its price is one by definition.
const NeverStale = ^uint64(0)

// AssetRole names the registry slots the engine relies on. Index 0 is
// always the debt-denominating stable synthetic and index 1 the primary
// collateral; CreateList seeds them in that order.
type AssetRole uint8

const (
	RoleStableSynthetic AssetRole = iota
	RolePrimaryCollateral
)

// StakingRound is one reward window of the three retained by the schedule.
type StakingRound struct {
	Start     uint64 // slot at which the round begins
	Amount    uint64 // reward tokens distributed over this round
	AllPoints uint64 // global points eligible for this round's rewards
}

// Staking is the epoch schedule embedded in the global state.
type Staking struct {
	FundAccount    crypto.Address // source account rewards are paid from
	RoundLength    uint32         // length of a round in slots
	AmountPerRound uint64
	FinishedRound  StakingRound
	CurrentRound   StakingRound
	NextRound      StakingRound
}

// UserStaking tracks one account's lazily reconciled reward points.
type UserStaking struct {
	AmountToClaim       uint64
	FinishedRoundPoints uint64
	CurrentRoundPoints  uint64
	NextRoundPoints     uint64
	LastUpdate          uint64
}

// Synthetic describes the mintable side of a registry entry.
type Synthetic struct {
	AssetAddress crypto.Address
	Supply       uint64
	Decimals     uint8
	MaxSupply    uint64
}

// Collateral describes the depositable side of a registry entry. Ratio is a
// percentage: one unit of collateral value grants ratio% of minting
// capacity.
type Collateral struct {
	IsCollateral      bool
	CollateralAddress crypto.Address
	ReserveAddress    crypto.Address
	ReserveBalance    uint64
	Decimals          uint8
	Ratio             uint8
}

// Asset is a registry entry: an oracle feed, its normalized price and the
// synthetic/collateral facets of the token it prices.
type Asset struct {
	FeedAddress crypto.Address
	Price       uint64 // scaled by 10^PriceOffset
	LastUpdate  uint64 // slot of the last oracle refresh
	Confidence  uint32
	Synthetic   Synthetic
	Collateral  Collateral
}

// AssetsList is the append-only asset registry. Slots are never reused, so
// an entry's index is a stable reference.
type AssetsList struct {
	Initialized bool
	Assets      []Asset
}

// Append adds a new registry entry, enforcing the protocol capacity.
func (l *AssetsList) Append(asset Asset) error {
	if len(l.Assets) >= MaxAssets {
		return ErrAssetsListFull
	}
	l.Assets = append(l.Assets, asset)
	return nil
}

// ByRole resolves a named role to its registry entry instead of spreading
// hard-coded indexes through the engine.
func (l *AssetsList) ByRole(role AssetRole) (*Asset, error) {
	idx := int(role)
	if !l.Initialized || idx >= len(l.Assets) {
		return nil, ErrUninitialized
	}
	return &l.Assets[idx], nil
}

// FindBySynthetic returns the entry whose synthetic token matches addr.
func (l *AssetsList) FindBySynthetic(addr crypto.Address) (*Asset, int) {
	for i := range l.Assets {
		if l.Assets[i].Synthetic.AssetAddress.Equal(addr) {
			return &l.Assets[i], i
		}
	}
	return nil, -1
}

// FindByReserve returns the entry whose collateral reserve matches addr.
func (l *AssetsList) FindByReserve(addr crypto.Address) (*Asset, int) {
	for i := range l.Assets {
		if l.Assets[i].Collateral.ReserveAddress.Equal(addr) {
			return &l.Assets[i], i
		}
	}
	return nil, -1
}

// FindByCollateral returns the entry whose collateral token matches addr.
func (l *AssetsList) FindByCollateral(addr crypto.Address) (*Asset, int) {
	for i := range l.Assets {
		if l.Assets[i].Collateral.CollateralAddress.Equal(addr) {
			return &l.Assets[i], i
		}
	}
	return nil, -1
}

// FindByFeed returns the entry whose oracle feed matches addr.
func (l *AssetsList) FindByFeed(addr crypto.Address) (*Asset, int) {
	for i := range l.Assets {
		if l.Assets[i].FeedAddress.Equal(addr) {
			return &l.Assets[i], i
		}
	}
	return nil, -1
}

// CollateralEntry records one collateral position held by an account.
// Index caches the asset's registry slot for cheap lookups.
type CollateralEntry struct {
	Amount            uint64
	CollateralAddress crypto.Address
	Index             uint8
}

// ExchangeAccount is the per-participant ledger record.
type ExchangeAccount struct {
	Owner               crypto.Address
	Version             uint8
	DebtShares          uint64
	LiquidationDeadline uint64
	Staking             UserStaking
	Collaterals         []CollateralEntry
}

// FindCollateral returns the entry for the given collateral token, or nil.
func (a *ExchangeAccount) FindCollateral(addr crypto.Address) *CollateralEntry {
	for i := range a.Collaterals {
		if a.Collaterals[i].CollateralAddress.Equal(addr) {
			return &a.Collaterals[i]
		}
	}
	return nil
}

// AppendCollateral adds a new position, enforcing the per-account capacity.
func (a *ExchangeAccount) AppendCollateral(entry CollateralEntry) error {
	if len(a.Collaterals) >= MaxCollateralEntries {
		return ErrCollateralsFull
	}
	a.Collaterals = append(a.Collaterals, entry)
	return nil
}

// CollateralBalance returns the held amount of the given collateral token,
// zero when the account has no matching entry.
func (a *ExchangeAccount) CollateralBalance(addr crypto.Address) uint64 {
	if entry := a.FindCollateral(addr); entry != nil {
		return entry.Amount
	}
	return 0
}

// State is the authoritative global ledger record, one per protocol
// instance. The liquidation parameters and account fields are retained as
// inert state: the liquidation subsystem is not part of this core.
type State struct {
	Admin                  crypto.Address
	Halted                 bool
	DebtShares             uint64
	CollateralToken        crypto.Address
	CollateralAccount      crypto.Address
	AssetsList             crypto.Address
	CollateralizationLevel uint32 // percent, e.g. 1000 = 1000%
	MaxDelay               uint32 // max oracle staleness in slots
	Fee                    uint32 // 300 = 0.3%
	LiquidationAccount     crypto.Address
	LiquidationPenalty     uint8
	LiquidationThreshold   uint8
	LiquidationBuffer      uint32
	AccountVersion         uint8
	Staking                Staking
}

// TokenAccount mirrors the metadata of an external token balance account the
// host ledger hands to the core: its own reference, its controlling
// identity, and the asset it holds.
type TokenAccount struct {
	Address crypto.Address
	Owner   crypto.Address
	Mint    crypto.Address
}

// TokenMover executes external balance movements. The core performs and
// persists all of its own bookkeeping before signalling the mover, so a
// mover failure never leaves the ledger partially applied.
type TokenMover interface {
	Transfer(from, to crypto.Address, amount uint64) error
	Mint(asset, to crypto.Address, amount uint64) error
	Burn(asset, from crypto.Address, amount uint64) error
}
