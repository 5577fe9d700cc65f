package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"synthex/crypto"
	"synthex/storage"
)

var (
	stateKey      = []byte("exchange/state")
	assetsListKey = []byte("exchange/assets")
	accountPrefix = []byte("exchange/account/")
)

// Store persists the exchange records in a key-value database using RLP
// encoded mirrors of the in-memory types. Gets decode into fresh values, so
// callers can mutate freely without touching persisted state.
type Store struct {
	db storage.Database
}

func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

type storedStakingRound struct {
	Start     uint64
	Amount    uint64
	AllPoints uint64
}

type storedStaking struct {
	FundAccount    [crypto.AddressLength]byte
	RoundLength    uint32
	AmountPerRound uint64
	FinishedRound  storedStakingRound
	CurrentRound   storedStakingRound
	NextRound      storedStakingRound
}

type storedState struct {
	Admin                  [crypto.AddressLength]byte
	Halted                 bool
	DebtShares             uint64
	CollateralToken        [crypto.AddressLength]byte
	CollateralAccount      [crypto.AddressLength]byte
	AssetsList             [crypto.AddressLength]byte
	CollateralizationLevel uint32
	MaxDelay               uint32
	Fee                    uint32
	LiquidationAccount     [crypto.AddressLength]byte
	LiquidationPenalty     uint8
	LiquidationThreshold   uint8
	LiquidationBuffer      uint32
	AccountVersion         uint8
	Staking                storedStaking
}

type storedSynthetic struct {
	AssetAddress [crypto.AddressLength]byte
	Supply       uint64
	Decimals     uint8
	MaxSupply    uint64
}

type storedCollateral struct {
	IsCollateral      bool
	CollateralAddress [crypto.AddressLength]byte
	ReserveAddress    [crypto.AddressLength]byte
	ReserveBalance    uint64
	Decimals          uint8
	Ratio             uint8
}

type storedAsset struct {
	FeedAddress [crypto.AddressLength]byte
	Price       uint64
	LastUpdate  uint64
	Confidence  uint32
	Synthetic   storedSynthetic
	Collateral  storedCollateral
}

type storedAssetsList struct {
	Initialized bool
	Assets      []storedAsset
}

type storedUserStaking struct {
	AmountToClaim       uint64
	FinishedRoundPoints uint64
	CurrentRoundPoints  uint64
	NextRoundPoints     uint64
	LastUpdate          uint64
}

type storedCollateralEntry struct {
	Amount            uint64
	CollateralAddress [crypto.AddressLength]byte
	Index             uint8
}

type storedAccount struct {
	Owner               [crypto.AddressLength]byte
	Version             uint8
	DebtShares          uint64
	LiquidationDeadline uint64
	Staking             storedUserStaking
	Collaterals         []storedCollateralEntry
}

func packAddr(a crypto.Address) [crypto.AddressLength]byte {
	var out [crypto.AddressLength]byte
	copy(out[:], a.Bytes())
	return out
}

func unpackAddr(b [crypto.AddressLength]byte) crypto.Address {
	raw := make([]byte, crypto.AddressLength)
	copy(raw, b[:])
	return crypto.NewAddress(crypto.SynthPrefix, raw)
}

// GetState loads the global state, or (nil, nil) when none was written yet.
func (s *Store) GetState() (*State, error) {
	raw, err := s.db.Get(stateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedState
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("exchange: decode state: %w", err)
	}
	st := &State{
		Admin:                  unpackAddr(stored.Admin),
		Halted:                 stored.Halted,
		DebtShares:             stored.DebtShares,
		CollateralToken:        unpackAddr(stored.CollateralToken),
		CollateralAccount:      unpackAddr(stored.CollateralAccount),
		AssetsList:             unpackAddr(stored.AssetsList),
		CollateralizationLevel: stored.CollateralizationLevel,
		MaxDelay:               stored.MaxDelay,
		Fee:                    stored.Fee,
		LiquidationAccount:     unpackAddr(stored.LiquidationAccount),
		LiquidationPenalty:     stored.LiquidationPenalty,
		LiquidationThreshold:   stored.LiquidationThreshold,
		LiquidationBuffer:      stored.LiquidationBuffer,
		AccountVersion:         stored.AccountVersion,
		Staking: Staking{
			FundAccount:    unpackAddr(stored.Staking.FundAccount),
			RoundLength:    stored.Staking.RoundLength,
			AmountPerRound: stored.Staking.AmountPerRound,
			FinishedRound:  StakingRound(stored.Staking.FinishedRound),
			CurrentRound:   StakingRound(stored.Staking.CurrentRound),
			NextRound:      StakingRound(stored.Staking.NextRound),
		},
	}
	return st, nil
}

// PutState writes the global state.
func (s *Store) PutState(st *State) error {
	stored := storedState{
		Admin:                  packAddr(st.Admin),
		Halted:                 st.Halted,
		DebtShares:             st.DebtShares,
		CollateralToken:        packAddr(st.CollateralToken),
		CollateralAccount:      packAddr(st.CollateralAccount),
		AssetsList:             packAddr(st.AssetsList),
		CollateralizationLevel: st.CollateralizationLevel,
		MaxDelay:               st.MaxDelay,
		Fee:                    st.Fee,
		LiquidationAccount:     packAddr(st.LiquidationAccount),
		LiquidationPenalty:     st.LiquidationPenalty,
		LiquidationThreshold:   st.LiquidationThreshold,
		LiquidationBuffer:      st.LiquidationBuffer,
		AccountVersion:         st.AccountVersion,
		Staking: storedStaking{
			FundAccount:    packAddr(st.Staking.FundAccount),
			RoundLength:    st.Staking.RoundLength,
			AmountPerRound: st.Staking.AmountPerRound,
			FinishedRound:  storedStakingRound(st.Staking.FinishedRound),
			CurrentRound:   storedStakingRound(st.Staking.CurrentRound),
			NextRound:      storedStakingRound(st.Staking.NextRound),
		},
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("exchange: encode state: %w", err)
	}
	return s.db.Put(stateKey, raw)
}

// GetAssetsList loads the registry, or (nil, nil) when none was written yet.
func (s *Store) GetAssetsList() (*AssetsList, error) {
	raw, err := s.db.Get(assetsListKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedAssetsList
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("exchange: decode assets list: %w", err)
	}
	list := &AssetsList{Initialized: stored.Initialized}
	if len(stored.Assets) > 0 {
		list.Assets = make([]Asset, len(stored.Assets))
	}
	for i, a := range stored.Assets {
		list.Assets[i] = Asset{
			FeedAddress: unpackAddr(a.FeedAddress),
			Price:       a.Price,
			LastUpdate:  a.LastUpdate,
			Confidence:  a.Confidence,
			Synthetic: Synthetic{
				AssetAddress: unpackAddr(a.Synthetic.AssetAddress),
				Supply:       a.Synthetic.Supply,
				Decimals:     a.Synthetic.Decimals,
				MaxSupply:    a.Synthetic.MaxSupply,
			},
			Collateral: Collateral{
				IsCollateral:      a.Collateral.IsCollateral,
				CollateralAddress: unpackAddr(a.Collateral.CollateralAddress),
				ReserveAddress:    unpackAddr(a.Collateral.ReserveAddress),
				ReserveBalance:    a.Collateral.ReserveBalance,
				Decimals:          a.Collateral.Decimals,
				Ratio:             a.Collateral.Ratio,
			},
		}
	}
	return list, nil
}

// PutAssetsList writes the registry.
func (s *Store) PutAssetsList(list *AssetsList) error {
	stored := storedAssetsList{Initialized: list.Initialized}
	if len(list.Assets) > 0 {
		stored.Assets = make([]storedAsset, len(list.Assets))
	}
	for i, a := range list.Assets {
		stored.Assets[i] = storedAsset{
			FeedAddress: packAddr(a.FeedAddress),
			Price:       a.Price,
			LastUpdate:  a.LastUpdate,
			Confidence:  a.Confidence,
			Synthetic: storedSynthetic{
				AssetAddress: packAddr(a.Synthetic.AssetAddress),
				Supply:       a.Synthetic.Supply,
				Decimals:     a.Synthetic.Decimals,
				MaxSupply:    a.Synthetic.MaxSupply,
			},
			Collateral: storedCollateral{
				IsCollateral:      a.Collateral.IsCollateral,
				CollateralAddress: packAddr(a.Collateral.CollateralAddress),
				ReserveAddress:    packAddr(a.Collateral.ReserveAddress),
				ReserveBalance:    a.Collateral.ReserveBalance,
				Decimals:          a.Collateral.Decimals,
				Ratio:             a.Collateral.Ratio,
			},
		}
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("exchange: encode assets list: %w", err)
	}
	return s.db.Put(assetsListKey, raw)
}

func accountKey(addr crypto.Address) []byte {
	key := make([]byte, 0, len(accountPrefix)+crypto.AddressLength)
	key = append(key, accountPrefix...)
	return append(key, addr.Bytes()...)
}

// GetAccount loads one exchange account, or (nil, nil) when it does not
// exist.
func (s *Store) GetAccount(addr crypto.Address) (*ExchangeAccount, error) {
	raw, err := s.db.Get(accountKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedAccount
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("exchange: decode account: %w", err)
	}
	account := &ExchangeAccount{
		Owner:               unpackAddr(stored.Owner),
		Version:             stored.Version,
		DebtShares:          stored.DebtShares,
		LiquidationDeadline: stored.LiquidationDeadline,
		Staking:             UserStaking(stored.Staking),
	}
	if len(stored.Collaterals) > 0 {
		account.Collaterals = make([]CollateralEntry, len(stored.Collaterals))
	}
	for i, entry := range stored.Collaterals {
		account.Collaterals[i] = CollateralEntry{
			Amount:            entry.Amount,
			CollateralAddress: unpackAddr(entry.CollateralAddress),
			Index:             entry.Index,
		}
	}
	return account, nil
}

// PutAccount writes one exchange account keyed by its owner address.
func (s *Store) PutAccount(account *ExchangeAccount) error {
	stored := storedAccount{
		Owner:               packAddr(account.Owner),
		Version:             account.Version,
		DebtShares:          account.DebtShares,
		LiquidationDeadline: account.LiquidationDeadline,
		Staking:             storedUserStaking(account.Staking),
	}
	if len(account.Collaterals) > 0 {
		stored.Collaterals = make([]storedCollateralEntry, len(account.Collaterals))
	}
	for i, entry := range account.Collaterals {
		stored.Collaterals[i] = storedCollateralEntry{
			Amount:            entry.Amount,
			CollateralAddress: packAddr(entry.CollateralAddress),
			Index:             entry.Index,
		}
	}
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("exchange: encode account: %w", err)
	}
	return s.db.Put(accountKey(account.Owner), raw)
}
