package exchange

import "errors"

// Every operation checks its preconditions before mutating state and aborts
// with one of these sentinels; callers match them with errors.Is.
var (
	ErrUnauthorized        = errors.New("exchange: caller is not admin")
	ErrInvalidSigner       = errors.New("exchange: invalid signer")
	ErrHalted              = errors.New("exchange: program is halted")
	ErrOutdatedOracle      = errors.New("exchange: oracle price is outdated")
	ErrMintLimit           = errors.New("exchange: mint limit crossed")
	ErrWithdrawLimit       = errors.New("exchange: withdraw limit crossed")
	ErrNoAssetFound        = errors.New("exchange: no asset with such address")
	ErrNotCollateral       = errors.New("exchange: asset is not collateral")
	ErrSyntheticCollateral = errors.New("exchange: synthetic collateral is not supported")
	ErrWashTrade           = errors.New("exchange: wash trade")
	ErrMaxSupply           = errors.New("exchange: asset max supply crossed")
	ErrAccountVersion      = errors.New("exchange: unsupported account version")
	ErrInitialized         = errors.New("exchange: already initialized")
	ErrUninitialized       = errors.New("exchange: not initialized")
	ErrNoRewards           = errors.New("exchange: no rewards to claim")
	ErrAccountNotFound     = errors.New("exchange: exchange account not found")
	ErrAssetsListFull      = errors.New("exchange: assets list capacity reached")
	ErrCollateralsFull     = errors.New("exchange: collateral list capacity reached")

	// ErrMathOverflow is returned whenever a checked arithmetic step would
	// overflow a fixed-width counter. Counters are never wrapped or
	// saturated; a wrong value here conjures or destroys ledger value.
	ErrMathOverflow = errors.New("exchange: checked arithmetic overflow")

	// Engine wiring faults, not protocol rejections.
	ErrNilState = errors.New("exchange: state not configured")
)
