package auction

import "math/big"

// Registry is the collectible registry the engine mints through. Mutating
// calls are made while the engine holds its state snapshot, so a registry
// that persists through the same state manager is reverted together with the
// engine when an operation fails.
type Registry interface {
	Address() [20]byte
	MaxMintPerWallet() (uint64, error)
	MintPerWallet(wallet [20]byte) (uint64, error)
	SetMintPerWallet(wallet [20]byte, count uint64) error
	Mint(to [20]byte) (uint64, error)
	TotalSupply() (uint64, error)
	MaxTotalSupply() (uint64, error)
	OwnerOf(tokenID uint64) ([20]byte, error)
	// Payouts exposes the optional itemised payout capability. Registries
	// without one return false and the full net amount stays with the engine.
	Payouts() (PayoutProvider, bool)
}

// PayoutProvider resolves how the creator-net share of a sale is split.
type PayoutProvider interface {
	Creator(tokenID uint64) ([20]byte, error)
	PayoutCount(tokenID uint64, creatorIsBuyer bool) (int, error)
	PayoutInfo(tokenID uint64, amount *big.Int, creatorIsBuyer bool) ([][20]byte, []*big.Int, error)
}

// TransferHook observes every credit the engine makes after its own state
// has been updated. Returning an error rejects the transfer and reverts the
// enclosing operation. Hooks may call back into the engine; such calls fail
// with ErrReentrantCall.
type TransferHook func(from, to [20]byte, amount *big.Int) error
