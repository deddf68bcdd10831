package collectible

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"editionhouse/native/auction"
	"editionhouse/native/fees"
)

type registryState interface {
	CollectibleSupplyGet() (uint64, error)
	CollectibleSupplyPut(supply uint64) error
	CollectibleTokenGet(tokenID uint64) (*Token, bool, error)
	CollectibleTokenPut(token *Token) error
	CollectibleMintedGet(wallet [20]byte) (uint64, error)
	CollectibleMintedPut(wallet [20]byte, count uint64) error
}

// ClaimStatus answers whether a token has been physically claimed. The
// auction engine satisfies it.
type ClaimStatus interface {
	TokenClaimed(tokenID uint64) (bool, error)
}

// Registry is the collectible ledger the auction engine mints through. It
// persists through the same state manager as the engine so failed engine
// operations roll back mints too.
type Registry struct {
	st     registryState
	series Series
	claims ClaimStatus
}

var (
	_ auction.Registry       = (*Registry)(nil)
	_ auction.PayoutProvider = (*Registry)(nil)
)

// NewRegistry creates a registry for series backed by st.
func NewRegistry(st registryState, series Series) (*Registry, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	series.Royalties = append([]Split(nil), series.Royalties...)
	return &Registry{st: st, series: series}, nil
}

// SetClaimStatus configures the source consulted by TokenURI.
func (r *Registry) SetClaimStatus(claims ClaimStatus) { r.claims = claims }

// Series returns the series parameters.
func (r *Registry) Series() Series {
	series := r.series
	series.Royalties = append([]Split(nil), r.series.Royalties...)
	return series
}

func (r *Registry) Address() [20]byte { return r.series.Address }

func (r *Registry) MaxMintPerWallet() (uint64, error) { return r.series.MaxMintPerWallet, nil }

func (r *Registry) MaxTotalSupply() (uint64, error) { return r.series.MaxTotalSupply, nil }

func (r *Registry) MintPerWallet(wallet [20]byte) (uint64, error) {
	if r == nil || r.st == nil {
		return 0, errNilState
	}
	return r.st.CollectibleMintedGet(wallet)
}

func (r *Registry) SetMintPerWallet(wallet [20]byte, count uint64) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	return r.st.CollectibleMintedPut(wallet, count)
}

func (r *Registry) TotalSupply() (uint64, error) {
	if r == nil || r.st == nil {
		return 0, errNilState
	}
	return r.st.CollectibleSupplyGet()
}

// Mint assigns the next token identifier to to. Identifiers start at 1.
func (r *Registry) Mint(to [20]byte) (uint64, error) {
	if r == nil || r.st == nil {
		return 0, errNilState
	}
	if to == ([20]byte{}) {
		return 0, ErrZeroAddress
	}
	supply, err := r.st.CollectibleSupplyGet()
	if err != nil {
		return 0, err
	}
	if supply >= r.series.MaxTotalSupply {
		return 0, ErrSupplyExhausted
	}
	token := &Token{ID: supply + 1, Owner: to, Creator: r.series.Creator}
	if err := r.st.CollectibleTokenPut(token); err != nil {
		return 0, err
	}
	if err := r.st.CollectibleSupplyPut(token.ID); err != nil {
		return 0, err
	}
	return token.ID, nil
}

// Token returns the record of tokenID.
func (r *Registry) Token(tokenID uint64) (*Token, error) {
	if r == nil || r.st == nil {
		return nil, errNilState
	}
	token, ok, err := r.st.CollectibleTokenGet(tokenID)
	if err != nil {
		return nil, err
	}
	if !ok || token == nil {
		return nil, fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	return token, nil
}

func (r *Registry) OwnerOf(tokenID uint64) ([20]byte, error) {
	token, err := r.Token(tokenID)
	if err != nil {
		return [20]byte{}, err
	}
	return token.Owner, nil
}

// Payouts exposes the royalty split as the engine's payout provider.
func (r *Registry) Payouts() (auction.PayoutProvider, bool) { return r, true }

func (r *Registry) Creator(tokenID uint64) ([20]byte, error) {
	token, err := r.Token(tokenID)
	if err != nil {
		return [20]byte{}, err
	}
	return token.Creator, nil
}

// PayoutCount returns the number of receivers PayoutInfo yields. A creator
// buying their own edition is not paid their remainder.
func (r *Registry) PayoutCount(tokenID uint64, creatorIsBuyer bool) (int, error) {
	if _, err := r.Token(tokenID); err != nil {
		return 0, err
	}
	count := len(r.series.Royalties)
	if !creatorIsBuyer {
		count++
	}
	return count, nil
}

// PayoutInfo splits amount across the royalty recipients, rounding each
// share down, and assigns the remainder to the creator.
func (r *Registry) PayoutInfo(tokenID uint64, amount *big.Int, creatorIsBuyer bool) ([][20]byte, []*big.Int, error) {
	token, err := r.Token(tokenID)
	if err != nil {
		return nil, nil, err
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	receivers := make([][20]byte, 0, len(r.series.Royalties)+1)
	shares := make([]*big.Int, 0, len(r.series.Royalties)+1)
	remainder := new(big.Int).Set(amount)
	for _, split := range r.series.Royalties {
		share := fees.ApplyBps(amount, uint64(split.ShareBps))
		remainder.Sub(remainder, share)
		receivers = append(receivers, split.Recipient)
		shares = append(shares, share)
	}
	if !creatorIsBuyer {
		receivers = append(receivers, token.Creator)
		shares = append(shares, remainder)
	}
	return receivers, shares, nil
}

// TokenURI resolves the metadata location of tokenID, switching to the
// claimed collection once the holder has redeemed the physical item.
func (r *Registry) TokenURI(tokenID uint64) (string, error) {
	if _, err := r.Token(tokenID); err != nil {
		return "", err
	}
	if r.claims == nil {
		return "", ErrClaimStatusNotSet
	}
	claimed, err := r.claims.TokenClaimed(tokenID)
	if err != nil {
		return "", err
	}
	base := r.series.UnclaimedURI
	if claimed {
		base = r.series.ClaimedURI
	}
	return strings.TrimSuffix(base, "/") + "/" + strconv.FormatUint(tokenID, 10), nil
}
