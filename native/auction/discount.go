package auction

import (
	"fmt"
	"math/big"

	"editionhouse/native/fees"
)

const (
	discountSourceSnapshot = "english_snapshot"
	discountSourceGrant    = "operator_grant"
)

// collectDiscountWallets walks the bid log from newest to oldest and returns
// up to limit distinct bidders in the order they were first seen.
func collectDiscountWallets(bids []*Bid, limit uint64) [][20]byte {
	if limit == 0 || len(bids) == 0 {
		return nil
	}
	seen := make(map[[20]byte]struct{})
	wallets := make([][20]byte, 0)
	for i := len(bids) - 1; i >= 0 && uint64(len(wallets)) < limit; i-- {
		bid := bids[i]
		if bid == nil {
			continue
		}
		if _, ok := seen[bid.Bidder]; ok {
			continue
		}
		seen[bid.Bidder] = struct{}{}
		wallets = append(wallets, bid.Bidder)
	}
	return wallets
}

func (e *Engine) snapshotDiscountWallets(limit uint64) ([][20]byte, error) {
	bids, err := e.state.EnglishBids()
	if err != nil {
		return nil, fmt.Errorf("load bids: %w", err)
	}
	wallets := collectDiscountWallets(bids, limit)
	for _, wallet := range wallets {
		if err := e.state.DiscountPut(wallet, true); err != nil {
			return nil, fmt.Errorf("store discount: %w", err)
		}
		e.emit(DiscountGrantedEvent(wallet, discountSourceSnapshot))
	}
	return wallets, nil
}

// GrantDiscount marks wallet as entitled to one discounted Dutch purchase.
func (e *Engine) GrantDiscount(caller [20]byte, wallet [20]byte) error {
	return e.execute("grant_discount", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		if wallet == ([20]byte{}) {
			return ErrZeroAddress
		}
		if err := e.state.DiscountPut(wallet, true); err != nil {
			return fmt.Errorf("store discount: %w", err)
		}
		e.emit(DiscountGrantedEvent(wallet, discountSourceGrant))
		return nil
	})
}

// HasDiscount reports whether wallet holds an unconsumed discount.
func (e *Engine) HasDiscount(wallet [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.DiscountGet(wallet)
}

// consumeDiscount applies and clears wallet's discount. It returns price
// unchanged when the wallet holds none.
func (e *Engine) consumeDiscount(wallet [20]byte, price *big.Int, percentBps uint32) (*big.Int, bool, error) {
	eligible, err := e.state.DiscountGet(wallet)
	if err != nil {
		return nil, false, fmt.Errorf("load discount: %w", err)
	}
	if !eligible {
		return cloneBigInt(price), false, nil
	}
	discounted := fees.ApplyBps(price, uint64(fees.BasisPoints-percentBps))
	if err := e.state.DiscountPut(wallet, false); err != nil {
		return nil, false, fmt.Errorf("store discount: %w", err)
	}
	e.emit(DiscountConsumedEvent(wallet, price, discounted))
	return discounted, true, nil
}
