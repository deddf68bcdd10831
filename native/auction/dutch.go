package auction

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"editionhouse/native/fees"
)

func (e *Engine) loadDutch() (*DutchAuction, error) {
	auction, ok, err := e.state.DutchAuctionGet()
	if err != nil {
		return nil, fmt.Errorf("load dutch auction: %w", err)
	}
	if !ok || auction == nil {
		return nil, ErrDutchNotCreated
	}
	return auction, nil
}

// CreateDutchAuction starts (or restarts) the Dutch auction. It requires the
// English auction to have been created and ended, and replaces any previous
// Dutch auction under a new generation.
func (e *Engine) CreateDutchAuction(caller [20]byte, start int64, startPrice, floorPrice *big.Int, discountRateBps uint32, intervalSeconds uint64) (*DutchAuction, error) {
	var created *DutchAuction
	err := e.execute("create_dutch", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		english, err := e.loadEnglish()
		if err != nil {
			return err
		}
		switch english.Phase {
		case PhaseNotCreated:
			return ErrEnglishNotCreated
		case PhaseOpen:
			return ErrEnglishNotEnded
		}
		if start < e.now() {
			return ErrInvalidStartTime
		}
		if startPrice == nil || startPrice.Sign() <= 0 {
			return ErrZeroPrice
		}
		if floorPrice == nil || floorPrice.Sign() <= 0 || floorPrice.Cmp(startPrice) > 0 {
			return ErrInvalidFloorPrice
		}
		if discountRateBps == 0 || discountRateBps >= fees.BasisPoints {
			return ErrInvalidDiscountRate
		}
		if intervalSeconds == 0 {
			return ErrInvalidInterval
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		if err := e.requireSupply(reg); err != nil {
			return err
		}
		var generation uint64 = 1
		previous, ok, err := e.state.DutchAuctionGet()
		if err != nil {
			return fmt.Errorf("load dutch auction: %w", err)
		}
		if ok && previous != nil {
			generation = previous.Generation + 1
		}
		auction := &DutchAuction{
			StartTime:        start,
			StartPrice:       cloneBigInt(startPrice),
			FloorPrice:       cloneBigInt(floorPrice),
			DiscountRateBps:  discountRateBps,
			DiscountInterval: intervalSeconds,
			Generation:       generation,
		}
		if err := e.state.DutchAuctionPut(auction); err != nil {
			return fmt.Errorf("store dutch auction: %w", err)
		}
		e.emit(DutchCreatedEvent(auction))
		created = auction.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("dutch auction created", "start", start, "startPrice", startPrice.String(), "floorPrice", floorPrice.String(), "generation", created.Generation)
	return created, nil
}

// CurrentPrice returns the Dutch price at the engine's current time.
func (e *Engine) CurrentPrice() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	auction, err := e.loadDutch()
	if err != nil {
		return nil, err
	}
	return decayedPrice(auction, e.now())
}

// Purchase buys one collectible at the current Dutch price on behalf of
// buyer, who pays payment. Any amount paid above the settled price stays in
// the engine account; it is not accrued as service fees.
func (e *Engine) Purchase(buyer [20]byte, payment *big.Int) (*Sale, error) {
	return e.purchase(buyer, payment, 0)
}

// PurchaseAt behaves like Purchase but fails with ErrStaleAuction when the
// Dutch auction has been recreated since the caller observed generation.
func (e *Engine) PurchaseAt(buyer [20]byte, payment *big.Int, generation uint64) (*Sale, error) {
	if generation == 0 {
		return nil, ErrStaleAuction
	}
	return e.purchase(buyer, payment, generation)
}

func (e *Engine) purchase(buyer [20]byte, payment *big.Int, generation uint64) (*Sale, error) {
	var sale *Sale
	var settlement *Settlement
	err := e.execute("purchase", func() error {
		if err := e.guard(); err != nil {
			return err
		}
		settings, err := e.settings()
		if err != nil {
			return err
		}
		auction, err := e.loadDutch()
		if err != nil {
			return err
		}
		if generation != 0 && generation != auction.Generation {
			return ErrStaleAuction
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		if err := e.requireMintAllowance(reg, buyer); err != nil {
			return err
		}
		now := e.now()
		if now < auction.StartTime {
			return ErrAuctionNotStarted
		}
		price, err := decayedPrice(auction, now)
		if err != nil {
			return err
		}
		settled, discounted, err := e.consumeDiscount(buyer, price, settings.DiscountPercentBps)
		if err != nil {
			return err
		}
		if payment == nil || payment.Cmp(settled) < 0 {
			return ErrInsufficientPayment
		}
		if err := e.collect(buyer, payment); err != nil {
			return err
		}
		tokenID, err := e.mint(reg, buyer)
		if err != nil {
			return err
		}
		settlementID := uuid.NewString()
		settlement, err = e.settle(settlementID, tokenID, buyer, settled)
		if err != nil {
			return err
		}
		sale = &Sale{
			Buyer:           buyer,
			TokenID:         tokenID,
			Price:           price,
			SettledPrice:    settled,
			Paid:            cloneBigInt(payment),
			DiscountApplied: discounted,
			Generation:      auction.Generation,
		}
		e.emit(DutchSaleEvent(sale, settlementID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sale.DiscountApplied {
		e.metrics.ObserveDiscountConsumed()
	}
	e.metrics.ObserveSettlement("dutch", settlement.Amount, settlement.Retained, settlement.Accrued)
	e.logger.Info("dutch sale settled", "buyer", hexAddr(buyer), "tokenId", sale.TokenID, "price", sale.Price.String(), "paid", sale.Paid.String(), "discount", sale.DiscountApplied, "settlementId", settlement.ID)
	return sale, nil
}
