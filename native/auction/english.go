package auction

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"editionhouse/native/fees"
)

func (e *Engine) loadEnglish() (*EnglishAuction, error) {
	auction, ok, err := e.state.EnglishAuctionGet()
	if err != nil {
		return nil, fmt.Errorf("load english auction: %w", err)
	}
	if !ok || auction == nil {
		return &EnglishAuction{Phase: PhaseNotCreated}, nil
	}
	return auction, nil
}

// CreateEnglishAuction opens the one English auction of the series. It can
// succeed at most once.
func (e *Engine) CreateEnglishAuction(caller [20]byte, start, end int64, startPrice, reservedPrice *big.Int, incrementBps uint32) (*EnglishAuction, error) {
	var created *EnglishAuction
	err := e.execute("create_english", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		current, err := e.loadEnglish()
		if err != nil {
			return err
		}
		if current.Phase != PhaseNotCreated {
			return ErrEnglishExists
		}
		if start < e.now() || end <= start {
			return ErrInvalidTimeRange
		}
		if startPrice == nil || startPrice.Sign() <= 0 {
			return ErrZeroPrice
		}
		if reservedPrice == nil || reservedPrice.Cmp(startPrice) < 0 {
			return ErrReservedBelowStart
		}
		if incrementBps == 0 || incrementBps > fees.BasisPoints {
			return ErrInvalidIncrement
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		if err := e.requireSupply(reg); err != nil {
			return err
		}
		auction := &EnglishAuction{
			StartTime:       start,
			EndTime:         end,
			StartPrice:      cloneBigInt(startPrice),
			ReservedPrice:   cloneBigInt(reservedPrice),
			BidIncrementBps: incrementBps,
			Phase:           PhaseOpen,
		}
		if err := e.state.EnglishAuctionPut(auction); err != nil {
			return fmt.Errorf("store english auction: %w", err)
		}
		e.emit(EnglishCreatedEvent(auction))
		created = auction.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("english auction created", "start", start, "end", end, "startPrice", startPrice.String())
	return created, nil
}

// MinimumBid returns the smallest bid the English auction currently accepts.
func (e *Engine) MinimumBid() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	auction, err := e.loadEnglish()
	if err != nil {
		return nil, err
	}
	if auction.Phase == PhaseNotCreated {
		return nil, ErrEnglishNotCreated
	}
	return minimumBid(auction.StartPrice, auction.HighestBid, auction.BidIncrementBps), nil
}

// PlaceBid escrows amount from bidder as the new highest bid and refunds the
// previous highest bidder in full.
func (e *Engine) PlaceBid(bidder [20]byte, amount *big.Int) (*Bid, error) {
	var placed *Bid
	var refunded bool
	err := e.execute("place_bid", func() error {
		if err := e.guard(); err != nil {
			return err
		}
		auction, err := e.loadEnglish()
		if err != nil {
			return err
		}
		switch auction.Phase {
		case PhaseNotCreated:
			return ErrEnglishNotCreated
		case PhaseEnded:
			return ErrAuctionClosed
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		if err := e.requireMintAllowance(reg, bidder); err != nil {
			return err
		}
		now := e.now()
		if now < auction.StartTime {
			return ErrAuctionNotStarted
		}
		if now >= auction.EndTime {
			return ErrAuctionClosed
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		minimum := minimumBid(auction.StartPrice, auction.HighestBid, auction.BidIncrementBps)
		if amount.Cmp(minimum) < 0 {
			return ErrBidTooLow
		}
		if err := e.collect(bidder, amount); err != nil {
			return err
		}
		previous := auction.HighestBid
		bid := &Bid{
			Bidder:          bidder,
			Amount:          cloneBigInt(amount),
			EffectiveAmount: cloneBigInt(amount),
			PlacedAt:        now,
		}
		if err := e.state.EnglishBidAppend(bid); err != nil {
			return fmt.Errorf("append bid: %w", err)
		}
		auction.HighestBid = bid
		if err := e.state.EnglishAuctionPut(auction); err != nil {
			return fmt.Errorf("store english auction: %w", err)
		}
		e.emit(BidPlacedEvent(bid, minimum))
		if !previous.Empty() {
			if err := e.transfer(previous.Bidder, previous.Amount); err != nil {
				return err
			}
			e.emit(BidRefundedEvent(previous.Bidder, previous.Amount))
			refunded = true
		}
		placed = bid.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveBid(refunded)
	return placed, nil
}

// EndEnglishAuction closes the English auction, pulling its end time forward
// when called early. The first close snapshots discount wallets from the bid
// log; later calls report the same outcome without side effects.
func (e *Engine) EndEnglishAuction(caller [20]byte) (*EnglishOutcome, error) {
	var outcome *EnglishOutcome
	err := e.execute("end_english", func() error {
		settings, err := e.requireOwner(caller)
		if err != nil {
			return err
		}
		auction, err := e.loadEnglish()
		if err != nil {
			return err
		}
		if auction.Phase == PhaseNotCreated {
			return ErrEnglishNotCreated
		}
		outcome = &EnglishOutcome{Amount: big.NewInt(0)}
		if !auction.HighestBid.Empty() {
			outcome.Won = true
			outcome.Winner = auction.HighestBid.Bidder
			outcome.Amount = cloneBigInt(auction.HighestBid.Amount)
		}
		if auction.Phase == PhaseEnded {
			return nil
		}
		if now := e.now(); now < auction.EndTime {
			auction.EndTime = now
		}
		auction.Phase = PhaseEnded
		if err := e.state.EnglishAuctionPut(auction); err != nil {
			return fmt.Errorf("store english auction: %w", err)
		}
		if !outcome.Won {
			e.emit(EnglishNoWinnerEvent(auction.EndTime))
			return nil
		}
		wallets, err := e.snapshotDiscountWallets(settings.DiscountWalletCount)
		if err != nil {
			return err
		}
		outcome.DiscountWallets = wallets
		e.emit(EnglishWonEvent(outcome.Winner, outcome.Amount, auction.EndTime))
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("english auction ended", "won", outcome.Won, "winner", hexAddr(outcome.Winner), "amount", outcome.Amount.String())
	return outcome, nil
}

// ClaimEnglish mints the collectible to the winning bidder and settles the
// winning bid. It succeeds once.
func (e *Engine) ClaimEnglish(caller [20]byte) (*Settlement, error) {
	var settlement *Settlement
	err := e.execute("claim_english", func() error {
		if err := e.guard(); err != nil {
			return err
		}
		auction, err := e.loadEnglish()
		if err != nil {
			return err
		}
		if auction.Phase == PhaseNotCreated {
			return ErrEnglishNotCreated
		}
		if e.now() < auction.EndTime {
			return ErrEnglishNotEnded
		}
		if auction.Claimed {
			return ErrAlreadyClaimed
		}
		if auction.HighestBid.Empty() {
			return ErrNoWinner
		}
		if caller != auction.HighestBid.Bidder {
			return ErrNotWinner
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		tokenID, err := e.mint(reg, caller)
		if err != nil {
			return err
		}
		auction.Claimed = true
		auction.TokenID = tokenID
		if err := e.state.EnglishAuctionPut(auction); err != nil {
			return fmt.Errorf("store english auction: %w", err)
		}
		settlementID := uuid.NewString()
		settlement, err = e.settle(settlementID, tokenID, caller, auction.HighestBid.Amount)
		if err != nil {
			return err
		}
		e.emit(EnglishClaimedEvent(caller, tokenID, auction.HighestBid.Amount, settlementID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveSettlement("english", settlement.Amount, settlement.Retained, settlement.Accrued)
	e.logger.Info("english auction claimed", "winner", hexAddr(caller), "tokenId", settlement.TokenID, "amount", settlement.Amount.String(), "settlementId", settlement.ID)
	return settlement, nil
}
