package auction

import (
	"math/big"
	"strconv"

	"editionhouse/core/events"
	"editionhouse/core/types"
)

const (
	EventTypeEnglishCreated   = "auction.english.created"
	EventTypeBidPlaced        = "auction.english.bid"
	EventTypeBidRefunded      = "auction.english.refund"
	EventTypeEnglishWon       = "auction.english.won"
	EventTypeEnglishNoWinner  = "auction.english.no_winner"
	EventTypeEnglishClaimed   = "auction.english.claimed"
	EventTypeDutchCreated     = "auction.dutch.created"
	EventTypeDutchSale        = "auction.dutch.sale"
	EventTypeDiscountGranted  = "auction.discount.granted"
	EventTypeDiscountConsumed = "auction.discount.consumed"
	EventTypePayoutSent       = "auction.payout.sent"
	EventTypeFeeDistributed   = "auction.fee.distributed"
	EventTypeFeesWithdrawn    = "auction.fee.withdrawn"
	EventTypeParamUpdated     = "auction.param.updated"
	EventTypeTokenClaimed     = "auction.token.claimed"
)

type auctionEvent struct {
	evt *types.Event
}

func (e auctionEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e auctionEvent) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return auctionEvent{evt: evt} }

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// EnglishCreatedEvent describes a freshly created English auction.
func EnglishCreatedEvent(a *EnglishAuction) *types.Event {
	return &types.Event{
		Type: EventTypeEnglishCreated,
		Attributes: map[string]string{
			"startTime":       strconv.FormatInt(a.StartTime, 10),
			"endTime":         strconv.FormatInt(a.EndTime, 10),
			"startPrice":      amountString(a.StartPrice),
			"reservedPrice":   amountString(a.ReservedPrice),
			"bidIncrementBps": strconv.FormatUint(uint64(a.BidIncrementBps), 10),
		},
	}
}

// BidPlacedEvent records an accepted bid.
func BidPlacedEvent(bid *Bid, minimum *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeBidPlaced,
		Attributes: map[string]string{
			"bidder":  hexAddr(bid.Bidder),
			"amount":  amountString(bid.Amount),
			"minimum": amountString(minimum),
		},
	}
}

// BidRefundedEvent records the refund of an outbid bidder.
func BidRefundedEvent(bidder [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeBidRefunded,
		Attributes: map[string]string{
			"bidder": hexAddr(bidder),
			"amount": amountString(amount),
		},
	}
}

// EnglishWonEvent announces the winner when the English auction closes.
func EnglishWonEvent(winner [20]byte, amount *big.Int, endTime int64) *types.Event {
	return &types.Event{
		Type: EventTypeEnglishWon,
		Attributes: map[string]string{
			"winner":  hexAddr(winner),
			"amount":  amountString(amount),
			"endTime": strconv.FormatInt(endTime, 10),
		},
	}
}

// EnglishNoWinnerEvent announces a close without bids.
func EnglishNoWinnerEvent(endTime int64) *types.Event {
	return &types.Event{
		Type:       EventTypeEnglishNoWinner,
		Attributes: map[string]string{"endTime": strconv.FormatInt(endTime, 10)},
	}
}

// EnglishClaimedEvent records the winner's settlement.
func EnglishClaimedEvent(winner [20]byte, tokenID uint64, amount *big.Int, settlementID string) *types.Event {
	return &types.Event{
		Type: EventTypeEnglishClaimed,
		Attributes: map[string]string{
			"winner":       hexAddr(winner),
			"tokenId":      strconv.FormatUint(tokenID, 10),
			"amount":       amountString(amount),
			"settlementId": settlementID,
		},
	}
}

// DutchCreatedEvent describes a (re)created Dutch auction.
func DutchCreatedEvent(d *DutchAuction) *types.Event {
	return &types.Event{
		Type: EventTypeDutchCreated,
		Attributes: map[string]string{
			"startTime":        strconv.FormatInt(d.StartTime, 10),
			"startPrice":       amountString(d.StartPrice),
			"floorPrice":       amountString(d.FloorPrice),
			"discountRateBps":  strconv.FormatUint(uint64(d.DiscountRateBps), 10),
			"discountInterval": strconv.FormatUint(d.DiscountInterval, 10),
			"generation":       strconv.FormatUint(d.Generation, 10),
		},
	}
}

// DutchSaleEvent records a completed purchase. Paid is the full amount the
// buyer sent, which may exceed the settled price.
func DutchSaleEvent(sale *Sale, settlementID string) *types.Event {
	return &types.Event{
		Type: EventTypeDutchSale,
		Attributes: map[string]string{
			"buyer":           hexAddr(sale.Buyer),
			"tokenId":         strconv.FormatUint(sale.TokenID, 10),
			"price":           amountString(sale.Price),
			"settledPrice":    amountString(sale.SettledPrice),
			"paid":            amountString(sale.Paid),
			"discountApplied": strconv.FormatBool(sale.DiscountApplied),
			"generation":      strconv.FormatUint(sale.Generation, 10),
			"settlementId":    settlementID,
		},
	}
}

// DiscountGrantedEvent records a wallet becoming discount-eligible.
func DiscountGrantedEvent(wallet [20]byte, source string) *types.Event {
	return &types.Event{
		Type: EventTypeDiscountGranted,
		Attributes: map[string]string{
			"wallet": hexAddr(wallet),
			"source": source,
		},
	}
}

// DiscountConsumedEvent records a wallet spending its discount.
func DiscountConsumedEvent(wallet [20]byte, price, discounted *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeDiscountConsumed,
		Attributes: map[string]string{
			"wallet":          hexAddr(wallet),
			"price":           amountString(price),
			"discountedPrice": amountString(discounted),
		},
	}
}

// PayoutSentEvent records an itemised creator payout.
func PayoutSentEvent(tokenID uint64, receiver [20]byte, amount *big.Int, settlementID string) *types.Event {
	return &types.Event{
		Type: EventTypePayoutSent,
		Attributes: map[string]string{
			"tokenId":      strconv.FormatUint(tokenID, 10),
			"receiver":     hexAddr(receiver),
			"amount":       amountString(amount),
			"settlementId": settlementID,
		},
	}
}

// FeeDistributedEvent records a fee tier transfer.
func FeeDistributedEvent(recipient [20]byte, shareBps uint32, amount *big.Int, settlementID string) *types.Event {
	return &types.Event{
		Type: EventTypeFeeDistributed,
		Attributes: map[string]string{
			"recipient":    hexAddr(recipient),
			"shareBps":     strconv.FormatUint(uint64(shareBps), 10),
			"amount":       amountString(amount),
			"settlementId": settlementID,
		},
	}
}

// FeesWithdrawnEvent records an operator withdrawal of accrued fees.
func FeesWithdrawnEvent(to [20]byte, amount, remaining *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeFeesWithdrawn,
		Attributes: map[string]string{
			"to":        hexAddr(to),
			"amount":    amountString(amount),
			"remaining": amountString(remaining),
		},
	}
}

// ParamUpdatedEvent is the change notification every admin setter emits.
func ParamUpdatedEvent(param, previous, current string) *types.Event {
	return &types.Event{
		Type: EventTypeParamUpdated,
		Attributes: map[string]string{
			"param":    param,
			"previous": previous,
			"current":  current,
		},
	}
}

// TokenClaimedEvent records the one-time claim of a collectible.
func TokenClaimedEvent(tokenID uint64, owner [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeTokenClaimed,
		Attributes: map[string]string{
			"tokenId": strconv.FormatUint(tokenID, 10),
			"owner":   hexAddr(owner),
		},
	}
}
