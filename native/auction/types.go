package auction

import (
	"math/big"

	"editionhouse/native/fees"
)

// Phase is the lifecycle position of the English auction. Transitions only
// move forward: NotCreated -> Open -> Ended.
type Phase uint8

const (
	PhaseNotCreated Phase = iota
	PhaseOpen
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotCreated:
		return "not_created"
	case PhaseOpen:
		return "open"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Valid reports whether the phase value is within the supported range.
func (p Phase) Valid() bool { return p <= PhaseEnded }

// Bid is an immutable entry of the English auction bid log.
type Bid struct {
	Bidder [20]byte `json:"bidder"`
	Amount *big.Int `json:"amount"`
	// EffectiveAmount is reserved for discount-adjusted bidding and currently
	// mirrors Amount.
	EffectiveAmount *big.Int `json:"effectiveAmount"`
	PlacedAt        int64    `json:"placedAt"`
}

// Clone returns a deep copy of the bid.
func (b *Bid) Clone() *Bid {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Amount = cloneBigInt(b.Amount)
	clone.EffectiveAmount = cloneBigInt(b.EffectiveAmount)
	return &clone
}

// Empty reports whether the bid has never been set.
func (b *Bid) Empty() bool {
	return b == nil || b.Bidder == ([20]byte{}) || b.Amount == nil || b.Amount.Sign() == 0
}

// EnglishAuction is the single ascending-bid auction of the series.
type EnglishAuction struct {
	StartTime       int64    `json:"startTime"`
	EndTime         int64    `json:"endTime"`
	StartPrice      *big.Int `json:"startPrice"`
	ReservedPrice   *big.Int `json:"reservedPrice"`
	BidIncrementBps uint32   `json:"bidIncrementBps"`
	HighestBid      *Bid     `json:"highestBid,omitempty"`
	Phase           Phase    `json:"phase"`
	// Claimed latches once the winner has settled the auction.
	Claimed bool `json:"claimed"`
	// TokenID is the collectible minted to the winner, set when Claimed.
	TokenID uint64 `json:"tokenId,omitempty"`
}

// Clone returns a deep copy of the auction.
func (a *EnglishAuction) Clone() *EnglishAuction {
	if a == nil {
		return nil
	}
	clone := *a
	clone.StartPrice = cloneBigInt(a.StartPrice)
	clone.ReservedPrice = cloneBigInt(a.ReservedPrice)
	clone.HighestBid = a.HighestBid.Clone()
	return &clone
}

// EnglishOutcome reports the result of closing the English auction.
type EnglishOutcome struct {
	Won    bool
	Winner [20]byte
	Amount *big.Int
	// DiscountWallets lists the bidders marked discount-eligible, most recent first.
	DiscountWallets [][20]byte
}

// DutchAuction is the repeating descending-price sale that follows the
// English auction.
type DutchAuction struct {
	StartTime        int64    `json:"startTime"`
	StartPrice       *big.Int `json:"startPrice"`
	FloorPrice       *big.Int `json:"floorPrice"`
	DiscountRateBps  uint32   `json:"discountRateBps"`
	DiscountInterval uint64   `json:"discountIntervalSeconds"`
	// Generation increases every time the operator recreates the auction.
	Generation uint64 `json:"generation"`
}

// Clone returns a deep copy of the auction.
func (d *DutchAuction) Clone() *DutchAuction {
	if d == nil {
		return nil
	}
	clone := *d
	clone.StartPrice = cloneBigInt(d.StartPrice)
	clone.FloorPrice = cloneBigInt(d.FloorPrice)
	return &clone
}

// Sale is the receipt of a successful Dutch purchase.
type Sale struct {
	Buyer           [20]byte
	TokenID         uint64
	Price           *big.Int
	SettledPrice    *big.Int
	Paid            *big.Int
	DiscountApplied bool
	Generation      uint64
}

// Settings holds the operator-controlled parameters of the engine.
type Settings struct {
	Owner               [20]byte `json:"owner"`
	DiscountWalletCount uint64   `json:"discountWalletCount"`
	DiscountPercentBps  uint32   `json:"discountPercentBps"`
	Paused              bool     `json:"paused"`
}

// Clone returns a copy of the settings.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Snapshot is the plain, serialisable view of every record the engine owns.
type Snapshot struct {
	Settings        *Settings       `json:"settings"`
	English         *EnglishAuction `json:"english,omitempty"`
	Dutch           *DutchAuction   `json:"dutch,omitempty"`
	Bids            []*Bid          `json:"bids"`
	FeeTiers        fees.Table      `json:"feeTiers"`
	DiscountWallets [][20]byte      `json:"discountWallets"`
	ClaimedTokens   []uint64        `json:"claimedTokens"`
	ServiceFees     *big.Int        `json:"serviceFees"`
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
