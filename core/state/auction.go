package state

import (
	"fmt"
	"math/big"

	"editionhouse/native/auction"
	"editionhouse/native/fees"
)

type storedSettings struct {
	Owner               [20]byte
	DiscountWalletCount uint64
	DiscountPercentBps  uint32
	Paused              bool
}

type storedBid struct {
	Bidder          [20]byte
	Amount          *big.Int
	EffectiveAmount *big.Int
	PlacedAt        uint64
}

type storedEnglish struct {
	StartTime       uint64
	EndTime         uint64
	StartPrice      *big.Int
	ReservedPrice   *big.Int
	BidIncrementBps uint32
	HighestBid      *storedBid `rlp:"nil"`
	Phase           uint8
	Claimed         bool
	TokenID         uint64
}

type storedDutch struct {
	StartTime        uint64
	StartPrice       *big.Int
	FloorPrice       *big.Int
	DiscountRateBps  uint32
	DiscountInterval uint64
	Generation       uint64
}

type storedTier struct {
	Recipient [20]byte
	ShareBps  uint32
}

func unixToStored(ts int64) (uint64, error) {
	if ts < 0 {
		return 0, fmt.Errorf("state: negative timestamp %d", ts)
	}
	return uint64(ts), nil
}

func toStoredBid(bid *auction.Bid) (*storedBid, error) {
	if bid == nil {
		return nil, nil
	}
	placed, err := unixToStored(bid.PlacedAt)
	if err != nil {
		return nil, err
	}
	return &storedBid{Bidder: bid.Bidder, Amount: bid.Amount, EffectiveAmount: bid.EffectiveAmount, PlacedAt: placed}, nil
}

func (s *storedBid) toBid() *auction.Bid {
	if s == nil {
		return nil
	}
	return &auction.Bid{Bidder: s.Bidder, Amount: s.Amount, EffectiveAmount: s.EffectiveAmount, PlacedAt: int64(s.PlacedAt)}
}

// AuctionSettingsGet returns the operator settings.
func (m *Manager) AuctionSettingsGet() (*auction.Settings, bool, error) {
	var stored storedSettings
	ok, err := m.getRLP(auctionSettingsKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &auction.Settings{
		Owner:               stored.Owner,
		DiscountWalletCount: stored.DiscountWalletCount,
		DiscountPercentBps:  stored.DiscountPercentBps,
		Paused:              stored.Paused,
	}, true, nil
}

// AuctionSettingsPut stores the operator settings.
func (m *Manager) AuctionSettingsPut(settings *auction.Settings) error {
	if settings == nil {
		return fmt.Errorf("state: nil settings")
	}
	return m.putRLP(auctionSettingsKey, storedSettings{
		Owner:               settings.Owner,
		DiscountWalletCount: settings.DiscountWalletCount,
		DiscountPercentBps:  settings.DiscountPercentBps,
		Paused:              settings.Paused,
	})
}

// EnglishAuctionGet returns the English auction record.
func (m *Manager) EnglishAuctionGet() (*auction.EnglishAuction, bool, error) {
	var stored storedEnglish
	ok, err := m.getRLP(auctionEnglishKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	phase := auction.Phase(stored.Phase)
	if !phase.Valid() {
		return nil, false, fmt.Errorf("state: invalid english auction phase %d", stored.Phase)
	}
	return &auction.EnglishAuction{
		StartTime:       int64(stored.StartTime),
		EndTime:         int64(stored.EndTime),
		StartPrice:      stored.StartPrice,
		ReservedPrice:   stored.ReservedPrice,
		BidIncrementBps: stored.BidIncrementBps,
		HighestBid:      stored.HighestBid.toBid(),
		Phase:           phase,
		Claimed:         stored.Claimed,
		TokenID:         stored.TokenID,
	}, true, nil
}

// EnglishAuctionPut stores the English auction record.
func (m *Manager) EnglishAuctionPut(a *auction.EnglishAuction) error {
	if a == nil {
		return fmt.Errorf("state: nil english auction")
	}
	start, err := unixToStored(a.StartTime)
	if err != nil {
		return err
	}
	end, err := unixToStored(a.EndTime)
	if err != nil {
		return err
	}
	highest, err := toStoredBid(a.HighestBid)
	if err != nil {
		return err
	}
	return m.putRLP(auctionEnglishKey, storedEnglish{
		StartTime:       start,
		EndTime:         end,
		StartPrice:      a.StartPrice,
		ReservedPrice:   a.ReservedPrice,
		BidIncrementBps: a.BidIncrementBps,
		HighestBid:      highest,
		Phase:           uint8(a.Phase),
		Claimed:         a.Claimed,
		TokenID:         a.TokenID,
	})
}

func (m *Manager) bidCount() (uint64, error) {
	var count uint64
	if _, err := m.getRLP(auctionBidCountKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// EnglishBidAppend appends bid to the bid log.
func (m *Manager) EnglishBidAppend(bid *auction.Bid) error {
	if bid == nil {
		return fmt.Errorf("state: nil bid")
	}
	stored, err := toStoredBid(bid)
	if err != nil {
		return err
	}
	count, err := m.bidCount()
	if err != nil {
		return err
	}
	if err := m.putRLP(uint64Key(auctionBidPrefix, count), stored); err != nil {
		return err
	}
	return m.putRLP(auctionBidCountKey, count+1)
}

// EnglishBids returns the bid log in append order.
func (m *Manager) EnglishBids() ([]*auction.Bid, error) {
	count, err := m.bidCount()
	if err != nil {
		return nil, err
	}
	bids := make([]*auction.Bid, 0, count)
	for i := uint64(0); i < count; i++ {
		var stored storedBid
		ok, err := m.getRLP(uint64Key(auctionBidPrefix, i), &stored)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("state: bid %d missing", i)
		}
		bids = append(bids, stored.toBid())
	}
	return bids, nil
}

// DutchAuctionGet returns the current Dutch auction.
func (m *Manager) DutchAuctionGet() (*auction.DutchAuction, bool, error) {
	var stored storedDutch
	ok, err := m.getRLP(auctionDutchKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &auction.DutchAuction{
		StartTime:        int64(stored.StartTime),
		StartPrice:       stored.StartPrice,
		FloorPrice:       stored.FloorPrice,
		DiscountRateBps:  stored.DiscountRateBps,
		DiscountInterval: stored.DiscountInterval,
		Generation:       stored.Generation,
	}, true, nil
}

// DutchAuctionPut replaces the Dutch auction.
func (m *Manager) DutchAuctionPut(d *auction.DutchAuction) error {
	if d == nil {
		return fmt.Errorf("state: nil dutch auction")
	}
	start, err := unixToStored(d.StartTime)
	if err != nil {
		return err
	}
	return m.putRLP(auctionDutchKey, storedDutch{
		StartTime:        start,
		StartPrice:       d.StartPrice,
		FloorPrice:       d.FloorPrice,
		DiscountRateBps:  d.DiscountRateBps,
		DiscountInterval: d.DiscountInterval,
		Generation:       d.Generation,
	})
}

// FeeTiersGet returns the installed fee tier table.
func (m *Manager) FeeTiersGet() (fees.Table, error) {
	var stored []storedTier
	if _, err := m.getRLP(auctionFeeTiersKey, &stored); err != nil {
		return nil, err
	}
	table := make(fees.Table, 0, len(stored))
	for _, tier := range stored {
		table = append(table, fees.Tier{Recipient: tier.Recipient, ShareBps: tier.ShareBps})
	}
	return table, nil
}

// FeeTiersPut overwrites the fee tier table.
func (m *Manager) FeeTiersPut(table fees.Table) error {
	stored := make([]storedTier, 0, len(table))
	for _, tier := range table {
		stored = append(stored, storedTier{Recipient: tier.Recipient, ShareBps: tier.ShareBps})
	}
	return m.putRLP(auctionFeeTiersKey, stored)
}

// DiscountGet reports whether wallet holds an unconsumed discount.
func (m *Manager) DiscountGet(wallet [20]byte) (bool, error) {
	var eligible bool
	if _, err := m.getRLP(prefixed(auctionDiscountPrefix, wallet[:]), &eligible); err != nil {
		return false, err
	}
	return eligible, nil
}

// DiscountPut sets the discount flag of wallet.
func (m *Manager) DiscountPut(wallet [20]byte, eligible bool) error {
	key := prefixed(auctionDiscountPrefix, wallet[:])
	seen, err := m.get(key)
	if err != nil {
		return err
	}
	if seen == nil {
		var index [][20]byte
		if _, err := m.getRLP(auctionDiscountIndex, &index); err != nil {
			return err
		}
		if err := m.putRLP(auctionDiscountIndex, append(index, wallet)); err != nil {
			return err
		}
	}
	return m.putRLP(key, eligible)
}

// DiscountWallets lists the wallets currently holding a discount, in the
// order they were first recorded.
func (m *Manager) DiscountWallets() ([][20]byte, error) {
	var index [][20]byte
	if _, err := m.getRLP(auctionDiscountIndex, &index); err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(index))
	for _, wallet := range index {
		eligible, err := m.DiscountGet(wallet)
		if err != nil {
			return nil, err
		}
		if eligible {
			out = append(out, wallet)
		}
	}
	return out, nil
}

// TokenClaimedGet reports whether tokenID has been claimed.
func (m *Manager) TokenClaimedGet(tokenID uint64) (bool, error) {
	var claimed bool
	if _, err := m.getRLP(uint64Key(auctionClaimedPrefix, tokenID), &claimed); err != nil {
		return false, err
	}
	return claimed, nil
}

// TokenClaimedPut marks tokenID as claimed.
func (m *Manager) TokenClaimedPut(tokenID uint64) error {
	claimed, err := m.TokenClaimedGet(tokenID)
	if err != nil {
		return err
	}
	if claimed {
		return nil
	}
	var index []uint64
	if _, err := m.getRLP(auctionClaimedIndex, &index); err != nil {
		return err
	}
	if err := m.putRLP(auctionClaimedIndex, append(index, tokenID)); err != nil {
		return err
	}
	return m.putRLP(uint64Key(auctionClaimedPrefix, tokenID), true)
}

// ClaimedTokens lists claimed token identifiers in claim order.
func (m *Manager) ClaimedTokens() ([]uint64, error) {
	var index []uint64
	if _, err := m.getRLP(auctionClaimedIndex, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// ServiceFeesGet returns the accrued service fees.
func (m *Manager) ServiceFeesGet() (*big.Int, error) {
	amount := new(big.Int)
	if _, err := m.getRLP(auctionServiceFeesKey, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// ServiceFeesPut stores the accrued service fees.
func (m *Manager) ServiceFeesPut(amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative service fees")
	}
	return m.putRLP(auctionServiceFeesKey, amount)
}
