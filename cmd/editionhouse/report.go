package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"editionhouse/native/auction"
	"editionhouse/native/fees"
	"editionhouse/services/eventlog"
)

func hexAddr(addr [20]byte) string { return ethcommon.Address(addr).Hex() }

func wei(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func hexList(addrs [][20]byte) []string {
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, hexAddr(addr))
	}
	return out
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type bidView struct {
	Bidder   string `json:"bidder"`
	Amount   string `json:"amount"`
	PlacedAt int64  `json:"placedAt"`
}

func newBidView(b *auction.Bid) *bidView {
	if b.Empty() {
		return nil
	}
	return &bidView{Bidder: hexAddr(b.Bidder), Amount: wei(b.Amount), PlacedAt: b.PlacedAt}
}

type englishView struct {
	Phase           string   `json:"phase"`
	StartTime       int64    `json:"startTime"`
	EndTime         int64    `json:"endTime"`
	StartPrice      string   `json:"startPrice"`
	ReservedPrice   string   `json:"reservedPrice"`
	BidIncrementBps uint32   `json:"bidIncrementBps"`
	HighestBid      *bidView `json:"highestBid,omitempty"`
	Claimed         bool     `json:"claimed"`
	TokenID         uint64   `json:"tokenId,omitempty"`
}

func newEnglishView(a *auction.EnglishAuction) *englishView {
	if a == nil {
		return nil
	}
	return &englishView{
		Phase:           a.Phase.String(),
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		StartPrice:      wei(a.StartPrice),
		ReservedPrice:   wei(a.ReservedPrice),
		BidIncrementBps: a.BidIncrementBps,
		HighestBid:      newBidView(a.HighestBid),
		Claimed:         a.Claimed,
		TokenID:         a.TokenID,
	}
}

type dutchView struct {
	StartTime        int64  `json:"startTime"`
	StartPrice       string `json:"startPrice"`
	FloorPrice       string `json:"floorPrice"`
	DiscountRateBps  uint32 `json:"discountRateBps"`
	DiscountInterval uint64 `json:"discountInterval"`
	Generation       uint64 `json:"generation"`
	CurrentPrice     string `json:"currentPrice,omitempty"`
}

func newDutchView(d *auction.DutchAuction) *dutchView {
	if d == nil {
		return nil
	}
	return &dutchView{
		StartTime:        d.StartTime,
		StartPrice:       wei(d.StartPrice),
		FloorPrice:       wei(d.FloorPrice),
		DiscountRateBps:  d.DiscountRateBps,
		DiscountInterval: d.DiscountInterval,
		Generation:       d.Generation,
	}
}

type outcomeView struct {
	Won             bool     `json:"won"`
	Winner          string   `json:"winner,omitempty"`
	Amount          string   `json:"amount,omitempty"`
	DiscountWallets []string `json:"discountWallets"`
}

func newOutcomeView(o *auction.EnglishOutcome) outcomeView {
	view := outcomeView{Won: o.Won, DiscountWallets: hexList(o.DiscountWallets)}
	if o.Won {
		view.Winner = hexAddr(o.Winner)
		view.Amount = wei(o.Amount)
	}
	return view
}

type payoutView struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type feeShareView struct {
	Recipient string `json:"recipient"`
	ShareBps  uint32 `json:"shareBps"`
	Amount    string `json:"amount"`
}

type settlementView struct {
	ID         string         `json:"settlementId"`
	TokenID    uint64         `json:"tokenId"`
	Buyer      string         `json:"buyer"`
	Amount     string         `json:"amount"`
	Net        string         `json:"net"`
	ServiceFee string         `json:"serviceFee"`
	Payouts    []payoutView   `json:"payouts"`
	FeeShares  []feeShareView `json:"feeShares"`
	Retained   string         `json:"retained"`
	Unpaid     string         `json:"unpaid"`
	Accrued    string         `json:"accrued"`
}

func newSettlementView(s *auction.Settlement) settlementView {
	view := settlementView{
		ID:         s.ID,
		TokenID:    s.TokenID,
		Buyer:      hexAddr(s.Buyer),
		Amount:     wei(s.Amount),
		Net:        wei(s.Net),
		ServiceFee: wei(s.ServiceFee),
		Payouts:    make([]payoutView, 0, len(s.Payouts)),
		FeeShares:  make([]feeShareView, 0, len(s.FeeShares)),
		Retained:   wei(s.Retained),
		Unpaid:     wei(s.Unpaid),
		Accrued:    wei(s.Accrued),
	}
	for _, p := range s.Payouts {
		view.Payouts = append(view.Payouts, payoutView{Receiver: hexAddr(p.Receiver), Amount: wei(p.Amount)})
	}
	for _, share := range s.FeeShares {
		view.FeeShares = append(view.FeeShares, feeShareView{Recipient: hexAddr(share.Recipient), ShareBps: share.ShareBps, Amount: wei(share.Amount)})
	}
	return view
}

type saleView struct {
	Buyer           string `json:"buyer"`
	TokenID         uint64 `json:"tokenId"`
	Price           string `json:"price"`
	SettledPrice    string `json:"settledPrice"`
	Paid            string `json:"paid"`
	DiscountApplied bool   `json:"discountApplied"`
	Generation      uint64 `json:"generation"`
}

func newSaleView(s *auction.Sale) saleView {
	return saleView{
		Buyer:           hexAddr(s.Buyer),
		TokenID:         s.TokenID,
		Price:           wei(s.Price),
		SettledPrice:    wei(s.SettledPrice),
		Paid:            wei(s.Paid),
		DiscountApplied: s.DiscountApplied,
		Generation:      s.Generation,
	}
}

// snapshotReport is the operator audit view of the engine state.
type snapshotReport struct {
	Initialized         bool                 `json:"initialized"`
	Owner               string               `json:"owner,omitempty"`
	Paused              bool                 `json:"paused"`
	DiscountWalletCount uint64               `json:"discountWalletCount"`
	DiscountPercentBps  uint32               `json:"discountPercentBps"`
	English             *englishView         `json:"english,omitempty"`
	Dutch               *dutchView           `json:"dutch,omitempty"`
	Bids                []bidView            `json:"bids"`
	FeeTiers            fees.Table           `json:"feeTiers"`
	DiscountWallets     []string             `json:"discountWallets"`
	ClaimedTokens       []uint64             `json:"claimedTokens"`
	ServiceFees         string               `json:"serviceFees"`
	EngineBalance       string               `json:"engineBalance"`
	TotalSupply         uint64               `json:"totalSupply"`
	MaxTotalSupply      uint64               `json:"maxTotalSupply"`
	Events              []eventlog.TypeCount `json:"events,omitempty"`
}

func newSnapshotReport(snap *auction.Snapshot) *snapshotReport {
	report := &snapshotReport{
		English:         newEnglishView(snap.English),
		Dutch:           newDutchView(snap.Dutch),
		Bids:            make([]bidView, 0, len(snap.Bids)),
		FeeTiers:        snap.FeeTiers.Clone(),
		DiscountWallets: hexList(snap.DiscountWallets),
		ClaimedTokens:   append([]uint64{}, snap.ClaimedTokens...),
		ServiceFees:     wei(snap.ServiceFees),
	}
	if s := snap.Settings; s != nil {
		report.Initialized = true
		report.Owner = hexAddr(s.Owner)
		report.Paused = s.Paused
		report.DiscountWalletCount = s.DiscountWalletCount
		report.DiscountPercentBps = s.DiscountPercentBps
	}
	for _, bid := range snap.Bids {
		if view := newBidView(bid); view != nil {
			report.Bids = append(report.Bids, *view)
		}
	}
	return report
}
