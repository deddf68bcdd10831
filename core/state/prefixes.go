package state

import (
	"encoding/binary"
)

var (
	accountPrefix          = []byte("account:")
	auctionSettingsKey     = []byte("auction/settings")
	auctionEnglishKey      = []byte("auction/english")
	auctionDutchKey        = []byte("auction/dutch")
	auctionBidCountKey     = []byte("auction/bids/count")
	auctionBidPrefix       = []byte("auction/bids/")
	auctionFeeTiersKey     = []byte("auction/fee-tiers")
	auctionServiceFeesKey  = []byte("auction/service-fees")
	auctionDiscountPrefix  = []byte("auction/discount/")
	auctionDiscountIndex   = []byte("auction/discount-index")
	auctionClaimedPrefix   = []byte("auction/claimed/")
	auctionClaimedIndex    = []byte("auction/claimed-index")
	collectibleSupplyKey   = []byte("collectible/supply")
	collectibleTokenPrefix = []byte("collectible/token/")
	collectibleMintPrefix  = []byte("collectible/minted/")
)

func prefixed(prefix, suffix []byte) []byte {
	buf := make([]byte, len(prefix)+len(suffix))
	copy(buf, prefix)
	copy(buf[len(prefix):], suffix)
	return buf
}

func uint64Key(prefix []byte, v uint64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	return prefixed(prefix, raw[:])
}

func accountKey(addr []byte) []byte { return prefixed(accountPrefix, addr) }
