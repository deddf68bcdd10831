package auction

import (
	"math/big"

	"github.com/holiman/uint256"

	"editionhouse/native/fees"
)

var bpsUint256 = uint256.NewInt(fees.BasisPoints)

// minimumBid returns the smallest acceptable next bid: the start price when
// no bid exists, otherwise the previous amount raised by incrementBps and
// rounded down.
func minimumBid(startPrice *big.Int, highest *Bid, incrementBps uint32) *big.Int {
	if highest.Empty() {
		return cloneBigInt(startPrice)
	}
	out := new(big.Int).Mul(highest.Amount, big.NewInt(int64(fees.BasisPoints)+int64(incrementBps)))
	return out.Div(out, big.NewInt(fees.BasisPoints))
}

// decayedPrice applies the per-interval discount to startPrice once for every
// whole interval elapsed between start and now, using 256-bit integer
// multiply-then-divide steps. The result never falls below floorPrice.
func decayedPrice(d *DutchAuction, now int64) (*big.Int, error) {
	if d == nil || d.StartPrice == nil || d.FloorPrice == nil || d.DiscountInterval == 0 {
		return nil, ErrDutchNotCreated
	}
	if now <= d.StartTime {
		return cloneBigInt(d.StartPrice), nil
	}
	intervals := uint64(now-d.StartTime) / d.DiscountInterval
	price, overflow := uint256.FromBig(d.StartPrice)
	if overflow {
		return nil, ErrInvalidAmount
	}
	floor, overflow := uint256.FromBig(d.FloorPrice)
	if overflow {
		return nil, ErrInvalidFloorPrice
	}
	factor := uint256.NewInt(uint64(fees.BasisPoints - d.DiscountRateBps))
	for i := uint64(0); i < intervals; i++ {
		// factor < 10000 so the quotient always fits.
		price, _ = new(uint256.Int).MulDivOverflow(price, factor, bpsUint256)
		if !price.Gt(floor) {
			return floor.ToBig(), nil
		}
	}
	return price.ToBig(), nil
}
