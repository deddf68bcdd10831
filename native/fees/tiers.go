package fees

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	// BasisPoints is the denominator for every share expressed in bps.
	BasisPoints = 10_000
	// MaxTotalShareBps caps the sum of a non-empty fee tier table.
	MaxTotalShareBps = 9_999
)

var (
	ErrZeroRecipient = errors.New("fees: tier recipient must be set")
	ErrZeroShare     = errors.New("fees: tier share must be positive")
	ErrShareOverflow = errors.New("fees: tier shares exceed 99.99%")
)

var bpsDenominator = big.NewInt(BasisPoints)

// Tier routes a share of every collected service fee to a recipient.
type Tier struct {
	Recipient [20]byte
	ShareBps  uint32
}

// Table is the ordered set of fee tiers. Distribution follows table order.
type Table []Tier

// Clone returns a copy of the table that does not alias the receiver.
func (t Table) Clone() Table {
	if len(t) == 0 {
		return Table{}
	}
	return append(Table(nil), t...)
}

// TotalBps returns the sum of every tier share.
func (t Table) TotalBps() uint64 {
	var total uint64
	for _, tier := range t {
		total += uint64(tier.ShareBps)
	}
	return total
}

// Validate reports the first tier that breaks the table invariants. An empty
// table is valid and disables fee collection.
func (t Table) Validate() error {
	for i, tier := range t {
		if tier.Recipient == ([20]byte{}) {
			return fmt.Errorf("tier %d: %w", i, ErrZeroRecipient)
		}
		if tier.ShareBps == 0 {
			return fmt.Errorf("tier %d: %w", i, ErrZeroShare)
		}
	}
	if total := t.TotalBps(); total > MaxTotalShareBps {
		return fmt.Errorf("%w: %d bps", ErrShareOverflow, total)
	}
	return nil
}

// SplitServiceFee separates the service fee embedded in gross, where gross is
// the creator-net base marked up by totalBps. The net is rounded down so any
// rounding favours the fee.
func SplitServiceFee(gross *big.Int, totalBps uint64) (net, fee *big.Int) {
	if gross == nil || gross.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}
	net = new(big.Int).Mul(gross, bpsDenominator)
	net.Div(net, new(big.Int).SetUint64(BasisPoints+totalBps))
	fee = new(big.Int).Sub(gross, net)
	return net, fee
}

// Allocation is one tier's slice of a distributed service fee.
type Allocation struct {
	Recipient [20]byte
	ShareBps  uint32
	Amount    *big.Int
}

// Distribute splits fee across the tiers pro rata to their shares, skipping
// tiers whose recipient equals self. Amounts are floored; the returned total
// is therefore at most fee and the difference is left to the caller.
func (t Table) Distribute(fee *big.Int, self [20]byte) ([]Allocation, *big.Int) {
	distributed := big.NewInt(0)
	total := t.TotalBps()
	if fee == nil || fee.Sign() <= 0 || total == 0 {
		return nil, distributed
	}
	denominator := new(big.Int).SetUint64(total)
	allocations := make([]Allocation, 0, len(t))
	for _, tier := range t {
		if tier.Recipient == self {
			continue
		}
		amount := new(big.Int).Mul(fee, big.NewInt(int64(tier.ShareBps)))
		amount.Div(amount, denominator)
		if amount.Sign() == 0 {
			continue
		}
		allocations = append(allocations, Allocation{Recipient: tier.Recipient, ShareBps: tier.ShareBps, Amount: amount})
		distributed.Add(distributed, amount)
	}
	return allocations, distributed
}

// ApplyBps returns amount * bps / 10000 rounded down.
func ApplyBps(amount *big.Int, bps uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Div(out, bpsDenominator)
}
