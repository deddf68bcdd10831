package auction

import (
	"fmt"
	"math/big"

	"editionhouse/native/fees"
)

// Payout is one itemised transfer of the creator-net share.
type Payout struct {
	Receiver [20]byte
	Amount   *big.Int
}

// Settlement describes how a sale amount was split.
type Settlement struct {
	ID         string
	TokenID    uint64
	Buyer      [20]byte
	Amount     *big.Int
	Net        *big.Int
	ServiceFee *big.Int
	Payouts    []Payout
	FeeShares  []fees.Allocation
	// Retained is the part of the service fee left undistributed by rounding
	// or by tiers that point at the engine itself.
	Retained *big.Int
	// Unpaid is the part of net the payout provider did not assign. It stays
	// in the engine account and is not withdrawable as fees.
	Unpaid *big.Int
	// Accrued is the service fee balance after the settlement.
	Accrued *big.Int
}

// split resolves the itemised payouts for net through the registry's payout
// provider, if it has one.
func (e *Engine) split(reg Registry, tokenID uint64, buyer [20]byte, net *big.Int) ([]Payout, *big.Int, error) {
	paid := big.NewInt(0)
	provider, ok := reg.Payouts()
	if !ok || provider == nil || net.Sign() == 0 {
		return nil, paid, nil
	}
	creator, err := provider.Creator(tokenID)
	if err != nil {
		return nil, nil, fmt.Errorf("payout creator: %w", err)
	}
	creatorIsBuyer := creator == buyer
	count, err := provider.PayoutCount(tokenID, creatorIsBuyer)
	if err != nil {
		return nil, nil, fmt.Errorf("payout count: %w", err)
	}
	receivers, shares, err := provider.PayoutInfo(tokenID, new(big.Int).Set(net), creatorIsBuyer)
	if err != nil {
		return nil, nil, fmt.Errorf("payout info: %w", err)
	}
	if count < 0 || len(receivers) != count || len(shares) != count {
		return nil, nil, ErrInvalidPayout
	}
	payouts := make([]Payout, 0, count)
	for i := range receivers {
		if receivers[i] == ([20]byte{}) {
			return nil, nil, ErrUnspecifiedPayee
		}
		if shares[i] == nil || shares[i].Sign() < 0 {
			return nil, nil, ErrInvalidPayout
		}
		paid.Add(paid, shares[i])
		payouts = append(payouts, Payout{Receiver: receivers[i], Amount: new(big.Int).Set(shares[i])})
	}
	if paid.Cmp(net) > 0 {
		return nil, nil, ErrInvalidPayout
	}
	return payouts, paid, nil
}

// settle splits amount, already held by the engine, between the creator
// payouts, the fee tiers and the service fee accrual. Only the service fee
// not sent to a tier is accrued. State is written before any transfer is
// made; a failing transfer aborts the enclosing operation.
func (e *Engine) settle(id string, tokenID uint64, buyer [20]byte, amount *big.Int) (*Settlement, error) {
	reg, err := e.requireRegistry()
	if err != nil {
		return nil, err
	}
	tiers, err := e.state.FeeTiersGet()
	if err != nil {
		return nil, fmt.Errorf("load fee tiers: %w", err)
	}
	net, serviceFee := fees.SplitServiceFee(amount, tiers.TotalBps())
	payouts, paid, err := e.split(reg, tokenID, buyer, net)
	if err != nil {
		return nil, err
	}
	allocations, distributed := tiers.Distribute(serviceFee, e.address)

	accrued, err := e.state.ServiceFeesGet()
	if err != nil {
		return nil, fmt.Errorf("load service fees: %w", err)
	}
	accrued = cloneBigInt(accrued)
	accrued.Add(accrued, serviceFee)
	accrued.Sub(accrued, distributed)
	if err := e.state.ServiceFeesPut(accrued); err != nil {
		return nil, fmt.Errorf("store service fees: %w", err)
	}

	for _, payout := range payouts {
		if err := e.transfer(payout.Receiver, payout.Amount); err != nil {
			return nil, err
		}
		e.emit(PayoutSentEvent(tokenID, payout.Receiver, payout.Amount, id))
	}
	for _, share := range allocations {
		if err := e.transfer(share.Recipient, share.Amount); err != nil {
			return nil, err
		}
		e.emit(FeeDistributedEvent(share.Recipient, share.ShareBps, share.Amount, id))
	}
	return &Settlement{
		ID:         id,
		TokenID:    tokenID,
		Buyer:      buyer,
		Amount:     cloneBigInt(amount),
		Net:        net,
		ServiceFee: serviceFee,
		Payouts:    payouts,
		FeeShares:  allocations,
		Retained:   new(big.Int).Sub(serviceFee, distributed),
		Unpaid:     new(big.Int).Sub(net, paid),
		Accrued:    accrued,
	}, nil
}
