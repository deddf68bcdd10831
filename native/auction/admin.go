package auction

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"editionhouse/native/fees"
)

// Initialize records the operator. It may only run once per state.
func (e *Engine) Initialize(owner [20]byte) error {
	return e.execute("initialize", func() error {
		if owner == ([20]byte{}) {
			return ErrZeroAddress
		}
		if _, ok, err := e.state.AuctionSettingsGet(); err != nil {
			return fmt.Errorf("load settings: %w", err)
		} else if ok {
			return ErrAlreadyInitialized
		}
		if err := e.state.AuctionSettingsPut(&Settings{Owner: owner}); err != nil {
			return fmt.Errorf("store settings: %w", err)
		}
		e.emit(ParamUpdatedEvent("owner", hexAddr([20]byte{}), hexAddr(owner)))
		return nil
	})
}

// updateSettings loads the settings for the operator, applies mutate and
// persists the result.
func (e *Engine) updateSettings(op string, caller [20]byte, mutate func(*Settings) error) error {
	return e.execute(op, func() error {
		settings, err := e.requireOwner(caller)
		if err != nil {
			return err
		}
		if err := mutate(settings); err != nil {
			return err
		}
		if err := e.state.AuctionSettingsPut(settings); err != nil {
			return fmt.Errorf("store settings: %w", err)
		}
		return nil
	})
}

// TransferOwnership hands the operator role to owner.
func (e *Engine) TransferOwnership(caller, owner [20]byte) error {
	return e.updateSettings("transfer_ownership", caller, func(s *Settings) error {
		if owner == ([20]byte{}) {
			return ErrZeroAddress
		}
		e.emit(ParamUpdatedEvent("owner", hexAddr(s.Owner), hexAddr(owner)))
		s.Owner = owner
		return nil
	})
}

// SetRegistry points the engine at the collectible registry it mints through.
func (e *Engine) SetRegistry(caller [20]byte, reg Registry) error {
	return e.execute("set_registry", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		if reg == nil || reg.Address() == ([20]byte{}) {
			return ErrZeroAddress
		}
		var previous [20]byte
		if e.registry != nil {
			previous = e.registry.Address()
		}
		e.registry = reg
		e.emit(ParamUpdatedEvent("registry", hexAddr(previous), hexAddr(reg.Address())))
		return nil
	})
}

// Registry returns the configured collectible registry, or nil.
func (e *Engine) Registry() Registry { return e.registry }

// SetFeeTiers replaces the whole fee tier table.
func (e *Engine) SetFeeTiers(caller [20]byte, table fees.Table) error {
	return e.execute("set_fee_tiers", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		if err := table.Validate(); err != nil {
			return ErrInvalidFeeTiers.wrap(err)
		}
		previous, err := e.state.FeeTiersGet()
		if err != nil {
			return fmt.Errorf("load fee tiers: %w", err)
		}
		if err := e.state.FeeTiersPut(table.Clone()); err != nil {
			return fmt.Errorf("store fee tiers: %w", err)
		}
		e.emit(ParamUpdatedEvent("feeTiers", tiersString(previous), tiersString(table)))
		return nil
	})
}

// SetDiscountWalletCount sets how many distinct recent bidders receive a
// discount when the English auction closes.
func (e *Engine) SetDiscountWalletCount(caller [20]byte, count uint64) error {
	return e.updateSettings("set_discount_wallet_count", caller, func(s *Settings) error {
		e.emit(ParamUpdatedEvent("discountWalletCount", strconv.FormatUint(s.DiscountWalletCount, 10), strconv.FormatUint(count, 10)))
		s.DiscountWalletCount = count
		return nil
	})
}

// SetDiscountPercent sets the discount applied to eligible Dutch purchases.
func (e *Engine) SetDiscountPercent(caller [20]byte, percentBps uint32) error {
	return e.updateSettings("set_discount_percent", caller, func(s *Settings) error {
		if percentBps > fees.BasisPoints {
			return ErrInvalidPercent
		}
		e.emit(ParamUpdatedEvent("discountPercentBps", strconv.FormatUint(uint64(s.DiscountPercentBps), 10), strconv.FormatUint(uint64(percentBps), 10)))
		s.DiscountPercentBps = percentBps
		return nil
	})
}

// Pause blocks bids, claims and purchases until Unpause.
func (e *Engine) Pause(caller [20]byte) error { return e.setPaused("pause", caller, true) }

// Unpause lifts a previous Pause.
func (e *Engine) Unpause(caller [20]byte) error { return e.setPaused("unpause", caller, false) }

func (e *Engine) setPaused(op string, caller [20]byte, paused bool) error {
	return e.updateSettings(op, caller, func(s *Settings) error {
		e.emit(ParamUpdatedEvent("paused", strconv.FormatBool(s.Paused), strconv.FormatBool(paused)))
		s.Paused = paused
		return nil
	})
}

// WithdrawFees pays accrued service fees to to. The amount is bounded by the
// accrued balance and by what the engine account actually holds.
func (e *Engine) WithdrawFees(caller, to [20]byte, amount *big.Int) error {
	var remaining *big.Int
	err := e.execute("withdraw_fees", func() error {
		if _, err := e.requireOwner(caller); err != nil {
			return err
		}
		if to == ([20]byte{}) {
			return ErrZeroAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		accrued, err := e.state.ServiceFeesGet()
		if err != nil {
			return fmt.Errorf("load service fees: %w", err)
		}
		accrued = cloneBigInt(accrued)
		if amount.Cmp(accrued) > 0 {
			return ErrWithdrawExceedsFees
		}
		held, err := e.balance(e.address)
		if err != nil {
			return err
		}
		if amount.Cmp(held) > 0 {
			return ErrWithdrawExceedsFunds
		}
		remaining = new(big.Int).Sub(accrued, amount)
		if err := e.state.ServiceFeesPut(remaining); err != nil {
			return fmt.Errorf("store service fees: %w", err)
		}
		if err := e.transfer(to, amount); err != nil {
			return err
		}
		e.emit(FeesWithdrawnEvent(to, amount, remaining))
		e.emit(ParamUpdatedEvent("serviceFees", accrued.String(), remaining.String()))
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.SetAccruedFees(remaining)
	e.logger.Info("service fees withdrawn", "to", hexAddr(to), "amount", amount.String(), "remaining", remaining.String())
	return nil
}

// MarkTokenClaimed records the one-time claim of tokenID by its owner, as
// reported by the registry.
func (e *Engine) MarkTokenClaimed(caller [20]byte, tokenID uint64) error {
	return e.execute("claim_token", func() error {
		if err := e.guard(); err != nil {
			return err
		}
		reg, err := e.requireRegistry()
		if err != nil {
			return err
		}
		owner, err := reg.OwnerOf(tokenID)
		if err != nil {
			return fmt.Errorf("registry owner of: %w", err)
		}
		if owner == ([20]byte{}) || owner != caller {
			return ErrNotTokenOwner
		}
		claimed, err := e.state.TokenClaimedGet(tokenID)
		if err != nil {
			return fmt.Errorf("load claim status: %w", err)
		}
		if claimed {
			return ErrTokenAlreadyClaimed
		}
		if err := e.state.TokenClaimedPut(tokenID); err != nil {
			return fmt.Errorf("store claim status: %w", err)
		}
		e.emit(TokenClaimedEvent(tokenID, caller))
		return nil
	})
}

// TokenClaimed reports whether tokenID has been claimed. Registries use it to
// choose between claimed and unclaimed presentation.
func (e *Engine) TokenClaimed(tokenID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.TokenClaimedGet(tokenID)
}

// Settings returns a copy of the operator settings.
func (e *Engine) Settings() (*Settings, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.settings()
}

// EnglishAuction returns the English auction record, with PhaseNotCreated
// when none exists.
func (e *Engine) EnglishAuction() (*EnglishAuction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadEnglish()
}

// DutchAuction returns the current Dutch auction.
func (e *Engine) DutchAuction() (*DutchAuction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadDutch()
}

// Bids returns the bid log in submission order.
func (e *Engine) Bids() ([]*Bid, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.EnglishBids()
}

// FeeTiers returns the installed fee tier table.
func (e *Engine) FeeTiers() (fees.Table, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.FeeTiersGet()
}

// AccruedFees returns the service fees available for withdrawal.
func (e *Engine) AccruedFees() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	accrued, err := e.state.ServiceFeesGet()
	if err != nil {
		return nil, err
	}
	return cloneBigInt(accrued), nil
}

// Snapshot exports every record owned by the engine.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	snap := &Snapshot{}
	settings, ok, err := e.state.AuctionSettingsGet()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.Settings = settings
	}
	english, ok, err := e.state.EnglishAuctionGet()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.English = english
	}
	dutch, ok, err := e.state.DutchAuctionGet()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.Dutch = dutch
	}
	if snap.Bids, err = e.state.EnglishBids(); err != nil {
		return nil, err
	}
	if snap.FeeTiers, err = e.state.FeeTiersGet(); err != nil {
		return nil, err
	}
	if snap.DiscountWallets, err = e.state.DiscountWallets(); err != nil {
		return nil, err
	}
	if snap.ClaimedTokens, err = e.state.ClaimedTokens(); err != nil {
		return nil, err
	}
	if snap.ServiceFees, err = e.AccruedFees(); err != nil {
		return nil, err
	}
	return snap, nil
}

func tiersString(table fees.Table) string {
	if len(table) == 0 {
		return "[]"
	}
	blob, err := json.Marshal(table)
	if err != nil {
		return fmt.Sprintf("%d tiers", len(table))
	}
	return string(blob)
}
