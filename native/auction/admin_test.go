package auction_test

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"editionhouse/core/state"
	"editionhouse/native/auction"
	"editionhouse/native/collectible"
	"editionhouse/native/common"
	"editionhouse/native/fees"
)

func TestInitialize(t *testing.T) {
	engine := auction.NewEngine(engineAddr)
	_, err := engine.CreateEnglishAuction(ownerAddr, 1, 2, eth(1, 1), eth(1, 1), 1)
	require.Error(t, err)

	engine.SetState(state.NewManager(nil))
	engine.SetMetrics(nil)
	require.ErrorIs(t, engine.Initialize([20]byte{}), auction.ErrZeroAddress)
	_, err = engine.Settings()
	require.ErrorIs(t, err, auction.ErrNotInitialized)
	require.ErrorIs(t, engine.Pause(ownerAddr), auction.ErrNotInitialized)

	require.NoError(t, engine.Initialize(ownerAddr))
	require.ErrorIs(t, engine.Initialize(alice), auction.ErrAlreadyInitialized)

	_, err = engine.CreateEnglishAuction(ownerAddr, 1<<40, 1<<41, eth(1, 1), eth(1, 1), 1)
	require.ErrorIs(t, err, auction.ErrRegistryNotSet)
	require.ErrorIs(t, engine.SetRegistry(ownerAddr, nil), auction.ErrZeroAddress)
}

func TestTransferOwnership(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.engine.TransferOwnership(alice, bob), auction.ErrNotOwner)
	require.ErrorIs(t, h.engine.TransferOwnership(ownerAddr, [20]byte{}), auction.ErrZeroAddress)
	require.NoError(t, h.engine.TransferOwnership(ownerAddr, bob))

	updates := h.events.OfType(auction.EventTypeParamUpdated)
	require.Len(t, updates, 1)
	require.Equal(t, "owner", updates[0].Attr("param"))
	require.Equal(t, ethcommon.Address(ownerAddr).Hex(), updates[0].Attr("previous"))
	require.Equal(t, ethcommon.Address(bob).Hex(), updates[0].Attr("current"))

	require.ErrorIs(t, h.engine.Pause(ownerAddr), auction.ErrNotOwner)
	require.NoError(t, h.engine.Pause(bob))
}

func TestSettingUpdatesEmitPreviousAndCurrent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.SetDiscountWalletCount(ownerAddr, 3))
	require.NoError(t, h.engine.SetDiscountPercent(ownerAddr, 1_500))
	require.ErrorIs(t, h.engine.SetDiscountPercent(ownerAddr, 10_001), auction.ErrInvalidPercent)
	require.ErrorIs(t, h.engine.SetDiscountWalletCount(alice, 1), auction.ErrNotOwner)

	updates := h.events.OfType(auction.EventTypeParamUpdated)
	require.Len(t, updates, 2)
	require.Equal(t, map[string]string{"param": "discountWalletCount", "previous": "0", "current": "3"}, updates[0].Attributes)
	require.Equal(t, map[string]string{"param": "discountPercentBps", "previous": "0", "current": "1500"}, updates[1].Attributes)

	settings, err := h.engine.Settings()
	require.NoError(t, err)
	require.Equal(t, uint64(3), settings.DiscountWalletCount)
	require.Equal(t, uint32(1_500), settings.DiscountPercentBps)
}

func TestSetFeeTiers(t *testing.T) {
	h := newHarness(t)
	err := h.engine.SetFeeTiers(ownerAddr, fees.Table{{Recipient: alice, ShareBps: 5_000}, {Recipient: bob, ShareBps: 5_000}})
	require.ErrorIs(t, err, auction.ErrInvalidFeeTiers)
	require.ErrorIs(t, err, fees.ErrShareOverflow)
	requireKind(t, err, auction.KindPrecondition)

	err = h.engine.SetFeeTiers(ownerAddr, fees.Table{{Recipient: [20]byte{}, ShareBps: 10}})
	require.ErrorIs(t, err, fees.ErrZeroRecipient)

	table := fees.Table{{Recipient: alice, ShareBps: 500}, {Recipient: bob, ShareBps: 300}}
	require.NoError(t, h.engine.SetFeeTiers(ownerAddr, table))
	got, err := h.engine.FeeTiers()
	require.NoError(t, err)
	require.Equal(t, table, got)

	require.NoError(t, h.engine.SetFeeTiers(ownerAddr, fees.Table{}))
	got, err = h.engine.FeeTiers()
	require.NoError(t, err)
	require.Empty(t, got)

	updates := h.events.OfType(auction.EventTypeParamUpdated)
	require.Len(t, updates, 2)
	require.Equal(t, "[]", updates[0].Attr("previous"))
	require.Equal(t, "[]", updates[1].Attr("current"))
}

func TestGrantDiscount(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.engine.GrantDiscount(alice, bob), auction.ErrNotOwner)
	require.ErrorIs(t, h.engine.GrantDiscount(ownerAddr, [20]byte{}), auction.ErrZeroAddress)
	require.NoError(t, h.engine.GrantDiscount(ownerAddr, bob))
	eligible, err := h.engine.HasDiscount(bob)
	require.NoError(t, err)
	require.True(t, eligible)
}

func TestPauseBlocksUserOperations(t *testing.T) {
	h := newHarness(t)
	h.openEnglish()
	require.ErrorIs(t, h.engine.Pause(alice), auction.ErrNotOwner)
	require.NoError(t, h.engine.Pause(ownerAddr))
	require.True(t, h.engine.IsPaused(auction.ModuleName))
	require.False(t, h.engine.IsPaused("swap"))

	_, err := h.engine.PlaceBid(alice, eth(1, 1))
	require.ErrorIs(t, err, auction.ErrPaused)
	require.ErrorIs(t, err, common.ErrModulePaused)
	requireKind(t, err, auction.KindState)

	h.now += 1_000
	_, err = h.engine.EndEnglishAuction(ownerAddr)
	require.NoError(t, err)
	_, err = h.engine.ClaimEnglish(alice)
	require.ErrorIs(t, err, auction.ErrPaused)
	h.openDutch()
	_, err = h.engine.Purchase(alice, eth(1, 1))
	require.ErrorIs(t, err, auction.ErrPaused)
	require.ErrorIs(t, h.engine.MarkTokenClaimed(alice, 1), auction.ErrPaused)

	require.NoError(t, h.engine.Unpause(ownerAddr))
	require.False(t, h.engine.IsPaused(auction.ModuleName))
	_, err = h.engine.Purchase(alice, eth(1, 1))
	require.NoError(t, err)
}

func TestWithdrawFees(t *testing.T) {
	h := newHarness(t)
	treasury := addr(0x7E)
	// A tier pointing at the engine keeps its share as accrued fees.
	require.NoError(t, h.engine.SetFeeTiers(ownerAddr, fees.Table{{Recipient: engineAddr, ShareBps: 2_500}}))
	h.closeEnglish(alice)
	h.openDutch()
	_, err := h.engine.Purchase(bob, eth(12, 10))
	require.NoError(t, err)
	h.requireBalance(creatorAddr, eth(8, 10))

	accrued, err := h.engine.AccruedFees()
	require.NoError(t, err)
	require.Zero(t, accrued.Cmp(eth(2, 10)))

	require.ErrorIs(t, h.engine.WithdrawFees(alice, treasury, eth(1, 10)), auction.ErrNotOwner)
	require.ErrorIs(t, h.engine.WithdrawFees(ownerAddr, [20]byte{}, eth(1, 10)), auction.ErrZeroAddress)
	require.ErrorIs(t, h.engine.WithdrawFees(ownerAddr, treasury, big.NewInt(0)), auction.ErrInvalidAmount)
	require.ErrorIs(t, h.engine.WithdrawFees(ownerAddr, treasury, eth(3, 10)), auction.ErrWithdrawExceedsFees)

	require.NoError(t, h.engine.WithdrawFees(ownerAddr, treasury, eth(5, 100)))
	h.requireBalance(treasury, eth(5, 100))
	accrued, err = h.engine.AccruedFees()
	require.NoError(t, err)
	require.Zero(t, accrued.Cmp(eth(15, 100)))
	withdrawn := h.events.OfType(auction.EventTypeFeesWithdrawn)
	require.Len(t, withdrawn, 1)
	require.Equal(t, eth(15, 100).String(), withdrawn[0].Attr("remaining"))

	h.setBalance(engineAddr, eth(1, 10))
	require.ErrorIs(t, h.engine.WithdrawFees(ownerAddr, treasury, eth(15, 100)), auction.ErrWithdrawExceedsFunds)
}

func TestMarkTokenClaimedUsesRegistryOwnership(t *testing.T) {
	h := newHarness(t)
	h.closeEnglish(alice)
	settlement, err := h.engine.ClaimEnglish(alice)
	require.NoError(t, err)
	tokenID := settlement.TokenID

	uri, err := h.registry.TokenURI(tokenID)
	require.NoError(t, err)
	require.Equal(t, "ipfs://unclaimed/1", uri)

	err = h.engine.MarkTokenClaimed(bob, tokenID)
	require.ErrorIs(t, err, auction.ErrNotTokenOwner)
	requireKind(t, err, auction.KindUnauthorized)

	require.NoError(t, h.engine.MarkTokenClaimed(alice, tokenID))
	claimed, err := h.engine.TokenClaimed(tokenID)
	require.NoError(t, err)
	require.True(t, claimed)
	uri, err = h.registry.TokenURI(tokenID)
	require.NoError(t, err)
	require.Equal(t, "ipfs://claimed/1", uri)

	require.ErrorIs(t, h.engine.MarkTokenClaimed(alice, tokenID), auction.ErrTokenAlreadyClaimed)
	require.ErrorIs(t, h.engine.MarkTokenClaimed(alice, 99), collectible.ErrTokenNotFound)
	require.Len(t, h.events.OfType(auction.EventTypeTokenClaimed), 1)
}

func TestSnapshotExportsRecords(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.SetFeeTiers(ownerAddr, fees.Table{{Recipient: carol, ShareBps: 100}}))
	require.NoError(t, h.engine.SetDiscountWalletCount(ownerAddr, 1))
	h.closeEnglish(alice)
	_, err := h.engine.ClaimEnglish(alice)
	require.NoError(t, err)
	require.NoError(t, h.engine.MarkTokenClaimed(alice, 1))

	snap, err := h.engine.Snapshot()
	require.NoError(t, err)
	require.Equal(t, ownerAddr, snap.Settings.Owner)
	require.Equal(t, auction.PhaseEnded, snap.English.Phase)
	require.True(t, snap.English.Claimed)
	require.Nil(t, snap.Dutch)
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.FeeTiers, 1)
	require.Equal(t, [][20]byte{alice}, snap.DiscountWallets)
	require.Equal(t, []uint64{1}, snap.ClaimedTokens)
	require.NotNil(t, snap.ServiceFees)
}
