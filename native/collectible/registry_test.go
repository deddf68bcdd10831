package collectible_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"editionhouse/core/state"
	"editionhouse/native/collectible"
)

type fixedClaims map[uint64]bool

func (f fixedClaims) TokenClaimed(tokenID uint64) (bool, error) { return f[tokenID], nil }

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func newRegistry(t *testing.T, royalties ...collectible.Split) (*collectible.Registry, *state.Manager) {
	t.Helper()
	manager := state.NewManager(nil)
	reg, err := collectible.NewRegistry(manager, collectible.Series{
		Address:          addr(0xC0),
		Creator:          addr(0xC1),
		MaxTotalSupply:   2,
		MaxMintPerWallet: 1,
		Royalties:        royalties,
		ClaimedURI:       "ipfs://claimed/",
		UnclaimedURI:     "ipfs://unclaimed",
	})
	require.NoError(t, err)
	return reg, manager
}

func TestSeriesValidate(t *testing.T) {
	base := collectible.Series{Address: addr(1), Creator: addr(2)}
	require.NoError(t, base.Validate())

	missing := base
	missing.Creator = [20]byte{}
	require.ErrorIs(t, missing.Validate(), collectible.ErrZeroAddress)

	overflow := base
	overflow.Royalties = []collectible.Split{{Recipient: addr(3), ShareBps: 6000}, {Recipient: addr(4), ShareBps: 4001}}
	require.ErrorIs(t, overflow.Validate(), collectible.ErrInvalidRoyalties)

	zeroRecipient := base
	zeroRecipient.Royalties = []collectible.Split{{ShareBps: 100}}
	require.ErrorIs(t, zeroRecipient.Validate(), collectible.ErrZeroAddress)
}

func TestMintAssignsSequentialIDs(t *testing.T) {
	reg, _ := newRegistry(t)
	first, err := reg.Mint(addr(1))
	require.NoError(t, err)
	second, err := reg.Mint(addr(2))
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)
	require.Equal(t, uint64(2), second)

	supply, err := reg.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(2), supply)

	owner, err := reg.OwnerOf(2)
	require.NoError(t, err)
	require.Equal(t, addr(2), owner)

	_, err = reg.Mint(addr(3))
	require.ErrorIs(t, err, collectible.ErrSupplyExhausted)

	_, err = reg.OwnerOf(9)
	require.ErrorIs(t, err, collectible.ErrTokenNotFound)
}

func TestMintRevertsWithState(t *testing.T) {
	reg, manager := newRegistry(t)
	snap := manager.Snapshot()
	_, err := reg.Mint(addr(1))
	require.NoError(t, err)
	require.NoError(t, reg.SetMintPerWallet(addr(1), 1))
	manager.RevertToSnapshot(snap)

	supply, err := reg.TotalSupply()
	require.NoError(t, err)
	require.Zero(t, supply)
	minted, err := reg.MintPerWallet(addr(1))
	require.NoError(t, err)
	require.Zero(t, minted)
}

func TestPayoutInfoSplitsRoyalties(t *testing.T) {
	reg, _ := newRegistry(t, collectible.Split{Recipient: addr(0xA1), ShareBps: 1000})
	tokenID, err := reg.Mint(addr(1))
	require.NoError(t, err)

	count, err := reg.PayoutCount(tokenID, false)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	receivers, shares, err := reg.PayoutInfo(tokenID, big.NewInt(1_001), false)
	require.NoError(t, err)
	require.Equal(t, [][20]byte{addr(0xA1), addr(0xC1)}, receivers)
	require.Equal(t, "100", shares[0].String())
	require.Equal(t, "901", shares[1].String())

	count, err = reg.PayoutCount(tokenID, true)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	receivers, shares, err = reg.PayoutInfo(tokenID, big.NewInt(1_001), true)
	require.NoError(t, err)
	require.Len(t, receivers, 1)
	require.Len(t, shares, 1)
}

func TestTokenURIFollowsClaimStatus(t *testing.T) {
	reg, _ := newRegistry(t)
	tokenID, err := reg.Mint(addr(1))
	require.NoError(t, err)

	_, err = reg.TokenURI(tokenID)
	require.True(t, errors.Is(err, collectible.ErrClaimStatusNotSet))

	claims := fixedClaims{}
	reg.SetClaimStatus(claims)
	uri, err := reg.TokenURI(tokenID)
	require.NoError(t, err)
	require.Equal(t, "ipfs://unclaimed/1", uri)

	claims[tokenID] = true
	uri, err = reg.TokenURI(tokenID)
	require.NoError(t, err)
	require.Equal(t, "ipfs://claimed/1", uri)
}
