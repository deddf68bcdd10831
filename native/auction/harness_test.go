package auction_test

import (
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"editionhouse/core/events"
	"editionhouse/core/state"
	"editionhouse/core/types"
	"editionhouse/native/auction"
	"editionhouse/native/collectible"
)

var (
	ownerAddr    = addr(0x01)
	engineAddr   = addr(0xEE)
	registryAddr = addr(0xC0)
	creatorAddr  = addr(0xC1)
	alice        = addr(0xA1)
	bob          = addr(0xB0)
	carol        = addr(0xCA)
)

const startTime int64 = 1_700_000_000

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func eth(num, den int64) *big.Int {
	v := new(big.Int).Mul(big.NewInt(num), big.NewInt(1_000_000_000_000_000_000))
	return v.Div(v, big.NewInt(den))
}

type harness struct {
	t        *testing.T
	engine   *auction.Engine
	state    *state.Manager
	registry *collectible.Registry
	events   *events.Recorder
	now      int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		state:  state.NewManager(nil),
		events: &events.Recorder{},
		now:    startTime,
	}
	h.engine = auction.NewEngine(engineAddr)
	h.engine.SetState(h.state)
	h.engine.SetEmitter(h.events)
	h.engine.SetMetrics(nil)
	h.engine.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.engine.SetNowFunc(func() int64 { return h.now })
	require.NoError(t, h.engine.Initialize(ownerAddr))

	reg, err := collectible.NewRegistry(h.state, collectible.Series{
		Address:          registryAddr,
		Creator:          creatorAddr,
		MaxTotalSupply:   10,
		MaxMintPerWallet: 2,
		ClaimedURI:       "ipfs://claimed",
		UnclaimedURI:     "ipfs://unclaimed",
	})
	require.NoError(t, err)
	reg.SetClaimStatus(h.engine)
	h.registry = reg
	require.NoError(t, h.engine.SetRegistry(ownerAddr, reg))

	for _, wallet := range [][20]byte{alice, bob, carol} {
		require.NoError(t, h.state.Credit(wallet[:], eth(10, 1)))
	}
	h.events.Reset()
	return h
}

func (h *harness) balance(wallet [20]byte) *big.Int {
	h.t.Helper()
	bal, err := h.state.Balance(wallet[:])
	require.NoError(h.t, err)
	return bal
}

func (h *harness) requireBalance(wallet [20]byte, want *big.Int) {
	h.t.Helper()
	got := h.balance(wallet)
	require.Zerof(h.t, got.Cmp(want), "balance of %x: want %s, got %s", wallet, want, got)
}

func (h *harness) setBalance(wallet [20]byte, amount *big.Int) {
	h.t.Helper()
	require.NoError(h.t, h.state.PutAccount(wallet[:], &types.Account{Balance: amount}))
}

// openEnglish creates the standard English auction: 1 ETH start and reserve,
// a 5% increment and a 1000 second window beginning now.
func (h *harness) openEnglish() {
	h.t.Helper()
	_, err := h.engine.CreateEnglishAuction(ownerAddr, h.now, h.now+1_000, eth(1, 1), eth(1, 1), 500)
	require.NoError(h.t, err)
}

// closeEnglish opens the English auction, lets winner bid and closes it.
func (h *harness) closeEnglish(winner [20]byte) {
	h.t.Helper()
	h.openEnglish()
	_, err := h.engine.PlaceBid(winner, eth(1, 1))
	require.NoError(h.t, err)
	h.now += 1_000
	_, err = h.engine.EndEnglishAuction(ownerAddr)
	require.NoError(h.t, err)
}

// openDutch starts a 1 ETH to 0.5 ETH Dutch auction decaying 10% per hour.
func (h *harness) openDutch() *auction.DutchAuction {
	h.t.Helper()
	d, err := h.engine.CreateDutchAuction(ownerAddr, h.now, eth(1, 1), eth(1, 2), 1_000, 3_600)
	require.NoError(h.t, err)
	return d
}

func requireKind(t *testing.T, err error, kind auction.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, auction.KindOf(err), "unexpected kind for %v", err)
}
