package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"editionhouse/config"
	"editionhouse/storage"
)

const (
	ownerHex   = "0x0000000000000000000000000000000000000001"
	engineHex  = "0x00000000000000000000000000000000000000EE"
	seriesHex  = "0x00000000000000000000000000000000000000C0"
	creatorHex = "0x00000000000000000000000000000000000000C1"
	tierHex    = "0x0000000000000000000000000000000000000051"
	aliceHex   = "0x00000000000000000000000000000000000000A1"
	bobHex     = "0x00000000000000000000000000000000000000B0"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "state")
	cfg.Backend = storage.BackendLevelDB
	cfg.Owner = ownerHex
	cfg.EngineAddress = engineHex
	cfg.Auction = config.AuctionSettings{
		DiscountWalletCount: 2,
		DiscountPercentBps:  2000,
		FeeTiers:            []config.FeeTierConfig{{Recipient: tierHex, ShareBps: 500}},
	}
	cfg.Collectible = config.CollectibleSettings{
		Address:          seriesHex,
		Creator:          creatorHex,
		MaxTotalSupply:   5,
		MaxMintPerWallet: 1,
		Royalties:        []config.RoyaltyConfig{},
		ClaimedURI:       "ipfs://claimed",
		UnclaimedURI:     "ipfs://unclaimed",
	}
	cfg.Logging.Level = "error"
	cfg.EventLog = config.EventLog{Driver: "sqlite", DSN: filepath.Join(dir, "events.db")}
	path := filepath.Join(dir, "editionhouse.toml")
	require.NoError(t, config.Write(path, cfg))
	return path
}

func runCLI(t *testing.T, cfgPath string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-config", cfgPath}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func mustRun(t *testing.T, cfgPath string, args ...string) map[string]interface{} {
	t.Helper()
	code, stdout, stderr := runCLI(t, cfgPath, args...)
	require.Equalf(t, 0, code, "args %v failed: %s", args, stderr)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)
	return out
}

// requireAddr compares hex addresses ignoring EIP-55 checksum casing.
func requireAddr(t *testing.T, want string, got interface{}) {
	t.Helper()
	str, ok := got.(string)
	require.True(t, ok, "expected string address, got %v", got)
	require.True(t, strings.EqualFold(want, str), "expected %s, got %s", want, str)
}

func TestEnglishAuctionLifecycle(t *testing.T) {
	cfg := writeTestConfig(t)

	boot := mustRun(t, cfg, "bootstrap")
	requireAddr(t, ownerHex, boot["owner"])
	require.Equal(t, float64(2000), boot["discountPercentBps"])

	mustRun(t, cfg, "fund", "-to", aliceHex, "-amount", "5000000000000000000")
	mustRun(t, cfg, "fund", "-to", bobHex, "-amount", "5000000000000000000")

	created := mustRun(t, cfg, "-now", "1000", "create-english",
		"-start", "1000", "-end", "2000",
		"-start-price", "1000000000000000000", "-reserve", "1000000000000000000")
	require.Equal(t, "open", created["phase"])

	mustRun(t, cfg, "-now", "1100", "bid", "-from", aliceHex, "-amount", "1000000000000000000")

	code, _, stderr := runCLI(t, cfg, "-now", "1200", "bid", "-from", bobHex, "-amount", "1049999999999999999")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "Error (precondition)")
	require.Contains(t, stderr, "bid below required minimum")

	minimum := mustRun(t, cfg, "min-bid")
	require.Equal(t, "1050000000000000000", minimum["minimumBid"])

	mustRun(t, cfg, "-now", "1300", "bid", "-from", bobHex, "-amount", "1050000000000000000")
	require.Equal(t, "5000000000000000000", mustRun(t, cfg, "balance", "-addr", aliceHex)["balance"])

	outcome := mustRun(t, cfg, "-now", "2100", "end-english")
	require.Equal(t, true, outcome["won"])
	requireAddr(t, bobHex, outcome["winner"])
	wallets := outcome["discountWallets"].([]interface{})
	require.Len(t, wallets, 2)
	requireAddr(t, bobHex, wallets[0])
	requireAddr(t, aliceHex, wallets[1])

	settlement := mustRun(t, cfg, "-now", "2200", "claim", "-from", bobHex)
	require.Equal(t, float64(1), settlement["tokenId"])
	require.Equal(t, "1000000000000000000", settlement["net"])
	require.Equal(t, "50000000000000000", settlement["serviceFee"])
	require.Equal(t, "0", settlement["accrued"])
	require.NotEmpty(t, settlement["settlementId"])

	require.Equal(t, "1000000000000000000", mustRun(t, cfg, "balance", "-addr", creatorHex)["balance"])
	require.Equal(t, "50000000000000000", mustRun(t, cfg, "balance", "-addr", tierHex)["balance"])

	token := mustRun(t, cfg, "token", "-id", "1")
	requireAddr(t, bobHex, token["owner"])
	require.Equal(t, "ipfs://unclaimed/1", token["uri"])

	code, _, stderr = runCLI(t, cfg, "mark-claimed", "-from", aliceHex, "-token", "1")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "Error (unauthorized)")

	claimed := mustRun(t, cfg, "mark-claimed", "-from", bobHex, "-token", "1")
	require.Equal(t, "ipfs://claimed/1", claimed["uri"])

	snap := mustRun(t, cfg, "snapshot", "-events")
	require.Equal(t, true, snap["initialized"])
	require.Equal(t, float64(1), snap["totalSupply"])
	require.Equal(t, "0", snap["engineBalance"])
	require.Equal(t, []interface{}{float64(1)}, snap["claimedTokens"])
	english := snap["english"].(map[string]interface{})
	require.Equal(t, "ended", english["phase"])
	require.Equal(t, true, english["claimed"])
	require.Len(t, snap["bids"], 2)

	counts := map[string]float64{}
	for _, entry := range snap["events"].([]interface{}) {
		row := entry.(map[string]interface{})
		counts[row["type"].(string)] = row["count"].(float64)
	}
	require.Equal(t, float64(2), counts["auction.english.bid"])
	require.Equal(t, float64(1), counts["auction.english.refund"])
	require.Equal(t, float64(1), counts["auction.english.claimed"])
	require.Equal(t, float64(1), counts["auction.token.claimed"])
}

func TestCommandsRequireBootstrap(t *testing.T) {
	cfg := writeTestConfig(t)

	code, _, stderr := runCLI(t, cfg, "bid", "-from", aliceHex, "-amount", "1")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "engine not initialized")

	mustRun(t, cfg, "bootstrap")
	code, _, stderr = runCLI(t, cfg, "bootstrap")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "already initialized")
}

func TestPauseBlocksBids(t *testing.T) {
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "bootstrap")
	mustRun(t, cfg, "fund", "-to", aliceHex, "-amount", "2000000000000000000")
	mustRun(t, cfg, "-now", "1000", "create-english",
		"-start", "1000", "-end", "2000",
		"-start-price", "1000000000000000000", "-reserve", "1000000000000000000")

	require.Equal(t, true, mustRun(t, cfg, "pause")["paused"])
	code, _, stderr := runCLI(t, cfg, "-now", "1100", "bid", "-from", aliceHex, "-amount", "1000000000000000000")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "engine paused")

	code, _, _ = runCLI(t, cfg, "pause", "-caller", aliceHex)
	require.Equal(t, 1, code)

	require.Equal(t, false, mustRun(t, cfg, "unpause")["paused"])
	mustRun(t, cfg, "-now", "1100", "bid", "-from", aliceHex, "-amount", "1000000000000000000")
}

func TestSetFeeTiersCommand(t *testing.T) {
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "bootstrap")

	out := mustRun(t, cfg, "set-fee-tiers", "-tiers", tierHex+"=300,"+aliceHex+"=200")
	require.Equal(t, float64(500), out["totalBps"])

	code, _, stderr := runCLI(t, cfg, "set-fee-tiers", "-tiers", "nonsense")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "expected address=bps")
}

func TestUsageErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	code, _, stderr := runCLI(t, cfg)
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "Usage: editionhouse")

	code, _, stderr = runCLI(t, cfg, "launch")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "Unknown command: launch")

	code, _, stderr = runCLI(t, cfg, "fund", "-to", aliceHex)
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "-amount is required")

	code, _, _ = runCLI(t, cfg, "fund", "-to", "not-an-address", "-amount", "1")
	require.Equal(t, 2, code)
}

func TestInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "editionhouse.toml")

	code, stdout, _ := runCLI(t, path, "init")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Wrote")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[collectible]")

	code, _, stderr := runCLI(t, path, "init")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "already exists")

	code, _, _ = runCLI(t, path, "init", "-force")
	require.Equal(t, 0, code)
}

func TestMetricsOut(t *testing.T) {
	cfg := writeTestConfig(t)
	out := filepath.Join(t.TempDir(), "auction.prom")

	code, _, stderr := runCLI(t, cfg, "-metrics-out", out, "bootstrap")
	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "editionhouse_auction_accrued_service_fees_wei")
}

func TestOpenNodeReportsAddressErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   string
	}{
		{"engine address", func(cfg *config.Config) { cfg.EngineAddress = "0x1234" }, "engine_address"},
		{"collectible address", func(cfg *config.Config) { cfg.Collectible.Address = "" }, "collectible.address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.DataDir = t.TempDir()
			cfg.Backend = storage.BackendMemory
			cfg.Owner = ownerHex
			cfg.EngineAddress = engineHex
			cfg.Collectible.Address = seriesHex
			cfg.Collectible.Creator = creatorHex
			tc.mutate(cfg)

			n, err := openNode(context.Background(), cfg, 0, io.Discard)
			require.Nil(t, n)
			require.ErrorContains(t, err, tc.want)
		})
	}
}
