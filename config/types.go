package config

// AuctionSettings captures the operator defaults applied when the engine is
// bootstrapped.
type AuctionSettings struct {
	DiscountWalletCount uint64          `toml:"DiscountWalletCount" yaml:"discount_wallet_count"`
	DiscountPercentBps  uint32          `toml:"DiscountPercentBps" yaml:"discount_percent_bps"`
	FeeTiers            []FeeTierConfig `toml:"FeeTiers" yaml:"fee_tiers"`
}

// FeeTierConfig is one service fee recipient. Recipient is a hex address.
type FeeTierConfig struct {
	Recipient string `toml:"Recipient" yaml:"recipient"`
	ShareBps  uint32 `toml:"ShareBps" yaml:"share_bps"`
}

// CollectibleSettings describes the series minted by the auctions.
type CollectibleSettings struct {
	Address          string          `toml:"Address" yaml:"address"`
	Creator          string          `toml:"Creator" yaml:"creator"`
	MaxTotalSupply   uint64          `toml:"MaxTotalSupply" yaml:"max_total_supply"`
	MaxMintPerWallet uint64          `toml:"MaxMintPerWallet" yaml:"max_mint_per_wallet"`
	Royalties        []RoyaltyConfig `toml:"Royalties" yaml:"royalties"`
	ClaimedURI       string          `toml:"ClaimedURI" yaml:"claimed_uri"`
	UnclaimedURI     string          `toml:"UnclaimedURI" yaml:"unclaimed_uri"`
}

// RoyaltyConfig routes a share of the creator-net amount to a collaborator.
type RoyaltyConfig struct {
	Recipient string `toml:"Recipient" yaml:"recipient"`
	ShareBps  uint32 `toml:"ShareBps" yaml:"share_bps"`
}

type Logging struct {
	Service string `toml:"Service" yaml:"service"`
	Env     string `toml:"Env" yaml:"env"`
	Level   string `toml:"Level" yaml:"level"`
	Format  string `toml:"Format" yaml:"format"`

	// File enables size-based rotation of the log at the given path.
	File string `toml:"File" yaml:"file"`
}

// EventLog mirrors engine events into a SQL database when Driver is set.
type EventLog struct {
	Driver string `toml:"Driver" yaml:"driver"`
	DSN    string `toml:"DSN" yaml:"dsn"`
}

// Enabled reports whether an event log database is configured.
func (e EventLog) Enabled() bool { return e.Driver != "" }

// Telemetry configures the OTLP/HTTP exporters.
type Telemetry struct {
	Endpoint string `toml:"Endpoint" yaml:"endpoint"`
	Insecure bool   `toml:"Insecure" yaml:"insecure"`
	Traces   bool   `toml:"Traces" yaml:"traces"`
	Metrics  bool   `toml:"Metrics" yaml:"metrics"`

	// Headers uses the "key=value,key2=value2" form.
	Headers string `toml:"Headers" yaml:"headers"`
}
