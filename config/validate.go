package config

import (
	"fmt"
	"log/slog"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"editionhouse/native/collectible"
	"editionhouse/native/fees"
	"editionhouse/observability/logging"
	"editionhouse/services/eventlog"
	"editionhouse/storage"
)

// Validate checks the configuration for values the engine would reject.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("configuration is missing")
	}
	switch cfg.Backend {
	case storage.BackendMemory, storage.BackendLevelDB, storage.BackendBolt:
	default:
		return fmt.Errorf("backend: unknown storage backend %q", cfg.Backend)
	}
	if _, err := cfg.LogLevel(); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}
	switch cfg.EventLog.Driver {
	case "":
	case eventlog.DriverSQLite, eventlog.DriverPostgres:
		if cfg.EventLog.DSN == "" {
			return fmt.Errorf("eventlog: dsn required for driver %q", cfg.EventLog.Driver)
		}
	default:
		return fmt.Errorf("eventlog: unknown driver %q", cfg.EventLog.Driver)
	}
	if _, err := cfg.OwnerAddress(); err != nil {
		return err
	}
	if _, err := cfg.EngineAddr(); err != nil {
		return err
	}
	if cfg.Auction.DiscountPercentBps > fees.BasisPoints {
		return fmt.Errorf("auction: discount_percent_bps %d exceeds %d", cfg.Auction.DiscountPercentBps, fees.BasisPoints)
	}
	if _, err := cfg.FeeTable(); err != nil {
		return err
	}
	if _, err := cfg.Series(); err != nil {
		return err
	}
	return nil
}

func parseAddress(field, value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !ethcommon.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	addr := ethcommon.HexToAddress(trimmed)
	if addr == (ethcommon.Address{}) {
		return [20]byte{}, fmt.Errorf("%s: address must not be zero", field)
	}
	return addr, nil
}

// OwnerAddress returns the configured operator address.
func (cfg *Config) OwnerAddress() ([20]byte, error) {
	return parseAddress("owner", cfg.Owner)
}

// EngineAddr returns the account that escrows bids and fees.
func (cfg *Config) EngineAddr() ([20]byte, error) {
	return parseAddress("engine_address", cfg.EngineAddress)
}

// FeeTable converts the configured fee tiers into a validated table.
func (cfg *Config) FeeTable() (fees.Table, error) {
	table := make(fees.Table, 0, len(cfg.Auction.FeeTiers))
	for i, tier := range cfg.Auction.FeeTiers {
		parsed, err := fees.ParseTier(tier.Recipient, tier.ShareBps)
		if err != nil {
			return nil, fmt.Errorf("auction.fee_tiers[%d]: %w", i, err)
		}
		table = append(table, parsed)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("auction.fee_tiers: %w", err)
	}
	return table, nil
}

// Series converts the collectible settings into registry parameters.
func (cfg *Config) Series() (collectible.Series, error) {
	var series collectible.Series
	address, err := parseAddress("collectible.address", cfg.Collectible.Address)
	if err != nil {
		return series, err
	}
	creator, err := parseAddress("collectible.creator", cfg.Collectible.Creator)
	if err != nil {
		return series, err
	}
	series = collectible.Series{
		Address:          address,
		Creator:          creator,
		MaxTotalSupply:   cfg.Collectible.MaxTotalSupply,
		MaxMintPerWallet: cfg.Collectible.MaxMintPerWallet,
		ClaimedURI:       cfg.Collectible.ClaimedURI,
		UnclaimedURI:     cfg.Collectible.UnclaimedURI,
	}
	for i, royalty := range cfg.Collectible.Royalties {
		recipient, err := parseAddress(fmt.Sprintf("collectible.royalties[%d]", i), royalty.Recipient)
		if err != nil {
			return collectible.Series{}, err
		}
		series.Royalties = append(series.Royalties, collectible.Split{Recipient: recipient, ShareBps: royalty.ShareBps})
	}
	if err := series.Validate(); err != nil {
		return collectible.Series{}, fmt.Errorf("collectible: %w", err)
	}
	return series, nil
}

// LogLevel parses the configured log level.
func (cfg *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return level, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
