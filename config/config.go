package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"editionhouse/observability/logging"
	"editionhouse/storage"
)

const (
	defaultDataDir = "./editionhouse-data"
	defaultService = "editionhouse"
)

type Config struct {
	DataDir       string              `toml:"DataDir" yaml:"data_dir"`
	Backend       string              `toml:"Backend" yaml:"backend"`
	Owner         string              `toml:"Owner" yaml:"owner"`
	EngineAddress string              `toml:"EngineAddress" yaml:"engine_address"`
	Auction       AuctionSettings     `toml:"auction" yaml:"auction"`
	Collectible   CollectibleSettings `toml:"collectible" yaml:"collectible"`
	Logging       Logging             `toml:"logging" yaml:"logging"`
	EventLog      EventLog            `toml:"eventlog" yaml:"eventlog"`
	Telemetry     Telemetry           `toml:"telemetry" yaml:"telemetry"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir,
		Backend: storage.BackendLevelDB,
		Collectible: CollectibleSettings{
			MaxTotalSupply:   1,
			MaxMintPerWallet: 1,
		},
		Logging: Logging{Service: defaultService, Level: "info", Format: logging.FormatJSON},
	}
}

// Load reads the configuration at path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as TOML. The result is normalised and
// validated.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path required")
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	default:
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0].String())
		}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write persists cfg as TOML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (cfg *Config) normalize() {
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = storage.BackendLevelDB
	}
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.EngineAddress = strings.TrimSpace(cfg.EngineAddress)
	cfg.Logging.Service = strings.TrimSpace(cfg.Logging.Service)
	if cfg.Logging.Service == "" {
		cfg.Logging.Service = defaultService
	}
	cfg.Logging.Env = strings.TrimSpace(cfg.Logging.Env)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.FormatJSON
	}
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.EventLog.Driver = strings.ToLower(strings.TrimSpace(cfg.EventLog.Driver))
	cfg.EventLog.DSN = strings.TrimSpace(cfg.EventLog.DSN)
	cfg.Telemetry.Endpoint = strings.TrimSpace(cfg.Telemetry.Endpoint)
	if cfg.Auction.FeeTiers == nil {
		cfg.Auction.FeeTiers = []FeeTierConfig{}
	}
	if cfg.Collectible.Royalties == nil {
		cfg.Collectible.Royalties = []RoyaltyConfig{}
	}
}
