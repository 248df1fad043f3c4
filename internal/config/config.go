package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unite-stats/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

const DefaultMasterDataURL = "https://s3.ap-northeast-1.amazonaws.com/juv-shun.website-hosting/pokemon_master_data/pokemons.json"

type Config struct {
	DBDriver      string        `yaml:"db_driver"`
	DBDSN         string        `yaml:"db_dsn"`
	RedisURL      string        `yaml:"redis_url"`
	SummaryPrefix string        `yaml:"summary_prefix"`
	ServerPort    string        `yaml:"server_port"`
	ScanPageSize  int           `yaml:"scan_page_size"`
	MasterDataURL string        `yaml:"pokemon_master_url"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	// TargetDate overrides the aggregation day (YYYY-MM-DD). Empty means yesterday.
	TargetDate string `yaml:"target_date"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		logger.Debug().Str("path", path).Msg("config file loaded")
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_driver", cfg.DBDriver).
		Str("server_port", cfg.ServerPort).
		Str("summary_prefix", cfg.SummaryPrefix).
		Int("scan_page_size", cfg.ScanPageSize).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	// Unknown keys are rejected so a misplaced setting fails loudly instead of being ignored.
	// LOG_LEVEL is environment-only: the logger exists before the file is read.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.SummaryPrefix = getEnv("SUMMARY_PREFIX", cfg.SummaryPrefix)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.MasterDataURL = getEnv("POKEMON_MASTER_URL", cfg.MasterDataURL)
	cfg.TargetDate = getEnv("TARGET_DATE", cfg.TargetDate)

	if v := os.Getenv("SCAN_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_PAGE_SIZE must be an integer: %w", err)
		}
		cfg.ScanPageSize = n
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL must be a duration: %w", err)
		}
		cfg.CacheTTL = d
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite3"
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = "unite.db"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.ScanPageSize == 0 {
		cfg.ScanPageSize = constants.DefaultScanPageSize
	}
	if cfg.MasterDataURL == "" {
		cfg.MasterDataURL = DefaultMasterDataURL
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = constants.MasterCacheTTL
	}
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if c.ScanPageSize < 0 {
		return fmt.Errorf("SCAN_PAGE_SIZE must be positive, got %d", c.ScanPageSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
