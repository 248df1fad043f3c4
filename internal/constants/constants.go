package constants

import "time"

// Reference timezone for day bucketing and freshness checks (UTC+9).
// Pinned as a fixed zone so results never depend on host locale or tzdata.
var ReferenceZone = time.FixedZone("JST", 9*60*60)

const DateLayout = "2006-01-02"

const (
	// SummaryKeyFormat is filled with an aggregated_date.
	SummaryKeyFormat = "%s/result.json"
	MasterDataKey    = "pokemon_master_data/pokemons.json"
)

const (
	DefaultRangeDays = 7
	FreshnessDays    = 8
)

const (
	DefaultScanPageSize = 1000
	DBBatchSize         = 100
)

const (
	MasterCacheTTL     = 5 * time.Minute
	MasterRatePerSec   = 2
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	AggregationTimeout = 5 * time.Minute
	HealthCheckTimeout = 2 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
