package fx

import (
	"context"
	"database/sql"
	"unite-stats/internal/api"
	"unite-stats/internal/cache"
	"unite-stats/internal/config"
	"unite-stats/internal/database"
	"unite-stats/internal/db"
	"unite-stats/internal/logger"
	"unite-stats/internal/repository"
	"unite-stats/internal/server"
	"unite-stats/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	sqlDB, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
	return sqlDB, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := rc.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing redis connection")
			}
			return nil
		},
	})
	return rc, nil
}

func ProvideAggregatorService(records *repository.MatchRecordRepository, summaries *repository.SummaryRepository, logger zerolog.Logger) *service.AggregatorService {
	return service.NewAggregatorService(records, summaries, service.SystemClock(), logger.With().Str("component", "aggregator").Logger())
}

func ProvideStatsService(summaries *repository.SummaryRepository, logger zerolog.Logger) *service.StatsService {
	return service.NewStatsService(summaries, service.SystemClock(), logger.With().Str("component", "resolver").Logger())
}

func ProvidePokemonService(client *api.MasterClient, rc *cache.RedisCache, cfg *config.Config, logger zerolog.Logger) *service.PokemonService {
	return service.NewPokemonService(client, rc, cfg.CacheTTL, logger)
}

func ProvideProbes(sqlDB *sql.DB, rc *cache.RedisCache) []server.Probe {
	return []server.Probe{
		{Name: "database", Ping: sqlDB.PingContext},
		{Name: "redis", Ping: rc.Ping},
	}
}

// Core is everything both the job and the API need.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideQueries),
	fx.Provide(ProvideRedis),
	// repos
	fx.Provide(repository.NewMatchRecordRepository),
	fx.Provide(repository.NewSummaryRepository),
	// svc
	fx.Provide(ProvideAggregatorService),
	fx.Provide(ProvideStatsService),
)

var Module = fx.Options(
	Core,
	// api client
	fx.Provide(api.NewMasterClient),
	fx.Provide(ProvidePokemonService),
	fx.Provide(ProvideProbes),
	// server
	fx.Provide(server.NewStatsServer),
)
