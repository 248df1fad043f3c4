package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"

	"github.com/rs/zerolog"
)

// Some master ids differ from the ids used for artwork.
var pokemonIDMapping = map[string]string{
	"alolan_ninetales":  "ninetales",
	"galarian_rapidash": "rapidash",
	"alcremie":          "mawhip",
}

type PokemonSource interface {
	GetPokemons(ctx context.Context) ([]domain.Pokemon, error)
}

type ByteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type PokemonService struct {
	source PokemonSource
	cache  ByteCache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewPokemonService(source PokemonSource, cache ByteCache, ttl time.Duration, logger zerolog.Logger) *PokemonService {
	return &PokemonService{source: source, cache: cache, ttl: ttl, logger: logger}
}

func (s *PokemonService) GetPokemons(ctx context.Context) ([]domain.Pokemon, error) {
	logger := loggerFrom(ctx, s.logger)

	cached, found, err := s.cache.Get(ctx, constants.MasterDataKey)
	if err != nil {
		logger.Warn().Err(err).Msg("master data cache read failed")
	}
	if found {
		var pokemons []domain.Pokemon
		if err := json.Unmarshal(cached, &pokemons); err == nil {
			logger.Debug().Int("count", len(pokemons)).Msg("returning cached master data")
			return pokemons, nil
		}
		logger.Warn().Msg("discarding undecodable cached master data")
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	pokemons, err := s.source.GetPokemons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pokemon master data: %w", err)
	}
	for i := range pokemons {
		if mapped, ok := pokemonIDMapping[pokemons[i].ID]; ok {
			pokemons[i].ID = mapped
		}
	}

	body, err := json.Marshal(pokemons)
	if err == nil {
		if err := s.cache.Set(ctx, constants.MasterDataKey, body, s.ttl); err != nil {
			logger.Warn().Err(err).Msg("master data cache write failed")
		}
	}

	logger.Info().Int("count", len(pokemons)).Msg("master data fetched")
	return pokemons, nil
}
