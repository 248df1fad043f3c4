package service_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"unite-stats/internal/constants"
	"unite-stats/internal/domain"
	"unite-stats/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaster struct {
	pokemons []domain.Pokemon
	err      error
	calls    int
}

func (f *fakeMaster) GetPokemons(context.Context) ([]domain.Pokemon, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Pokemon(nil), f.pokemons...), nil
}

type memoryCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.entries[key]
	return b, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestPokemonService_MapsIDsAndCaches(t *testing.T) {
	src := &fakeMaster{pokemons: []domain.Pokemon{
		{ID: "pikachu", Name: "ピカチュウ", Type: "アタック型"},
		{ID: "alolan_ninetales", Name: "アローラキュウコン", Type: "アタック型"},
		{ID: "alcremie", Name: "マホイップ", Type: "サポート型"},
	}}
	cache := newMemoryCache()
	svc := service.NewPokemonService(src, cache, 10*time.Minute, zerolog.Nop())

	first, err := svc.GetPokemons(context.Background())
	require.NoError(t, err)
	second, err := svc.GetPokemons(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"pikachu", "ninetales", "mawhip"}, []string{first[0].ID, first[1].ID, first[2].ID})
	assert.Equal(t, 10*time.Minute, cache.ttls[constants.MasterDataKey])
}

func TestPokemonService_UpstreamFailure(t *testing.T) {
	svc := service.NewPokemonService(&fakeMaster{err: errors.New("API error: 503")}, newMemoryCache(), time.Minute, zerolog.Nop())

	_, err := svc.GetPokemons(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPokemonService_RefetchesUndecodableCache(t *testing.T) {
	cache := newMemoryCache()
	cache.entries[constants.MasterDataKey] = []byte("garbage")
	src := &fakeMaster{pokemons: []domain.Pokemon{{ID: "eevee", Name: "イーブイ"}}}

	got, err := service.NewPokemonService(src, cache, time.Minute, zerolog.Nop()).GetPokemons(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "eevee", got[0].ID)
}
