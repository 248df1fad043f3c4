package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"unite-stats/internal/config"
	"unite-stats/internal/database"
	"unite-stats/internal/db"
	"unite-stats/internal/domain"
	"unite-stats/internal/repository"
	"unite-stats/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordRepo(t *testing.T, pageSize int) *repository.MatchRecordRepository {
	t.Helper()

	cfg := &config.Config{
		DBDriver:     "sqlite3",
		DBDSN:        filepath.Join(t.TempDir(), "records.db"),
		ScanPageSize: pageSize,
	}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return repository.NewMatchRecordRepository(sqlDB, db.New(sqlDB), cfg, zerolog.Nop())
}

func raw(s string) *domain.RawOutcome {
	o := domain.RawOutcome(s)
	return &o
}

const (
	windowFrom = int64(1717858800) // 2024-06-09 00:00 UTC+9
	windowTo   = windowFrom + 24*60*60
)

func TestMatchRecordRepository_PagesThroughWindow(t *testing.T) {
	repo := newRecordRepo(t, 2)
	ctx := context.Background()

	records := []domain.MatchRecord{
		{MatchID: "m1", Pokemon: "Pikachu", WinLose: raw("1"), StartedDate: windowFrom},
		{MatchID: "m1", Pokemon: "Eevee", WinLose: raw("0"), StartedDate: windowFrom},
		{MatchID: "m2", Pokemon: "Pikachu", WinLose: raw("x"), StartedDate: windowFrom + 60},
		{MatchID: "m2", Pokemon: "Snorlax", WinLose: nil, StartedDate: windowFrom + 60},
		{MatchID: "m3", Pokemon: "Lucario", WinLose: raw("1"), StartedDate: windowTo - 1},
		{MatchID: "old", Pokemon: "Pikachu", WinLose: raw("1"), StartedDate: windowFrom - 1},
		{MatchID: "next", Pokemon: "Pikachu", WinLose: raw("1"), StartedDate: windowTo},
	}
	require.NoError(t, repo.UpsertBatch(ctx, records))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	first, err := repo.Page(ctx, windowFrom, windowTo, "")
	require.NoError(t, err)
	assert.Len(t, first.Records, 2)
	assert.NotEmpty(t, first.Cursor)

	var pages int
	var got []domain.MatchRecord
	for page, err := range service.Pages(ctx, repo, windowFrom, windowTo) {
		require.NoError(t, err)
		pages++
		got = append(got, page...)
	}

	assert.Equal(t, 3, pages)
	require.Len(t, got, 5)

	byKey := map[string]domain.MatchRecord{}
	for _, r := range got {
		assert.NotEmpty(t, r.ID)
		byKey[string(r.MatchID)+"/"+r.Pokemon] = r
	}
	assert.NotContains(t, byKey, "old/Pikachu")
	assert.NotContains(t, byKey, "next/Pikachu")
	assert.Nil(t, byKey["m2/Snorlax"].WinLose)
	require.NotNil(t, byKey["m2/Pikachu"].WinLose)
	assert.Equal(t, domain.RawOutcome("x"), *byKey["m2/Pikachu"].WinLose)

	summary := service.Aggregate("2024-06-09", got)
	assert.Equal(t, 3, summary.NumberOfGames)
}

func TestMatchRecordRepository_UpsertKeepsExplicitIDs(t *testing.T) {
	repo := newRecordRepo(t, 10)
	ctx := context.Background()

	rec := domain.MatchRecord{ID: "r1", MatchID: "m1", Pokemon: "Pikachu", WinLose: raw("0"), StartedDate: windowFrom}
	require.NoError(t, repo.UpsertBatch(ctx, []domain.MatchRecord{rec}))

	rec.WinLose = raw("1")
	require.NoError(t, repo.UpsertBatch(ctx, []domain.MatchRecord{rec}))

	page, err := repo.Page(ctx, windowFrom, windowTo, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "r1", page.Records[0].ID)
	assert.Equal(t, domain.RawOutcome("1"), *page.Records[0].WinLose)
	assert.Empty(t, page.Cursor)
}

func TestMatchRecordRepository_EmptyWindow(t *testing.T) {
	repo := newRecordRepo(t, 10)

	records, err := service.DrainRecords(context.Background(), repo, windowFrom, windowTo)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMatchRecordRepository_ReimportDoesNotDuplicate(t *testing.T) {
	repo := newRecordRepo(t, 10)
	ctx := context.Background()

	records := []domain.MatchRecord{
		{MatchID: "1", Pokemon: "Pikachu", WinLose: raw("1"), StartedDate: windowFrom},
		{MatchID: "1", Pokemon: "Eevee", WinLose: raw("0"), StartedDate: windowFrom},
	}
	require.NoError(t, repo.UpsertBatch(ctx, records))
	require.NoError(t, repo.UpsertBatch(ctx, records))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	got, err := service.DrainRecords(ctx, repo, windowFrom, windowTo)
	require.NoError(t, err)

	summary := service.Aggregate("2024-06-09", got)
	assert.Equal(t, 1, summary.NumberOfGames)
	assert.Equal(t, []domain.PokemonResult{
		{Pokemon: "Eevee", NumberOfGames: 1, NumberOfWins: 0},
		{Pokemon: "Pikachu", NumberOfGames: 1, NumberOfWins: 1},
	}, summary.ResultPerPokemon)
}
